package config

import (
	"strings"
	"time"

	"indo-payment/internal/payment"
	"indo-payment/internal/payment/midtrans"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv  string
	AppPort int

	MidtransServerKey       string
	MidtransClientKey       string
	MidtransEnvironment     string
	MidtransEnabledPayments []string
	MidtransSecure3DS       *bool // nil when MIDTRANS_3DS is unset
	MidtransTimeout         time.Duration

	RedisAddr       string
	RedisPass       string
	RedisDB         int
	WebhookDedupTTL time.Duration
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("MIDTRANS_ENVIRONMENT", string(payment.EnvironmentSandbox))
	v.SetDefault("MIDTRANS_TIMEOUT", "30s")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("WEBHOOK_DEDUP_TTL", "10m")

	cfg := &Config{
		AppEnv:  v.GetString("APP_ENV"),
		AppPort: v.GetInt("APP_PORT"),

		MidtransServerKey:       v.GetString("MIDTRANS_SERVER_KEY"),
		MidtransClientKey:       v.GetString("MIDTRANS_CLIENT_KEY"),
		MidtransEnvironment:     v.GetString("MIDTRANS_ENVIRONMENT"),
		MidtransEnabledPayments: splitList(v.GetString("MIDTRANS_ENABLED_PAYMENTS")),
		MidtransTimeout:         v.GetDuration("MIDTRANS_TIMEOUT"),

		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPass:       v.GetString("REDIS_PASS"),
		RedisDB:         v.GetInt("REDIS_DB"),
		WebhookDedupTTL: v.GetDuration("WEBHOOK_DEDUP_TTL"),
	}

	if v.IsSet("MIDTRANS_3DS") {
		secure := v.GetBool("MIDTRANS_3DS")
		cfg.MidtransSecure3DS = &secure
	}

	return cfg
}

// Midtrans converts the loaded values into a provider config. Credit card
// options are only sent when MIDTRANS_3DS is set and card payments can be
// offered.
func (c *Config) Midtrans() midtrans.Config {
	opts := midtrans.Options{EnabledPayments: c.MidtransEnabledPayments}
	if c.MidtransSecure3DS != nil &&
		(len(c.MidtransEnabledPayments) == 0 || contains(c.MidtransEnabledPayments, "credit_card")) {
		secure := *c.MidtransSecure3DS
		opts.CreditCard = &midtrans.CreditCardOptions{Secure: &secure}
	}

	return midtrans.Config{
		ServerKey:   c.MidtransServerKey,
		ClientKey:   c.MidtransClientKey,
		Environment: payment.Environment(c.MidtransEnvironment),
		Options:     opts,
		Timeout:     c.MidtransTimeout,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
