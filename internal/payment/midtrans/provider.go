package midtrans

import (
	"net/http"
	"time"

	"indo-payment/internal/payment"
	"indo-payment/internal/payment/transport"
)

type Config struct {
	ServerKey   string
	ClientKey   string
	Environment payment.Environment // defaults to sandbox
	Options     Options

	HTTPClient *http.Client
	Timeout    time.Duration
	Now        func() time.Time
}

// Provider is a payment.Provider bound to Midtrans, plus the client-side
// values a checkout page needs.
type Provider struct {
	*payment.Provider
	gateway   *Gateway
	clientKey string
}

// New validates cfg and returns a ready provider. An empty ServerKey is a
// configuration error and no provider is built.
func New(cfg Config) (*Provider, error) {
	gw, err := NewGateway(cfg.ServerKey, cfg.Environment, cfg.Options)
	if err != nil {
		return nil, err
	}

	opts := []transport.Option{transport.WithHeaders(gw.AuthHeaders())}
	if cfg.HTTPClient != nil {
		opts = append(opts, transport.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, transport.WithTimeout(cfg.Timeout))
	}

	return &Provider{
		Provider:  payment.NewProvider(gw, transport.New(opts...), payment.WithClock(cfg.Now)),
		gateway:   gw,
		clientKey: cfg.ClientKey,
	}, nil
}

func (p *Provider) Environment() payment.Environment {
	return p.gateway.Environment()
}

func (p *Provider) ClientKey() string {
	return p.clientKey
}

// SnapJSURL is the script a checkout page loads to open the Snap popup.
func (p *Provider) SnapJSURL() string {
	return SnapURL(p.gateway.Environment()) + "/snap/snap.js"
}
