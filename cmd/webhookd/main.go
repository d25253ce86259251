package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"indo-payment/internal/config"
	"indo-payment/internal/logger"
	"indo-payment/internal/metrics"
	"indo-payment/internal/middleware"
	"indo-payment/internal/payment"
	"indo-payment/internal/payment/midtrans"
	"indo-payment/internal/payment/webhook"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// statusChecker is the provider surface used to confirm a notification.
type statusChecker interface {
	GetStatus(ctx context.Context, orderID string) (*payment.PaymentStatusResponse, error)
}

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	provider, err := midtrans.New(cfg.Midtrans())
	if err != nil {
		log.Fatal("Failed to configure midtrans", zap.Error(err))
	}

	deduper, err := webhook.NewDeduper(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.WebhookDedupTTL)
	if err != nil {
		log.Warn("Redis unavailable, de-duplicating in memory", zap.Error(err))
	}
	defer func() {
		if err := deduper.Close(); err != nil {
			log.Warn("Failed closing deduper", zap.Error(err))
		}
	}()

	handler := webhook.NewHandler(provider, confirmNotification(provider), webhook.WithDeduper(deduper))
	limiter := middleware.NewRateLimiter(middleware.LimitWebhook, middleware.BurstWebhook)

	e := setupRouter(handler.Handle, handler.Metrics, limiter)

	addr := ":" + strconv.Itoa(cfg.AppPort)
	go func() {
		log.Info("Notification receiver running",
			zap.String("addr", addr),
			zap.String("environment", string(provider.Environment())),
		)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func setupRouter(webhookHandler echo.HandlerFunc, stats func() metrics.WebhookSnapshot, limiter *middleware.RateLimiter) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echo.WrapMiddleware(logger.RequestIDMiddleware))
	e.Use(echo.WrapMiddleware(logger.LoggingMiddleware))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	e.GET("/metrics", func(c echo.Context) error {
		return c.JSON(http.StatusOK, stats())
	})

	e.POST("/webhook/midtrans", webhookHandler, echo.WrapMiddleware(limiter.Middleware))

	return e
}

// confirmNotification re-reads the order from the status API before trusting
// a final or paid notification, and logs when the two disagree.
func confirmNotification(checker statusChecker) webhook.Callback {
	return func(ctx context.Context, n payment.WebhookNotification) error {
		log := logger.FromCtx(ctx)

		if n.Status != payment.StatusPaid && !n.Status.IsFinal() {
			log.Info("Payment still open", zap.String("status", string(n.Status)))
			return nil
		}

		status, err := checker.GetStatus(ctx, n.OrderID)
		if err != nil {
			return err
		}

		if status.Status != n.Status {
			log.Warn("Notification differs from status API",
				zap.String("notified", string(n.Status)),
				zap.String("actual", string(status.Status)),
			)
			return nil
		}

		log.Info("Payment confirmed",
			zap.String("status", string(status.Status)),
			zap.Float64("amount", status.Amount),
		)
		return nil
	}
}
