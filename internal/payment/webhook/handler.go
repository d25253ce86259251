package webhook

import (
	"context"
	"io"
	"net/http"

	"indo-payment/internal/logger"
	"indo-payment/internal/metrics"
	"indo-payment/internal/payment"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// maxBodyBytes caps a notification body; Midtrans payloads are a few KB.
const maxBodyBytes = 1 << 20

// Verifier is the part of a payment provider the receiver needs.
type Verifier interface {
	CheckWebhook(body map[string]any, headers http.Header) error
	ParseWebhook(body map[string]any) payment.WebhookNotification
}

// Callback receives each verified, first-seen notification. Returning an
// error answers 500 so the gateway redelivers.
type Callback func(ctx context.Context, n payment.WebhookNotification) error

// KeyFunc derives the de-duplication key of a decoded body. An empty key
// disables de-duplication for that notification.
type KeyFunc func(body map[string]any) string

// NotificationKey identifies one Midtrans state transition of an order.
func NotificationKey(body map[string]any) string {
	orderID := payment.StringField(body, "order_id")
	if orderID == "" {
		return ""
	}
	return orderID + ":" +
		payment.StringField(body, "transaction_status") + ":" +
		payment.StringField(body, "status_code")
}

type Handler struct {
	verifier Verifier
	deduper  Deduper
	keyFunc  KeyFunc
	callback Callback
	metrics  *metrics.Webhook
}

type HandlerOption func(*Handler)

// WithDeduper enables redelivery de-duplication.
func WithDeduper(d Deduper) HandlerOption {
	return func(h *Handler) { h.deduper = d }
}

// WithMetrics records outcomes into m instead of a private set of counters.
func WithMetrics(m *metrics.Webhook) HandlerOption {
	return func(h *Handler) {
		if m != nil {
			h.metrics = m
		}
	}
}

func WithKeyFunc(fn KeyFunc) HandlerOption {
	return func(h *Handler) {
		if fn != nil {
			h.keyFunc = fn
		}
	}
}

func NewHandler(verifier Verifier, callback Callback, opts ...HandlerOption) *Handler {
	h := &Handler{
		verifier: verifier,
		keyFunc:  NotificationKey,
		callback: callback,
		metrics:  &metrics.Webhook{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle is the echo route handler for gateway notifications.
func (h *Handler) Handle(c echo.Context) error {
	req := c.Request()
	ctx := req.Context()
	log := logger.FromCtx(ctx)
	timer := metrics.StartTimer()
	h.metrics.Received.Inc()

	raw, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		h.metrics.Invalid.Inc()
		log.Warn("Failed reading notification body", zap.Error(err))
		return c.String(http.StatusBadRequest, "failed to read body")
	}

	body, err := payment.DecodeWebhookBody(raw)
	if err != nil {
		h.metrics.Invalid.Inc()
		log.Warn("Invalid notification payload", zap.Error(err))
		return c.String(http.StatusBadRequest, "invalid JSON payload")
	}

	orderID := payment.StringField(body, "order_id")
	ctx = logger.WithOrderID(ctx, orderID)
	log = logger.FromCtx(ctx)

	if err := h.verifier.CheckWebhook(body, req.Header); err != nil {
		h.metrics.Rejected.Inc()
		log.Warn("Notification rejected", zap.Error(err))
		return c.String(http.StatusUnauthorized, "invalid signature")
	}

	key := ""
	if h.deduper != nil {
		key = h.keyFunc(body)
	}
	if key != "" {
		dup, err := h.deduper.Seen(ctx, key)
		switch {
		case err != nil:
			// Process without de-duplication.
			log.Warn("Dedup lookup failed", zap.Error(err))
			key = ""
		case dup:
			h.metrics.Duplicates.Inc()
			log.Info("Duplicate notification ignored", zap.String("dedup_key", key))
			return c.String(http.StatusOK, "ok")
		}
	}

	notification := h.verifier.ParseWebhook(body)
	log.Info("Notification received",
		zap.String("status", string(notification.Status)),
		zap.Float64("amount", notification.Amount),
		zap.String("payment_method", notification.PaymentMethod),
	)

	if h.callback != nil {
		if err := h.callback(ctx, notification); err != nil {
			h.metrics.Failed.Inc()
			log.Error("Notification callback failed", zap.Error(err))
			if key != "" {
				if ferr := h.deduper.Forget(ctx, key); ferr != nil {
					log.Warn("Failed releasing dedup key", zap.Error(ferr))
				}
			}
			return c.String(http.StatusInternalServerError, "failed to process notification")
		}
	}

	h.metrics.Processed.Inc()
	log.Debug("Notification processed", zap.Duration("duration", timer.Duration()))
	return c.String(http.StatusOK, "ok")
}

func (h *Handler) Metrics() metrics.WebhookSnapshot {
	return h.metrics.Snapshot()
}

// Register mounts the handler on path.
func (h *Handler) Register(e *echo.Echo, path string, m ...echo.MiddlewareFunc) {
	e.POST(path, h.Handle, m...)
}
