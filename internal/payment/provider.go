package payment

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"indo-payment/internal/logger"

	"go.uber.org/zap"
)

// Provider runs the canonical payment operations against one Gateway. It
// holds only read-only configuration, so a single Provider may be shared
// by concurrent callers.
type Provider struct {
	gateway   Gateway
	transport Transport
	now       func() time.Time
}

type Option func(*Provider)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

func NewProvider(gateway Gateway, transport Transport, opts ...Option) *Provider {
	p := &Provider{
		gateway:   gateway,
		transport: transport,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return p.gateway.Name()
}

// ----------------- CreateInvoice -----------------

// CreateInvoice opens a payment request at the gateway. The returned
// invoice is always pending; ExpiresAt is computed locally and may drift
// from the gateway's own expiry, use GetStatus for the authoritative state.
func (p *Provider) CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*Invoice, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("gateway", p.gateway.Name()),
		zap.String("order_id", params.OrderID),
		zap.Int64("amount", params.Amount),
		zap.String("currency", string(params.Currency)),
	)

	now := p.now()

	req, err := p.gateway.BuildInvoiceRequest(params, now)
	if err != nil {
		log.Error("Failed to build invoice request", zap.Error(err))
		return nil, err
	}
	p.fillBaseURL(req)

	raw, err := p.transport.Do(ctx, req)
	if err != nil {
		log.Error("Invoice creation failed", zap.Error(err))
		return nil, err
	}

	invoice, err := p.gateway.ParseInvoiceResponse(raw, params, now)
	if err != nil {
		log.Error("Failed decoding invoice response", zap.Error(err))
		return nil, err
	}

	log.Info("Invoice created", zap.String("invoice_id", invoice.ID))
	return invoice, nil
}

// ----------------- GetStatus -----------------

// GetStatus looks up the payment state of a merchant order id. An order
// the gateway knows nothing to report about yet is returned as pending
// with an empty ID and zero amount, not as an error.
func (p *Provider) GetStatus(ctx context.Context, orderID string) (*PaymentStatusResponse, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("gateway", p.gateway.Name()),
		zap.String("order_id", orderID),
	)

	req := p.gateway.BuildStatusRequest(orderID)
	p.fillBaseURL(req)

	raw, err := p.transport.Do(ctx, req)
	if err != nil {
		apiErr, ok := AsAPIError(err)
		if !ok || !p.gateway.LookupMiss(apiErr.Body) {
			log.Error("Status lookup failed", zap.Error(err))
			return nil, err
		}
		raw = apiErr.Body
	}

	log.Debug("Raw status response", zap.ByteString("response", raw))

	if p.gateway.LookupMiss(raw) {
		log.Info("Order has no payment attempt yet")
		return &PaymentStatusResponse{
			ID:       "",
			OrderID:  orderID,
			Status:   StatusPending,
			Amount:   0,
			Metadata: RawMetadata(raw),
		}, nil
	}

	status, err := p.gateway.ParseStatusResponse(raw, orderID)
	if err != nil {
		log.Error("Failed decoding status response", zap.Error(err))
		return nil, err
	}
	return status, nil
}

// ----------------- Webhooks -----------------

// CheckWebhook verifies a notification body and reports why it failed:
// a KindWebhook error wrapping ErrSignatureMissing or ErrSignatureMismatch.
func (p *Provider) CheckWebhook(body map[string]any, headers http.Header) error {
	provided := p.gateway.ProvidedSignature(body, headers)
	if provided == "" {
		return NewWebhookError(ErrSignatureMissing)
	}

	expected := p.gateway.ComputeSignature(body)
	if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
		return NewWebhookError(ErrSignatureMismatch)
	}
	return nil
}

// VerifyWebhook is the boolean form of CheckWebhook. It performs no I/O.
func (p *Provider) VerifyWebhook(body map[string]any, headers http.Header) bool {
	return p.CheckWebhook(body, headers) == nil
}

// ParseWebhook maps a notification body without verifying it. Call
// VerifyWebhook first.
func (p *Provider) ParseWebhook(body map[string]any) WebhookNotification {
	return p.gateway.ParseWebhook(body)
}

// MapStatus exposes the gateway's status table.
func (p *Provider) MapStatus(gatewayStatus string) PaymentStatus {
	return p.gateway.MapStatus(gatewayStatus)
}

func (p *Provider) fillBaseURL(req *Request) {
	if req.BaseURL == "" {
		req.BaseURL = p.gateway.BaseURL()
	}
}
