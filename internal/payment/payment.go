// internal/payment/payment.go
package payment

import (
	"context"
	"net/http"
	"time"
)

// Request is one call against a gateway's REST API. BaseURL may be left
// empty, in which case the gateway's default base URL is used.
type Request struct {
	Method  string
	BaseURL string
	Path    string
	Body    any
	Headers map[string]string
}

// Transport performs a single authenticated request and returns the raw
// body of a 2xx response. Any other status must surface as a KindAPI *Error.
type Transport interface {
	Do(ctx context.Context, req *Request) ([]byte, error)
}

// Gateway is the capability set one payment processor has to provide.
// Implementations are pure: all I/O goes through the Transport owned by
// Provider.
type Gateway interface {
	Name() string
	BaseURL() string
	AuthHeaders() map[string]string

	BuildInvoiceRequest(params CreateInvoiceParams, now time.Time) (*Request, error)
	ParseInvoiceResponse(raw []byte, params CreateInvoiceParams, now time.Time) (*Invoice, error)

	BuildStatusRequest(orderID string) *Request
	// LookupMiss reports whether raw is the gateway's way of saying that the
	// order has no payment attempt yet (or is not visible to this key).
	LookupMiss(raw []byte) bool
	ParseStatusResponse(raw []byte, orderID string) (*PaymentStatusResponse, error)

	// ProvidedSignature extracts the signature the sender attached, from
	// the body or from headers depending on the gateway's scheme.
	ProvidedSignature(body map[string]any, headers http.Header) string
	ComputeSignature(body map[string]any) string
	ParseWebhook(body map[string]any) WebhookNotification

	MapStatus(gatewayStatus string) PaymentStatus
}
