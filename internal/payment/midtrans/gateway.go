package midtrans

import (
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"indo-payment/internal/payment"
)

const (
	snapProductionURL    = "https://app.midtrans.com"
	snapSandboxURL       = "https://app.sandbox.midtrans.com"
	coreProductionURL    = "https://api.midtrans.com"
	coreSandboxURL       = "https://api.sandbox.midtrans.com"
	snapTransactionsPath = "/snap/v1/transactions"

	// Midtrans expects local Jakarta time with a literal offset.
	startTimeLayout      = "2006-01-02 15:04:05 -0700"
	settlementTimeLayout = "2006-01-02 15:04:05"
	defaultExpiryMinutes = 60
)

var wib = time.FixedZone("WIB", 7*60*60)

var statusTable = map[string]payment.PaymentStatus{
	"pending":    payment.StatusPending,
	"capture":    payment.StatusPaid,
	"settlement": payment.StatusPaid,
	"deny":       payment.StatusFailed,
	"cancel":     payment.StatusCancelled,
	"expire":     payment.StatusExpired,
	"refund":     payment.StatusRefunded,
}

// SnapURL is the Snap API base for env.
func SnapURL(env payment.Environment) string {
	if env.Resolve() == payment.EnvironmentProduction {
		return snapProductionURL
	}
	return snapSandboxURL
}

// CoreAPIURL is the Core API base for env, used for status lookups.
func CoreAPIURL(env payment.Environment) string {
	if env.Resolve() == payment.EnvironmentProduction {
		return coreProductionURL
	}
	return coreSandboxURL
}

// Gateway implements payment.Gateway for Midtrans Snap and Core API.
type Gateway struct {
	serverKey string
	env       payment.Environment
	options   Options
}

var _ payment.Gateway = (*Gateway)(nil)

func NewGateway(serverKey string, env payment.Environment, options Options) (*Gateway, error) {
	if serverKey == "" {
		return nil, payment.NewConfigurationError(payment.ErrAPIKeyRequired)
	}
	return &Gateway{
		serverKey: serverKey,
		env:       env.Resolve(),
		options:   options,
	}, nil
}

func (g *Gateway) Name() string {
	return "midtrans"
}

func (g *Gateway) Environment() payment.Environment {
	return g.env
}

func (g *Gateway) BaseURL() string {
	return SnapURL(g.env)
}

// AuthHeaders is HTTP Basic with the server key as user and an empty password.
func (g *Gateway) AuthHeaders() map[string]string {
	auth := base64.StdEncoding.EncodeToString([]byte(g.serverKey + ":"))
	return map[string]string{"Authorization": "Basic " + auth}
}

// ----------------- Invoice -----------------

func (g *Gateway) BuildInvoiceRequest(params payment.CreateInvoiceParams, now time.Time) (*payment.Request, error) {
	snap := &SnapRequest{
		TransactionDetails: TransactionDetails{
			OrderID:     params.OrderID,
			GrossAmount: params.Amount,
		},
		CustomerDetails: CustomerDetails{
			FirstName: params.Customer.Name,
			Email:     params.Customer.Email,
			Phone:     params.Customer.Phone,
		},
	}

	if len(params.Items) > 0 {
		snap.ItemDetails = make([]ItemDetail, len(params.Items))
		for i, item := range params.Items {
			id := item.ID
			if id == "" {
				id = fmt.Sprintf("item-%d", i)
			}
			snap.ItemDetails[i] = ItemDetail{
				ID:       id,
				Name:     item.Name,
				Price:    item.Price,
				Quantity: item.Quantity,
			}
		}
	}

	if len(g.options.EnabledPayments) > 0 {
		snap.EnabledPayments = g.options.EnabledPayments
	}
	if g.options.CreditCard != nil {
		snap.CreditCard = g.options.CreditCard
	}

	// Out-of-range durations are left for Midtrans to reject.
	if params.ExpiresIn != 0 {
		snap.Expiry = &Expiry{
			StartTime: FormatStartTime(now),
			Unit:      "minute",
			Duration:  params.ExpiresIn,
		}
	}

	if params.SuccessURL != "" {
		snap.Callbacks = &Callbacks{Finish: params.SuccessURL}
	}

	return &payment.Request{
		Method:  http.MethodPost,
		BaseURL: SnapURL(g.env),
		Path:    snapTransactionsPath,
		Body:    snap,
	}, nil
}

func (g *Gateway) ParseInvoiceResponse(raw []byte, params payment.CreateInvoiceParams, now time.Time) (*payment.Invoice, error) {
	var res SnapResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("midtrans: decode snap response: %w", err)
	}

	expiresIn := params.ExpiresIn
	if expiresIn == 0 {
		expiresIn = defaultExpiryMinutes
	}

	return &payment.Invoice{
		ID:         res.Token,
		OrderID:    params.OrderID,
		Amount:     params.Amount,
		Currency:   params.Currency,
		Status:     payment.StatusPending,
		PaymentURL: res.RedirectURL,
		ExpiresAt:  now.Add(time.Duration(expiresIn) * time.Minute),
		CreatedAt:  now,
		Metadata:   params.Metadata,
	}, nil
}

// ----------------- Status -----------------

func (g *Gateway) BuildStatusRequest(orderID string) *payment.Request {
	return &payment.Request{
		Method:  http.MethodGet,
		BaseURL: CoreAPIURL(g.env),
		Path:    "/v2/" + url.PathEscape(orderID) + "/status",
	}
}

// LookupMiss detects the Core API answering with an embedded status_code of
// 404 (no payment attempted yet) or 401 (not visible to this key).
// The code is compared in its textual form, so a numeric 404 matches too.
func (g *Gateway) LookupMiss(raw []byte) bool {
	body, err := payment.DecodeJSONObject(raw)
	if err != nil {
		return false
	}
	switch payment.StringField(body, fieldStatusCode) {
	case "404", "401":
		return true
	}
	return false
}

func (g *Gateway) ParseStatusResponse(raw []byte, orderID string) (*payment.PaymentStatusResponse, error) {
	body, err := payment.DecodeJSONObject(raw)
	if err != nil {
		return nil, fmt.Errorf("midtrans: decode status response: %w", err)
	}

	resolvedOrderID := payment.StringField(body, fieldOrderID)
	if resolvedOrderID == "" {
		resolvedOrderID = orderID
	}

	return &payment.PaymentStatusResponse{
		ID:            payment.StringField(body, fieldTransactionID),
		OrderID:       resolvedOrderID,
		Status:        g.MapStatus(payment.StringField(body, fieldTransactionStatus)),
		Amount:        payment.ParseAmount(payment.StringField(body, fieldGrossAmount)),
		PaidAt:        parseSettlementTime(payment.StringField(body, fieldSettlementTime)),
		PaymentMethod: payment.StringField(body, fieldPaymentType),
		Metadata:      map[string]any{"raw": body},
	}, nil
}

// ----------------- Webhook -----------------

// ProvidedSignature reads signature_key from the body. Midtrans does not
// sign through headers.
func (g *Gateway) ProvidedSignature(body map[string]any, _ http.Header) string {
	return payment.StringField(body, fieldSignatureKey)
}

// ComputeSignature is hex(SHA-512(order_id + status_code + gross_amount + server key)).
func (g *Gateway) ComputeSignature(body map[string]any) string {
	input := payment.StringField(body, fieldOrderID) +
		payment.StringField(body, fieldStatusCode) +
		payment.StringField(body, fieldGrossAmount) +
		g.serverKey
	sum := sha512.Sum512([]byte(input))
	return hex.EncodeToString(sum[:])
}

func (g *Gateway) ParseWebhook(body map[string]any) payment.WebhookNotification {
	return payment.WebhookNotification{
		OrderID:       payment.StringField(body, fieldOrderID),
		Status:        g.MapStatus(payment.StringField(body, fieldTransactionStatus)),
		Amount:        payment.ParseAmount(payment.StringField(body, fieldGrossAmount)),
		PaidAt:        parseSettlementTime(payment.StringField(body, fieldSettlementTime)),
		PaymentMethod: payment.StringField(body, fieldPaymentType),
		RawData:       body,
	}
}

// MapStatus translates a Midtrans transaction_status. Unknown values are
// pending so an unrecognised state is never taken as success or failure.
func (g *Gateway) MapStatus(gatewayStatus string) payment.PaymentStatus {
	if status, ok := statusTable[gatewayStatus]; ok {
		return status
	}
	return payment.StatusPending
}

// FormatStartTime renders t as Jakarta wall time, e.g. "2024-01-15 17:00:00 +0700".
func FormatStartTime(t time.Time) string {
	return t.In(wib).Format(startTimeLayout)
}

func parseSettlementTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(settlementTimeLayout, s, wib)
	if err != nil {
		return nil
	}
	return &t
}
