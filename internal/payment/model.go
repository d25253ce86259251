package payment

import (
	"time"
)

type Currency string

const (
	CurrencyIDR Currency = "IDR"
	CurrencyUSD Currency = "USD"
	CurrencySGD Currency = "SGD"
	CurrencyMYR Currency = "MYR"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyIDR, CurrencyUSD, CurrencySGD, CurrencyMYR:
		return true
	}
	return false
}

// PaymentStatus is the gateway-independent lifecycle state of a payment.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusPaid       PaymentStatus = "paid"
	StatusFailed     PaymentStatus = "failed"
	StatusExpired    PaymentStatus = "expired"
	StatusRefunded   PaymentStatus = "refunded"
	StatusCancelled  PaymentStatus = "cancelled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusPaid, StatusFailed,
		StatusExpired, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}

// IsFinal reports whether no further transition is expected. Paid is not
// final because it can still move to refunded.
func (s PaymentStatus) IsFinal() bool {
	switch s {
	case StatusFailed, StatusExpired, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}

type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

// Resolve maps anything other than production to sandbox.
func (e Environment) Resolve() Environment {
	if e == EnvironmentProduction {
		return EnvironmentProduction
	}
	return EnvironmentSandbox
}

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type InvoiceItem struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description,omitempty"`
}

// CreateInvoiceParams is the canonical input for a new payment request.
// Amount and item prices are in the smallest unit of Currency.
type CreateInvoiceParams struct {
	Amount      int64          `json:"amount"`
	Currency    Currency       `json:"currency"`
	OrderID     string         `json:"order_id"`
	Customer    CustomerInfo   `json:"customer"`
	Items       []InvoiceItem  `json:"items,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	ExpiresIn   int            `json:"expires_in,omitempty"` // minutes
	SuccessURL  string         `json:"success_url,omitempty"`
	FailureURL  string         `json:"failure_url,omitempty"`
	Description string         `json:"description,omitempty"`
}

type Invoice struct {
	ID         string         `json:"id"`
	OrderID    string         `json:"order_id"`
	Amount     int64          `json:"amount"`
	Currency   Currency       `json:"currency"`
	Status     PaymentStatus  `json:"status"`
	PaymentURL string         `json:"payment_url"`
	ExpiresAt  time.Time      `json:"expires_at"`
	CreatedAt  time.Time      `json:"created_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// PaymentStatusResponse is the result of a status lookup. ID is empty when
// the gateway has no payment attempt for the order yet.
type PaymentStatusResponse struct {
	ID            string         `json:"id"`
	OrderID       string         `json:"order_id"`
	Status        PaymentStatus  `json:"status"`
	Amount        float64        `json:"amount"`
	PaidAt        *time.Time     `json:"paid_at,omitempty"`
	PaymentMethod string         `json:"payment_method,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

type WebhookNotification struct {
	OrderID       string         `json:"order_id"`
	Status        PaymentStatus  `json:"status"`
	Amount        float64        `json:"amount"`
	PaidAt        *time.Time     `json:"paid_at,omitempty"`
	PaymentMethod string         `json:"payment_method,omitempty"`
	RawData       map[string]any `json:"raw_data"`
}
