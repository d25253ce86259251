package midtrans

// Options are merged into every Snap request when set.
type Options struct {
	EnabledPayments []string           `json:"enabled_payments,omitempty"`
	CreditCard      *CreditCardOptions `json:"credit_card,omitempty"`
}

type CreditCardOptions struct {
	Secure      *bool        `json:"secure,omitempty"`
	Bank        string       `json:"bank,omitempty"`
	Installment *Installment `json:"installment,omitempty"`
}

type Installment struct {
	Required *bool            `json:"required,omitempty"`
	Terms    map[string][]int `json:"terms,omitempty"`
}

// SnapRequest is the body of POST /snap/v1/transactions.
type SnapRequest struct {
	TransactionDetails TransactionDetails `json:"transaction_details"`
	CustomerDetails    CustomerDetails    `json:"customer_details"`
	ItemDetails        []ItemDetail       `json:"item_details,omitempty"`
	EnabledPayments    []string           `json:"enabled_payments,omitempty"`
	CreditCard         *CreditCardOptions `json:"credit_card,omitempty"`
	Expiry             *Expiry            `json:"expiry,omitempty"`
	Callbacks          *Callbacks         `json:"callbacks,omitempty"`
}

type TransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type CustomerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type ItemDetail struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type Expiry struct {
	StartTime string `json:"start_time"`
	Unit      string `json:"unit"`
	Duration  int    `json:"duration"`
}

type Callbacks struct {
	Finish string `json:"finish,omitempty"`
}

type SnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// Field names shared by the Core API status response and HTTP notifications.
const (
	fieldStatusCode        = "status_code"
	fieldTransactionID     = "transaction_id"
	fieldOrderID           = "order_id"
	fieldGrossAmount       = "gross_amount"
	fieldPaymentType       = "payment_type"
	fieldTransactionStatus = "transaction_status"
	fieldSettlementTime    = "settlement_time"
	fieldSignatureKey      = "signature_key"
)
