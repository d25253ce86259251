package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Do(ctx context.Context, req *Request) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// headerGateway signs through an X-Signature header so the header path of
// CheckWebhook is exercised.
type headerGateway struct{}

func (headerGateway) Name() string                   { return "stub" }
func (headerGateway) BaseURL() string                { return "https://stub.example" }
func (headerGateway) AuthHeaders() map[string]string { return map[string]string{"X-Key": "k"} }

func (headerGateway) BuildInvoiceRequest(params CreateInvoiceParams, now time.Time) (*Request, error) {
	if params.OrderID == "" {
		return nil, errors.New("order id required")
	}
	return &Request{Method: http.MethodPost, Path: "/invoices", Body: params}, nil
}

func (headerGateway) ParseInvoiceResponse(raw []byte, params CreateInvoiceParams, now time.Time) (*Invoice, error) {
	var res struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, err
	}
	return &Invoice{
		ID:         res.ID,
		OrderID:    params.OrderID,
		Amount:     params.Amount,
		Currency:   params.Currency,
		Status:     StatusPending,
		PaymentURL: res.URL,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Hour),
	}, nil
}

func (headerGateway) BuildStatusRequest(orderID string) *Request {
	return &Request{Method: http.MethodGet, Path: "/status/" + orderID}
}

func (headerGateway) LookupMiss(raw []byte) bool {
	body, err := DecodeJSONObject(raw)
	return err == nil && StringField(body, "code") == "NOT_FOUND"
}

func (headerGateway) ParseStatusResponse(raw []byte, orderID string) (*PaymentStatusResponse, error) {
	body, err := DecodeJSONObject(raw)
	if err != nil {
		return nil, err
	}
	return &PaymentStatusResponse{
		ID:      StringField(body, "id"),
		OrderID: orderID,
		Status:  PaymentStatus(StringField(body, "state")),
		Amount:  ParseAmount(StringField(body, "amount")),
	}, nil
}

func (headerGateway) ProvidedSignature(_ map[string]any, headers http.Header) string {
	return headers.Get("X-Signature")
}

func (headerGateway) ComputeSignature(body map[string]any) string {
	return "sig:" + StringField(body, "order")
}

func (headerGateway) ParseWebhook(body map[string]any) WebhookNotification {
	return WebhookNotification{OrderID: StringField(body, "order"), Status: StatusPaid, RawData: body}
}

func (headerGateway) MapStatus(s string) PaymentStatus {
	if s == "ok" {
		return StatusPaid
	}
	return StatusPending
}

var testNow = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func newStubProvider(tr Transport) *Provider {
	return NewProvider(headerGateway{}, tr, WithClock(func() time.Time { return testNow }))
}

func TestProvider_CreateInvoice(t *testing.T) {
	params := CreateInvoiceParams{Amount: 5000, Currency: CurrencyIDR, OrderID: "O-1"}

	t.Run("Success", func(t *testing.T) {
		tr := new(MockTransport)
		tr.On("Do", mock.Anything, mock.MatchedBy(func(r *Request) bool {
			return r.BaseURL == "https://stub.example" && r.Path == "/invoices"
		})).Return([]byte(`{"id":"inv-1","url":"https://pay/inv-1"}`), nil)

		invoice, err := newStubProvider(tr).CreateInvoice(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, "inv-1", invoice.ID)
		assert.Equal(t, StatusPending, invoice.Status)
		assert.True(t, invoice.CreatedAt.Equal(testNow))
		tr.AssertExpectations(t)
	})

	t.Run("BuildError", func(t *testing.T) {
		tr := new(MockTransport)
		_, err := newStubProvider(tr).CreateInvoice(context.Background(), CreateInvoiceParams{})
		assert.EqualError(t, err, "order id required")
		tr.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
	})

	t.Run("TransportError", func(t *testing.T) {
		tr := new(MockTransport)
		apiErr := NewAPIError(http.StatusBadRequest, "Bad Request", map[string]any{"message": "amount too low"}, nil)
		tr.On("Do", mock.Anything, mock.Anything).Return(nil, apiErr)

		_, err := newStubProvider(tr).CreateInvoice(context.Background(), params)
		got, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, "amount too low", got.Message)
	})
}

func TestProvider_GetStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		tr := new(MockTransport)
		tr.On("Do", mock.Anything, mock.Anything).Return([]byte(`{"id":"p-1","state":"paid","amount":"12.50"}`), nil)

		status, err := newStubProvider(tr).GetStatus(context.Background(), "O-1")
		require.NoError(t, err)
		assert.Equal(t, "p-1", status.ID)
		assert.Equal(t, StatusPaid, status.Status)
		assert.Equal(t, 12.5, status.Amount)
	})

	t.Run("LookupMissInSuccessBody", func(t *testing.T) {
		tr := new(MockTransport)
		tr.On("Do", mock.Anything, mock.Anything).Return([]byte(`{"code":"NOT_FOUND"}`), nil)

		status, err := newStubProvider(tr).GetStatus(context.Background(), "O-2")
		require.NoError(t, err)
		assert.Equal(t, "", status.ID)
		assert.Equal(t, "O-2", status.OrderID)
		assert.Equal(t, StatusPending, status.Status)
		assert.Equal(t, float64(0), status.Amount)
		assert.Equal(t, map[string]any{"code": "NOT_FOUND"}, status.Metadata["raw"])
	})

	t.Run("LookupMissInErrorBody", func(t *testing.T) {
		tr := new(MockTransport)
		body := []byte(`{"code":"NOT_FOUND"}`)
		tr.On("Do", mock.Anything, mock.Anything).
			Return(nil, NewAPIError(http.StatusNotFound, "Not Found", map[string]any{"code": "NOT_FOUND"}, body))

		status, err := newStubProvider(tr).GetStatus(context.Background(), "O-3")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, status.Status)
	})

	t.Run("OtherAPIError", func(t *testing.T) {
		tr := new(MockTransport)
		tr.On("Do", mock.Anything, mock.Anything).
			Return(nil, NewAPIError(http.StatusBadGateway, "Bad Gateway", nil, []byte("upstream down")))

		_, err := newStubProvider(tr).GetStatus(context.Background(), "O-4")
		got, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadGateway, got.StatusCode)
		assert.Equal(t, "Bad Gateway", got.Error())
	})

	t.Run("NetworkError", func(t *testing.T) {
		tr := new(MockTransport)
		tr.On("Do", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: timeout"))

		_, err := newStubProvider(tr).GetStatus(context.Background(), "O-5")
		assert.EqualError(t, err, "dial tcp: timeout")
	})
}

func TestProvider_Webhook(t *testing.T) {
	p := newStubProvider(new(MockTransport))
	body := map[string]any{"order": "O-9"}

	t.Run("HeaderSignature", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-Signature", "sig:O-9")
		assert.True(t, p.VerifyWebhook(body, headers))
	})

	t.Run("Missing", func(t *testing.T) {
		err := p.CheckWebhook(body, http.Header{})
		assert.ErrorIs(t, err, ErrSignatureMissing)
		assert.False(t, p.VerifyWebhook(body, nil))
	})

	t.Run("Mismatch", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-Signature", "sig:O-8")
		err := p.CheckWebhook(body, headers)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
		assert.True(t, IsWebhook(err))
	})

	t.Run("ParseKeepsRawData", func(t *testing.T) {
		n := p.ParseWebhook(body)
		assert.Equal(t, "O-9", n.OrderID)
		assert.Equal(t, body, n.RawData)
	})
}
