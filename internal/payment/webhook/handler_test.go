package webhook

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"indo-payment/internal/payment"
	"indo-payment/internal/payment/midtrans"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const serverKey = "SB-Mid-server-webhook"

// --- Mocks ---

type MockDeduper struct {
	mock.Mock
}

func (m *MockDeduper) Seen(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeduper) Forget(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockDeduper) Close() error {
	return nil
}

func signedBody(orderID, status, statusCode, amount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + amount + serverKey))
	return `{"order_id":"` + orderID + `","transaction_status":"` + status +
		`","status_code":"` + statusCode + `","gross_amount":"` + amount +
		`","payment_type":"bank_transfer","signature_key":"` + hex.EncodeToString(sum[:]) + `"}`
}

func newProvider(t *testing.T) *midtrans.Provider {
	t.Helper()
	p, err := midtrans.New(midtrans.Config{ServerKey: serverKey})
	require.NoError(t, err)
	return p
}

func serve(h *Handler, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.Register(e, "/webhook/midtrans")

	req := httptest.NewRequest(http.MethodPost, "/webhook/midtrans", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestHandler_Handle(t *testing.T) {
	t.Run("Success_Settlement", func(t *testing.T) {
		var got payment.WebhookNotification
		h := NewHandler(newProvider(t), func(_ context.Context, n payment.WebhookNotification) error {
			got = n
			return nil
		})

		w := serve(h, signedBody("ORDER-1", "settlement", "200", "150000.00"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ORDER-1", got.OrderID)
		assert.Equal(t, payment.StatusPaid, got.Status)
		assert.Equal(t, float64(150000), got.Amount)
		assert.Equal(t, "bank_transfer", got.PaymentMethod)
	})

	t.Run("InvalidSignature", func(t *testing.T) {
		called := false
		h := NewHandler(newProvider(t), func(context.Context, payment.WebhookNotification) error {
			called = true
			return nil
		})

		body := strings.Replace(signedBody("ORDER-2", "settlement", "200", "1.00"), `"1.00"`, `"2.00"`, 1)
		w := serve(h, body)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
		assert.Equal(t, uint64(1), h.Metrics().Rejected)
	})

	t.Run("MissingSignature", func(t *testing.T) {
		h := NewHandler(newProvider(t), nil)
		w := serve(h, `{"order_id":"ORDER-3","status_code":"200","gross_amount":"1.00"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		h := NewHandler(newProvider(t), nil)
		w := serve(h, `{not json`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = serve(h, `[]`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("CallbackError_ReleasesKey", func(t *testing.T) {
		d := new(MockDeduper)
		d.On("Seen", mock.Anything, "ORDER-4:settlement:200").Return(false, nil)
		d.On("Forget", mock.Anything, "ORDER-4:settlement:200").Return(nil)

		h := NewHandler(newProvider(t), func(context.Context, payment.WebhookNotification) error {
			return errors.New("db down")
		}, WithDeduper(d))

		w := serve(h, signedBody("ORDER-4", "settlement", "200", "10.00"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		d.AssertExpectations(t)
	})

	t.Run("Duplicate", func(t *testing.T) {
		calls := 0
		h := NewHandler(newProvider(t), func(context.Context, payment.WebhookNotification) error {
			calls++
			return nil
		}, WithDeduper(NewMemoryDeduper(0)))

		body := signedBody("ORDER-5", "settlement", "200", "10.00")
		assert.Equal(t, http.StatusOK, serve(h, body).Code)
		assert.Equal(t, http.StatusOK, serve(h, body).Code)
		assert.Equal(t, 1, calls)

		// A later transition of the same order is a new notification.
		assert.Equal(t, http.StatusOK, serve(h, signedBody("ORDER-5", "refund", "200", "10.00")).Code)
		assert.Equal(t, 2, calls)

		stats := h.Metrics()
		assert.Equal(t, uint64(3), stats.Received)
		assert.Equal(t, uint64(1), stats.Duplicates)
		assert.Equal(t, uint64(2), stats.Processed)
	})

	t.Run("DeduperError_StillProcesses", func(t *testing.T) {
		d := new(MockDeduper)
		d.On("Seen", mock.Anything, mock.Anything).Return(false, errors.New("redis: connection refused"))

		calls := 0
		h := NewHandler(newProvider(t), func(context.Context, payment.WebhookNotification) error {
			calls++
			return errors.New("retry later")
		}, WithDeduper(d))

		w := serve(h, signedBody("ORDER-6", "pending", "201", "10.00"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 1, calls)
		d.AssertNotCalled(t, "Forget", mock.Anything, mock.Anything)
	})

	t.Run("ForgedNotificationNotRecorded", func(t *testing.T) {
		d := new(MockDeduper)
		h := NewHandler(newProvider(t), nil, WithDeduper(d))

		w := serve(h, `{"order_id":"ORDER-7","transaction_status":"settlement","status_code":"200","gross_amount":"1.00","signature_key":"x"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		d.AssertNotCalled(t, "Seen", mock.Anything, mock.Anything)
	})
}

func TestNotificationKey(t *testing.T) {
	assert.Equal(t, "A:settlement:200", NotificationKey(map[string]any{
		"order_id":           "A",
		"transaction_status": "settlement",
		"status_code":        "200",
	}))
	assert.Equal(t, "", NotificationKey(map[string]any{"transaction_status": "settlement"}))
}
