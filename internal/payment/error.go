package payment

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindConfiguration Kind = "CONFIG_ERROR"
	KindAPI           Kind = "API_ERROR"
	KindWebhook       Kind = "WEBHOOK_ERROR"
)

var (
	ErrAPIKeyRequired    = errors.New("API key is required")
	ErrSignatureMissing  = errors.New("webhook signature missing")
	ErrSignatureMismatch = errors.New("webhook signature mismatch")
)

// Error is the single error type raised by the SDK. Kind selects which of
// the remaining fields are meaningful: StatusCode, Response and Body are
// only set for KindAPI.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Response   map[string]any
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewConfigurationError(err error) *Error {
	return &Error{Kind: KindConfiguration, Message: err.Error(), Err: err}
}

// NewAPIError builds an API error from a decoded error body. The message is
// the body's "message", else the first "error_messages" entry, else status.
func NewAPIError(statusCode int, status string, response map[string]any, body []byte) *Error {
	return &Error{
		Kind:       KindAPI,
		Message:    apiErrorMessage(response, statusCode, status),
		StatusCode: statusCode,
		Response:   response,
		Body:       body,
	}
}

func NewWebhookError(err error) *Error {
	return &Error{Kind: KindWebhook, Message: err.Error(), Err: err}
}

func apiErrorMessage(response map[string]any, statusCode int, status string) string {
	if msg, ok := response["message"].(string); ok && msg != "" {
		return msg
	}
	if list, ok := response["error_messages"].([]any); ok && len(list) > 0 {
		if msg, ok := list[0].(string); ok && msg != "" {
			return msg
		}
	}
	if status != "" {
		return status
	}
	return http.StatusText(statusCode)
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsConfiguration(err error) bool {
	return kindOf(err) == KindConfiguration
}

func IsWebhook(err error) bool {
	return kindOf(err) == KindWebhook
}

// AsAPIError returns the API error in err's chain, if any.
func AsAPIError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindAPI {
		return e, true
	}
	return nil, false
}
