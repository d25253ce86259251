package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"indo-payment/internal/logger"
	"indo-payment/internal/payment"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client issues single-shot JSON requests to a gateway. It never retries.
type Client struct {
	r       *resty.Client
	headers map[string]string
}

type settings struct {
	httpClient *http.Client
	timeout    time.Duration
	headers    map[string]string
}

type Option func(*settings)

// WithHTTPClient sends requests through hc instead of a fresh http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) {
		s.httpClient = hc
	}
}

// WithTimeout bounds each request. Zero leaves deadlines to the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
	}
}

// WithHeaders adds headers sent on every request, typically gateway auth.
func WithHeaders(h map[string]string) Option {
	return func(s *settings) {
		for k, v := range h {
			s.headers[k] = v
		}
	}
}

func New(opts ...Option) *Client {
	s := &settings{headers: map[string]string{}}
	for _, opt := range opts {
		opt(s)
	}

	var r *resty.Client
	if s.httpClient != nil {
		r = resty.NewWithClient(s.httpClient)
	} else {
		r = resty.New()
	}
	r.SetRetryCount(0)
	if s.timeout > 0 {
		r.SetTimeout(s.timeout)
	}

	return &Client{r: r, headers: s.headers}
}

// Do sends req and returns the body of a 2xx response. Header precedence is
// Content-Type default, then client headers, then req.Headers.
func (c *Client) Do(ctx context.Context, req *payment.Request) ([]byte, error) {
	url := req.BaseURL + req.Path
	log := logger.FromCtx(ctx).With(
		zap.String("method", req.Method),
		zap.String("url", url),
	)

	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range c.headers {
		headers[k] = v
	}
	for k, v := range req.Headers {
		headers[k] = v
	}

	r := c.r.R().
		SetContext(ctx).
		SetHeaders(headers)
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	log.Debug("Sending gateway request")

	resp, err := r.Execute(req.Method, url)
	if err != nil {
		log.Error("Gateway request failed", zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}

	body := resp.Body()
	if resp.IsSuccess() {
		return body, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		decoded = nil
	}

	log.Warn("Gateway returned non-success status",
		zap.Int("status", resp.StatusCode()),
		zap.ByteString("response", body),
	)
	return nil, payment.NewAPIError(resp.StatusCode(), http.StatusText(resp.StatusCode()), decoded, body)
}
