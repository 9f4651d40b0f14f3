package graph

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	errs "graphkit/pkg/errors"
	"graphkit/pkg/logger"
	"graphkit/pkg/ratelimit"
	"graphkit/pkg/retry"
)

// Request is an outgoing call: a URL without query and the ordered parameters.
type Request struct {
	URL        string
	Parameters []Parameter
}

// Response is the raw result of a call. Non-2xx statuses are returned as
// responses, not errors; translating them is up to the caller.
type Response struct {
	StatusCode int
	Body       string
	Header     http.Header
}

// WebRequestor performs the HTTP exchange for a client. Implementations
// return an error only when no response was obtained.
type WebRequestor interface {
	ExecuteGet(ctx context.Context, req *Request) (*Response, error)
	ExecutePost(ctx context.Context, req *Request) (*Response, error)
}

// DefaultWebRequestor is a WebRequestor over net/http. It is safe for
// concurrent use.
type DefaultWebRequestor struct {
	httpClient *http.Client
	limiter    ratelimit.Limiter
	retryCfg   func() *retry.Config
	logger     logger.Logger
	userAgent  string
}

// RequestorOption configures a DefaultWebRequestor.
type RequestorOption func(*DefaultWebRequestor)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) RequestorOption {
	return func(r *DefaultWebRequestor) {
		r.httpClient = c
	}
}

// WithLimiter makes every attempt wait on l first.
func WithLimiter(l ratelimit.Limiter) RequestorOption {
	return func(r *DefaultWebRequestor) {
		r.limiter = l
	}
}

// WithRetry retries GET requests that fail with network errors, throttling
// or 5xx responses, up to maxAttempts times with error-aware backoff. POST
// requests are sent once.
func WithRetry(maxAttempts int) RequestorOption {
	return func(r *DefaultWebRequestor) {
		r.retryCfg = func() *retry.Config {
			return retry.ForHTTP(maxAttempts, r.logger)
		}
	}
}

// WithRetryConfig uses a fixed retry configuration for GET requests.
func WithRetryConfig(cfg *retry.Config) RequestorOption {
	return func(r *DefaultWebRequestor) {
		r.retryCfg = func() *retry.Config { return cfg }
	}
}

// WithTracing wraps the transport with OpenTelemetry instrumentation.
func WithTracing() RequestorOption {
	return func(r *DefaultWebRequestor) {
		base := r.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c := *r.httpClient
		c.Transport = otelhttp.NewTransport(base,
			otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
				return "graph " + req.Method + " " + req.URL.Path
			}),
		)
		r.httpClient = &c
	}
}

// WithRequestorLogger sets the logger used for request logging.
func WithRequestorLogger(l logger.Logger) RequestorOption {
	return func(r *DefaultWebRequestor) {
		r.logger = l
	}
}

// NewDefaultWebRequestor creates a requestor with a 30 second timeout.
// Options apply in order, so WithTracing should follow WithHTTPClient.
func NewDefaultWebRequestor(opts ...RequestorOption) *DefaultWebRequestor {
	r := &DefaultWebRequestor{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.NewNopLogger(),
		userAgent:  "graphkit/1.0",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *DefaultWebRequestor) ExecuteGet(ctx context.Context, req *Request) (*Response, error) {
	return r.execute(ctx, http.MethodGet, req)
}

func (r *DefaultWebRequestor) ExecutePost(ctx context.Context, req *Request) (*Response, error) {
	return r.execute(ctx, http.MethodPost, req)
}

func (r *DefaultWebRequestor) execute(ctx context.Context, method string, req *Request) (*Response, error) {
	// POST bodies may carry single-use values such as authorization codes.
	if r.retryCfg == nil || method == http.MethodPost {
		return r.do(ctx, method, req)
	}

	// A retryable status keeps its response so the caller can still read
	// the error envelope once attempts run out.
	var last *Response
	err := retry.Do(ctx, func(ctx context.Context) error {
		resp, err := r.do(ctx, method, req)
		if err != nil {
			last = nil
			return err
		}
		last = resp
		if errs.IsRetryableStatusCode(resp.StatusCode) {
			return statusError(resp.StatusCode)
		}
		return nil
	}, r.retryCfg())
	if last != nil {
		return last, nil
	}
	return nil, err
}

func (r *DefaultWebRequestor) do(ctx context.Context, method string, req *Request) (*Response, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var (
		httpReq *http.Request
		err     error
	)
	switch method {
	case http.MethodPost:
		httpReq, err = http.NewRequestWithContext(ctx, method, req.URL, strings.NewReader(encodeParameters(req.Parameters)))
		if err == nil {
			httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	default:
		httpReq, err = http.NewRequestWithContext(ctx, method, appendQuery(req.URL, req.Parameters), nil)
	}
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: "failed to create request",
			Cause:   err,
		}
	}
	httpReq.Header.Set("User-Agent", r.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.httpClient.Do(httpReq)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		r.logger.ErrorWithFields("graph request failed", map[string]interface{}{
			"method":      method,
			"url":         logger.RedactURL(httpReq.URL.String()),
			"error":       err.Error(),
			"duration_ms": elapsed,
		})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("%s %s failed", method, httpReq.URL.Path),
			Cause:   err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: "failed to read response body",
			Code:    resp.StatusCode,
			Cause:   err,
		}
	}

	logger.LogRequest(r.logger, method, httpReq.URL.String(), resp.StatusCode, elapsed)

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Header:     resp.Header,
	}, nil
}

func statusError(status int) *errs.Error {
	t := errs.ErrorTypeServerError
	if status == http.StatusTooManyRequests {
		t = errs.ErrorTypeRateLimit
	}
	return &errs.Error{
		Type:    t,
		Message: fmt.Sprintf("server returned status %d", status),
		Code:    status,
	}
}
