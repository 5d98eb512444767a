package backend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/refdatahub/refgate/internal/core/errs"
	"github.com/refdatahub/refgate/internal/observe/metrics"
)

// Executor performs exactly one outbound attempt per Do call.
//
// When the request carries a positive Timeout, an internal deadline context
// is derived from the caller's context, so either signal aborts the
// in-flight call. The derived context is always cancelled before Do
// returns; no timers outlive the attempt.
type Executor struct {
	client *http.Client
}

// NewExecutor creates an executor with a tuned shared transport.
// Deadlines come from request contexts, not the http.Client.
func NewExecutor() *Executor {
	return &Executor{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Do executes one attempt. On a non-2xx status it returns both the
// buffered response and the classified HTTP error, so the retry layer can
// read backoff hints like Retry-After. Every failure leaves through the
// classifier; caller cancellation is re-surfaced as context.Canceled.
func (e *Executor) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.URL == "" {
		return nil, errs.Validation("request target address is empty", "url")
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	attemptCtx := ctx
	cancel := context.CancelFunc(func() {})
	if req.Timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, req.Timeout)
	}
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, method, req.URL, body)
	if err != nil {
		return nil, errs.Validation("malformed request: "+err.Error(), "url")
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	start := time.Now()
	httpResp, err := e.client.Do(httpReq)
	metrics.BackendLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, e.fail(ctx, method, err, req.Timeout)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, e.fail(ctx, method, err, req.Timeout)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.BackendRequestsTotal.WithLabelValues(method, "http_error").Inc()
		return resp, errs.ClassifyResponse(resp.StatusCode, data)
	}

	metrics.BackendRequestsTotal.WithLabelValues(method, "ok").Inc()
	return resp, nil
}

// fail normalizes a transport failure. The caller's context is inspected
// first: if the external token was signaled, that wins over the internal
// deadline and the abandonment signal passes through unchanged.
func (e *Executor) fail(ctx context.Context, method string, err error, budget time.Duration) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		metrics.BackendRequestsTotal.WithLabelValues(method, "canceled").Inc()
		return context.Canceled
	}
	classified := errs.ClassifyTransport(err, budget)
	outcome := "error"
	var ce *errs.Error
	if errors.As(classified, &ce) {
		outcome = ce.Kind.String()
	}
	metrics.BackendRequestsTotal.WithLabelValues(method, outcome).Inc()
	return classified
}
