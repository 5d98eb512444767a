package backend

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/refdatahub/refgate/internal/core/errs"
)

// Client is the typed facade over the retry layer. It resolves relative
// paths against the configured backend base, attaches JSON defaults and
// decodes response bodies.
type Client struct {
	base    string
	retrier *Retrier
	breaker *Breaker
	log     *slog.Logger

	timeout        time.Duration
	retries        int
	retryDelay     time.Duration
	retryOnTimeout bool

	// errorHook observes every classified failure before it is returned,
	// for domain recovery like redirect-on-401. It never suppresses the
	// returned error; callers wanting a non-returning flow use TryDo.
	errorHook func(*errs.Error)
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the default per-attempt timeout. d <= 0 disables the
// internal deadline.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithRetries sets the default retry budget (additional attempts).
func WithRetries(n int) Option { return func(c *Client) { c.retries = n } }

// WithRetryDelay sets the base backoff unit.
func WithRetryDelay(d time.Duration) Option { return func(c *Client) { c.retryDelay = d } }

// WithRetryOnTimeout controls timeout retry eligibility for this client.
func WithRetryOnTimeout(v bool) Option { return func(c *Client) { c.retryOnTimeout = v } }

// WithBreaker guards all calls with b. A nil breaker disables the guard.
func WithBreaker(b *Breaker) Option { return func(c *Client) { c.breaker = b } }

// WithErrorHook installs an observation callback for classified failures.
func WithErrorHook(hook func(*errs.Error)) Option { return func(c *Client) { c.errorHook = hook } }

// WithLogger sets the client logger.
func WithLogger(log *slog.Logger) Option { return func(c *Client) { c.log = log } }

// New creates a client bound to baseURL.
//
// Defaults: 10s timeout, no retries, 1s base delay, timeouts retryable.
// The single timeout-retry default replaces the per-call-site divergence
// the previous implementation had.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errs.Validation("invalid backend base address: "+baseURL, "base_url")
	}
	c := &Client{
		base:           strings.TrimSuffix(baseURL, "/"),
		retrier:        NewRetrier(NewExecutor(), nil),
		log:            slog.Default(),
		timeout:        DefaultTimeout,
		retries:        0,
		retryDelay:     DefaultRetryDelay,
		retryOnTimeout: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.retrier.log = c.log
	return c, nil
}

// CallOption overrides request settings for a single call.
type CallOption func(*Request)

// WithHeader adds a header to the outgoing request.
func WithHeader(key, value string) CallOption {
	return func(r *Request) { r.Header.Set(key, value) }
}

// WithCallTimeout overrides the per-attempt timeout for one call.
func WithCallTimeout(d time.Duration) CallOption { return func(r *Request) { r.Timeout = d } }

// WithCallRetries overrides the retry budget for one call.
func WithCallRetries(n int) CallOption { return func(r *Request) { r.Retries = n } }

// Get issues a GET and decodes the JSON response into out (skipped when
// out is nil).
func (c *Client) Get(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodGet, path, nil, out, opts)
}

// Post issues a POST with the JSON-encoded in as body.
func (c *Client) Post(ctx context.Context, path string, in, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodPost, path, in, out, opts)
}

// Put issues a PUT with the JSON-encoded in as body.
func (c *Client) Put(ctx context.Context, path string, in, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodPut, path, in, out, opts)
}

// Patch issues a PATCH with the JSON-encoded in as body.
func (c *Client) Patch(ctx context.Context, path string, in, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodPatch, path, in, out, opts)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodDelete, path, nil, out, opts)
}

func (c *Client) call(ctx context.Context, method, path string, in, out any, opts []CallOption) error {
	req := c.newRequest(method, path)
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errs.Validation("request body is not serializable: "+err.Error(), "body")
		}
		req.Body = body
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		return errs.Unknown("undecodable response body: "+err.Error(), err)
	}
	return nil
}

// Do executes a prepared request through the breaker and retry layer.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if c.breaker != nil && !c.breaker.Allow() {
		ce := errs.Network("backend temporarily unavailable", "circuit breaker open", nil)
		c.observe(ce)
		return nil, ce
	}

	resp, err := c.retrier.Do(ctx, req)
	c.record(err)
	if err != nil {
		var ce *errs.Error
		if errors.As(err, &ce) {
			c.observe(ce)
		}
		return resp, err
	}
	return resp, nil
}

// TryDo is the non-returning-error variant of Do: failures come back as a
// classified value instead of an error. When the caller's context was
// canceled it returns (nil, nil); check ctx.Err() in that case.
func (c *Client) TryDo(ctx context.Context, req *Request) (*Response, *errs.Error) {
	resp, err := c.Do(ctx, req)
	if err == nil {
		return resp, nil
	}
	var ce *errs.Error
	if errors.As(err, &ce) {
		return resp, ce
	}
	return nil, nil
}

// NewRequest builds a request for path with the client defaults applied.
func (c *Client) NewRequest(method, path string) *Request {
	return c.newRequest(method, path)
}

func (c *Client) newRequest(method, path string) *Request {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return &Request{
		Method:         method,
		URL:            c.target(path),
		Header:         h,
		Timeout:        c.timeout,
		Retries:        c.retries,
		RetryDelay:     c.retryDelay,
		RetryOnTimeout: c.retryOnTimeout,
	}
}

// target resolves path against the backend base. Absolute addresses pass
// through untouched so callers can hit same-origin proxy paths directly.
func (c *Client) target(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base + path
}

func (c *Client) observe(ce *errs.Error) {
	if c.errorHook != nil {
		c.errorHook(ce)
	}
}

// record feeds the breaker. Only backend-health failures count against it:
// connectivity, timeouts and 5xx. Client-side 4xx responses do not.
func (c *Client) record(err error) {
	if c.breaker == nil {
		return
	}
	if err == nil {
		c.breaker.RecordSuccess()
		return
	}
	var ce *errs.Error
	if !errors.As(err, &ce) {
		return
	}
	switch {
	case ce.Kind == errs.KindNetwork, ce.Kind == errs.KindTimeout:
		c.breaker.RecordFailure()
	case ce.Kind == errs.KindHTTP && ce.StatusCode >= 500:
		c.breaker.RecordFailure()
	default:
		c.breaker.RecordSuccess()
	}
}
