// Package backend implements the resilient request layer shared by the
// client facade and the proxy adapter: one-attempt execution with a
// composed timeout, a bounded retry loop, and typed JSON helpers.
package backend

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// Defaults applied when a Request leaves the corresponding field zero.
const (
	DefaultTimeout    = 10 * time.Second
	DefaultRetryDelay = time.Second
)

// Request describes one logical backend call.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte

	// Timeout bounds each attempt. Zero or negative disables the
	// internal deadline; the caller then accepts an unbounded wait.
	Timeout time.Duration

	// Retries is the number of additional attempts after the first.
	Retries int

	// RetryDelay is the base backoff unit; the actual wait grows
	// linearly with the attempt index.
	RetryDelay time.Duration

	// RetryOnTimeout controls whether a per-attempt deadline expiry is
	// eligible for retry. The client facade defaults this to true, the
	// proxy adapter leaves it false to keep latency predictable.
	RetryOnTimeout bool
}

// Response is a fully buffered backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// RetryAfter returns the Retry-After header interpreted as whole seconds.
func (r *Response) RetryAfter() (time.Duration, bool) {
	if r == nil {
		return 0, false
	}
	v := r.Header.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

// Decode unmarshals the buffered body into out.
func (r *Response) Decode(out any) error {
	return json.Unmarshal(r.Body, out)
}
