package backend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/refdatahub/refgate/internal/core/errs"
	"github.com/refdatahub/refgate/internal/observe/metrics"
)

// Retrier wraps the Executor in a bounded attempt loop.
//
// Eligibility: network failures, 5xx, 408 and 429 always retry; other 4xx
// and caller cancellation never do; per-attempt timeouts retry only when
// the request opts in. The backoff grows linearly with the attempt index,
// except a 429 whose Retry-After header (whole seconds) overrides it.
type Retrier struct {
	exec *Executor
	log  *slog.Logger

	// sleep is swapped out in tests to observe scheduled delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a retrier around exec. log may be nil.
func NewRetrier(exec *Executor, log *slog.Logger) *Retrier {
	if log == nil {
		log = slog.Default()
	}
	return &Retrier{
		exec:  exec,
		log:   log,
		sleep: sleepCtx,
	}
}

// Do runs up to 1+req.Retries attempts. When all attempts fail, the LAST
// classified error is returned, not the first.
func (r *Retrier) Do(ctx context.Context, req *Request) (*Response, error) {
	maxAttempts := req.Retries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	baseDelay := req.RetryDelay
	if baseDelay <= 0 {
		baseDelay = DefaultRetryDelay
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := r.exec.Do(ctx, req)
		if err == nil {
			if attempt > 0 {
				r.log.Debug("backend call succeeded after retry", "url", req.URL, "attempt", attempt+1)
			}
			return resp, nil
		}
		lastErr = err

		if attempt == maxAttempts-1 {
			break
		}
		delay, reason, retryable := nextDelay(err, resp, req, baseDelay, attempt)
		if !retryable {
			break
		}

		metrics.BackendRetriesTotal.WithLabelValues(reason).Inc()
		r.log.Debug("retrying backend call",
			"url", req.URL,
			"attempt", attempt+1,
			"max_attempts", maxAttempts,
			"reason", reason,
			"delay", delay,
			"error", err)

		if serr := r.sleep(ctx, delay); serr != nil {
			return nil, serr
		}
	}
	return nil, lastErr
}

// nextDelay applies the retry policy table to a classified failure.
func nextDelay(err error, resp *Response, req *Request, baseDelay time.Duration, attempt int) (time.Duration, string, bool) {
	if errors.Is(err, context.Canceled) {
		return 0, "", false
	}
	var ce *errs.Error
	if !errors.As(err, &ce) {
		return 0, "", false
	}

	linear := baseDelay * time.Duration(attempt+1)

	switch ce.Kind {
	case errs.KindNetwork:
		return linear, "network", true
	case errs.KindTimeout:
		if req.RetryOnTimeout {
			return linear, "timeout", true
		}
		return 0, "", false
	case errs.KindHTTP:
		switch {
		case ce.StatusCode == http.StatusTooManyRequests:
			if ra, ok := resp.RetryAfter(); ok {
				return ra, "rate_limited", true
			}
			return linear * 2, "rate_limited", true
		case ce.StatusCode == http.StatusRequestTimeout:
			return linear, "http_408", true
		case ce.StatusCode >= 500:
			return linear, "http_5xx", true
		}
		return 0, "", false
	default:
		return 0, "", false
	}
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
