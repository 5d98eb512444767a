package errs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// ClassifyTransport maps a failed transport attempt to the taxonomy.
//
// Priority order:
//  1. already-classified errors pass through unchanged (idempotent)
//  2. caller-initiated cancellation is re-surfaced as context.Canceled
//  3. deadline expiry becomes KindTimeout with the configured budget
//  4. connection-refused / DNS / unreachable failures become KindNetwork
//  5. everything else becomes KindUnknown
//
// The function is pure; logging is the caller's responsibility.
func ClassifyTransport(err error, budget time.Duration) error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}

	if isTimeout(err) {
		ms := budget.Milliseconds()
		return Timeout(fmt.Sprintf("request exceeded the %dms budget", ms), ms, err)
	}

	if isNetwork(err) {
		return Network("backend unreachable", err.Error(), err)
	}

	return Unknown(err.Error(), err)
}

// ClassifyResponse maps a completed non-2xx response to a KindHTTP error.
// Message resolution: structured {error,message} body, then raw body text,
// then the status line.
func ClassifyResponse(status int, body []byte) *Error {
	msg := messageFromBody(body)
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = fmt.Sprintf("%d %s", status, http.StatusText(status))
	}
	return HTTP(status, msg, strings.TrimSpace(string(body)))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// networkSignatures covers failures that surface as plain strings from
// intermediate layers rather than typed net errors.
var networkSignatures = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"broken pipe",
	"EOF",
}

func isNetwork(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	s := err.Error()
	for _, sig := range networkSignatures {
		if strings.Contains(s, sig) {
			return true
		}
	}
	return false
}
