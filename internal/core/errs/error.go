// Package errs defines the closed error taxonomy for backend calls.
//
// Every failure that leaves the request layer is one of the kinds below.
// Raw transport errors never cross this boundary; Classify normalizes them
// first. Caller-initiated cancellation is the single exception: it is
// re-surfaced as context.Canceled so callers can match it with errors.Is.
package errs

import (
	"fmt"
)

// Kind identifies the failure category.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindTimeout
	KindHTTP
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindHTTP:
		return "http"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is the canonical classified failure.
//
// StatusCode is set for KindHTTP, Field for KindValidation and BudgetMs for
// KindTimeout; the other fields are zero outside their kind.
type Error struct {
	Kind       Kind
	Message    string
	Detail     string // technical detail, not shown to end users
	StatusCode int
	Field      string
	BudgetMs   int64

	cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
	case KindTimeout:
		return fmt.Sprintf("timeout after %dms: %s", e.BudgetMs, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Equal reports structural equality over the exported fields.
// The cause chain is intentionally ignored.
func (e *Error) Equal(o *Error) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.Kind == o.Kind &&
		e.Message == o.Message &&
		e.Detail == o.Detail &&
		e.StatusCode == o.StatusCode &&
		e.Field == o.Field &&
		e.BudgetMs == o.BudgetMs
}

// Network reports a connectivity failure (refused, DNS, unreachable).
func Network(message, detail string, cause error) *Error {
	return &Error{Kind: KindNetwork, Message: message, Detail: detail, cause: cause}
}

// Timeout reports that the per-attempt budget was exhausted.
func Timeout(message string, budgetMs int64, cause error) *Error {
	return &Error{Kind: KindTimeout, Message: message, BudgetMs: budgetMs, cause: cause}
}

// HTTP reports a completed response with a non-success status.
func HTTP(status int, message, detail string) *Error {
	return &Error{Kind: KindHTTP, StatusCode: status, Message: message, Detail: detail}
}

// Validation reports a malformed request on the caller's side.
func Validation(message, field string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

// Unknown wraps a failure no other rule matched. Raw keeps the stringified
// original for diagnostics.
func Unknown(raw string, cause error) *Error {
	return &Error{Kind: KindUnknown, Message: "unexpected error", Detail: raw, cause: cause}
}
