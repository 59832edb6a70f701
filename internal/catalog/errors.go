package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Catalog errors. Callers distinguish them with errors.Is.
var (
	// ErrUnavailable indicates the catalog could not be reached.
	ErrUnavailable = errors.New("catalog unavailable")

	// ErrBadStatus indicates the catalog answered with a non-2xx status.
	// The concrete error is a *StatusError.
	ErrBadStatus = errors.New("catalog returned non-success status")

	// ErrMalformedPayload indicates the catalog response could not be decoded.
	ErrMalformedPayload = errors.New("catalog returned malformed payload")

	// ErrCircuitOpen indicates the circuit breaker is rejecting calls.
	ErrCircuitOpen = errors.New("catalog circuit open")
)

// StatusError carries the HTTP status of a failed catalog call.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrBadStatus.Error(), e.StatusCode)
}

// Unwrap lets errors.Is(err, ErrBadStatus) match.
func (e *StatusError) Unwrap() error {
	return ErrBadStatus
}

// outcome classifies err for metrics labels.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrBadStatus):
		return "bad_status"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	default:
		return "unavailable"
	}
}
