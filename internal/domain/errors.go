package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the walletscope domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("walletscope: validation failed")

	// ErrNetwork is returned when a request could not reach the collector.
	ErrNetwork = errors.New("walletscope: network error")

	// ErrRequest is matched by every RequestError.
	ErrRequest = errors.New("walletscope: request failed")

	// ErrParse is returned when a collector response has an unexpected shape.
	ErrParse = errors.New("walletscope: unexpected response body")

	// ErrProviderUnavailable is returned when an operation needs a wallet
	// provider and none is bound.
	ErrProviderUnavailable = errors.New("walletscope: provider not set")

	// ErrReadOnlyRequest is returned by providers whose request dispatch
	// cannot be replaced.
	ErrReadOnlyRequest = errors.New("walletscope: provider request is read-only")

	// ErrClosed is returned by operations on a closed client.
	ErrClosed = errors.New("walletscope: client closed")

	// ErrDisconnected is returned when an event is emitted while the
	// channel has no live connection. The event is dropped.
	ErrDisconnected = errors.New("walletscope: channel not connected")
)

// ValidationError reports a caller-supplied field that is empty or malformed.
type ValidationError struct {
	// Op is the public operation that rejected the input (e.g. "wallet").
	Op string

	// Reason is the human-readable rejection.
	Reason string
}

// NewValidationError creates a ValidationError for op.
func NewValidationError(op, reason string) *ValidationError {
	return &ValidationError{Op: op, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("walletscope: %s: %s", e.Op, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RequestError reports a one-shot request answered with a non-success status.
type RequestError struct {
	URL        string
	StatusCode int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("walletscope: cannot fetch %s with code %d", e.URL, e.StatusCode)
}

// Is reports whether target is ErrRequest.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequest
}
