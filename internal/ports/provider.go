package ports

import (
	"context"
	"fmt"
)

// Provider notification names.
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
)

// CodeUserRejected is the EIP-1193 error code for a request the user declined.
const CodeUserRejected = 4001

// RequestArguments is a single RPC-style call made through a provider.
type RequestArguments struct {
	Method string `json:"method" yaml:"method"`
	Params []any  `json:"params,omitempty" yaml:"params,omitempty"`
}

// RequestFunc serves provider requests.
type RequestFunc func(ctx context.Context, args RequestArguments) (any, error)

// Provider is an injected wallet provider.
//
// Request dispatches through the function returned by RequestFunc, so an
// observer can install a pass-through proxy with SetRequestFunc and later
// restore the original.
type Provider interface {
	// Request performs an RPC-style call.
	Request(ctx context.Context, args RequestArguments) (any, error)

	// On subscribes l to the named notification.
	On(event string, l *Listener)

	// RemoveListener unsubscribes l from the named notification.
	RemoveListener(event string, l *Listener)

	// RequestFunc returns the function currently serving Request.
	RequestFunc() RequestFunc

	// SetRequestFunc replaces the function serving Request.
	// Providers whose dispatch cannot be replaced return domain.ErrReadOnlyRequest.
	SetRequestFunc(fn RequestFunc) error
}

// RPCError is an error returned by a provider request.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}
