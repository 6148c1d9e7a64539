package ws

import (
	"errors"
	"sync"

	"github.com/bft-labs/walletscope/internal/ports"
)

// ErrInvalidTransition is returned when a connection state change is not allowed.
var ErrInvalidTransition = errors.New("ws: invalid state transition")

// State represents the connection state of a channel.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateClosed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateReconnecting:
		return "Reconnecting"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// StateObserver is called after every accepted state change.
type StateObserver func(previous, current State, reason string)

// connState is the state machine of one channel.
type connState struct {
	mu       sync.RWMutex
	state    State
	logger   ports.Logger
	observer StateObserver
}

func newConnState(logger ports.Logger, observer StateObserver) *connState {
	return &connState{
		state:    StateIdle,
		logger:   logger,
		observer: observer,
	}
}

// State returns the current connection state.
func (c *connState) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// TransitionTo attempts to move to newState.
func (c *connState) TransitionTo(newState State, reason string) error {
	c.mu.Lock()
	oldState := c.state

	if !validTransition(oldState, newState) {
		c.mu.Unlock()
		return ErrInvalidTransition
	}

	c.state = newState
	c.mu.Unlock()

	if c.observer != nil {
		c.observer(oldState, newState, reason)
	}

	c.logger.Debug("channel state transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)

	return nil
}

func validTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateConnecting || to == StateClosed
	case StateConnecting:
		return to == StateConnected || to == StateReconnecting || to == StateClosed
	case StateConnected:
		return to == StateReconnecting || to == StateClosed
	case StateReconnecting:
		return to == StateConnected || to == StateClosed
	default:
		return false
	}
}
