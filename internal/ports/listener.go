package ports

// Listener is a subscription handle passed to On/AddEventListener.
// Handles are compared by identity: the same *Listener must be passed to
// the matching remove call.
type Listener struct {
	fn func(payload any)
}

// NewListener wraps fn in a subscription handle.
func NewListener(fn func(payload any)) *Listener {
	return &Listener{fn: fn}
}

// Call invokes the listener. A nil listener is a no-op.
func (l *Listener) Call(payload any) {
	if l == nil || l.fn == nil {
		return
	}
	l.fn(payload)
}
