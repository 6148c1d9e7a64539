package host

import (
	"context"
	"sync"

	"github.com/bft-labs/walletscope/internal/domain"
	"github.com/bft-labs/walletscope/internal/ports"
)

// CodeUnsupportedMethod is returned for methods with no scripted handler.
const CodeUnsupportedMethod = 4200

// Handler serves one provider method.
type Handler func(ctx context.Context, params []any) (any, error)

// Provider implements ports.Provider with scripted method handlers.
type Provider struct {
	mu        sync.RWMutex
	requestFn ports.RequestFunc
	readOnly  bool
	handlers  map[string]Handler
	listeners map[string][]*ports.Listener
	calls     []ports.RequestArguments
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithReadOnlyRequest makes SetRequestFunc fail, like a frozen provider object.
func WithReadOnlyRequest() ProviderOption {
	return func(p *Provider) { p.readOnly = true }
}

// NewProvider creates a provider with no handlers.
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		handlers:  map[string]Handler{},
		listeners: map[string][]*ports.Listener{},
	}
	p.requestFn = p.serve
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle scripts method.
func (p *Provider) Handle(method string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[method] = h
}

// HandleResult scripts method to always return result.
func (p *Provider) HandleResult(method string, result any) {
	p.Handle(method, func(context.Context, []any) (any, error) {
		return result, nil
	})
}

// HandleError scripts method to always fail with err.
func (p *Provider) HandleError(method string, err error) {
	p.Handle(method, func(context.Context, []any) (any, error) {
		return nil, err
	})
}

func (p *Provider) Request(ctx context.Context, args ports.RequestArguments) (any, error) {
	return p.RequestFunc()(ctx, args)
}

func (p *Provider) RequestFunc() ports.RequestFunc {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.requestFn
}

func (p *Provider) SetRequestFunc(fn ports.RequestFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readOnly {
		return domain.ErrReadOnlyRequest
	}
	p.requestFn = fn
	return nil
}

func (p *Provider) On(event string, l *ports.Listener) {
	if l == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners[event] = append(p.listeners[event], l)
}

func (p *Provider) RemoveListener(event string, l *ports.Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners[event] = without(p.listeners[event], l)
}

// Emit delivers a notification to the registered listeners on the
// calling goroutine.
func (p *Provider) Emit(event string, payload any) {
	p.mu.RLock()
	ls := append([]*ports.Listener(nil), p.listeners[event]...)
	p.mu.RUnlock()

	for _, l := range ls {
		l.Call(payload)
	}
}

// ListenerCount returns the number of listeners registered for event.
func (p *Provider) ListenerCount(event string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.listeners[event])
}

// Calls returns every request that reached the underlying handlers.
func (p *Provider) Calls() []ports.RequestArguments {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]ports.RequestArguments(nil), p.calls...)
}

// CallsTo returns the requests made for method.
func (p *Provider) CallsTo(method string) []ports.RequestArguments {
	var out []ports.RequestArguments
	for _, c := range p.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// serve is the original request dispatch.
func (p *Provider) serve(ctx context.Context, args ports.RequestArguments) (any, error) {
	p.mu.Lock()
	p.calls = append(p.calls, args)
	h, ok := p.handlers[args.Method]
	p.mu.Unlock()

	if !ok {
		return nil, &ports.RPCError{Code: CodeUnsupportedMethod, Message: "unsupported method " + args.Method}
	}
	return h(ctx, args.Params)
}
