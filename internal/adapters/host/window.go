package host

import (
	"net/url"
	"sync"

	"github.com/bft-labs/walletscope/internal/ports"
)

// Default device metrics reported by a new Window.
var (
	DefaultScreen   = ports.Dimensions{Width: 1920, Height: 1080}
	DefaultViewport = ports.Dimensions{Width: 1280, Height: 720}
)

// Window implements ports.Window in memory.
type Window struct {
	mu        sync.RWMutex
	href      string
	referrer  string
	screen    ports.Dimensions
	viewport  ports.Dimensions
	listeners map[string][]*ports.Listener

	history *History
}

// WindowOption configures a Window.
type WindowOption func(*Window)

// WithReferrer sets the document referrer.
func WithReferrer(referrer string) WindowOption {
	return func(w *Window) { w.referrer = referrer }
}

// WithScreen sets the screen size.
func WithScreen(d ports.Dimensions) WindowOption {
	return func(w *Window) { w.screen = d }
}

// WithViewport sets the viewport size.
func WithViewport(d ports.Dimensions) WindowOption {
	return func(w *Window) { w.viewport = d }
}

// NewWindow creates a window whose history starts at href.
func NewWindow(href string, opts ...WindowOption) *Window {
	w := &Window{
		href:      href,
		screen:    DefaultScreen,
		viewport:  DefaultViewport,
		listeners: map[string][]*ports.Listener{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.history = newHistory(w, href)
	return w
}

func (w *Window) Href() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.href
}

func (w *Window) Referrer() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.referrer
}

func (w *Window) Screen() ports.Dimensions {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.screen
}

func (w *Window) Viewport() ports.Dimensions {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.viewport
}

func (w *Window) History() ports.History {
	return w.history
}

// Navigator returns the concrete history for back/forward navigation.
func (w *Window) Navigator() *History {
	return w.history
}

func (w *Window) AddEventListener(event string, l *ports.Listener) {
	if l == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, existing := range w.listeners[event] {
		if existing == l {
			return
		}
	}
	w.listeners[event] = append(w.listeners[event], l)
}

func (w *Window) RemoveEventListener(event string, l *ports.Listener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners[event] = without(w.listeners[event], l)
}

// DispatchEvent invokes the listeners for event on the calling goroutine,
// in registration order.
func (w *Window) DispatchEvent(event string, payload any) {
	w.mu.RLock()
	ls := append([]*ports.Listener(nil), w.listeners[event]...)
	w.mu.RUnlock()

	for _, l := range ls {
		l.Call(payload)
	}
}

// ListenerCount returns the number of listeners registered for event.
func (w *Window) ListenerCount(event string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.listeners[event])
}

// Click dispatches a click notification with target.
func (w *Window) Click(target any) {
	w.DispatchEvent(ports.EventClick, target)
}

// resolve returns ref resolved against the current location.
func (w *Window) resolve(ref string) string {
	w.mu.RLock()
	current := w.href
	w.mu.RUnlock()

	if ref == "" {
		return current
	}
	base, err := url.Parse(current)
	if err != nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

func (w *Window) setHref(href string) {
	w.mu.Lock()
	w.href = href
	w.mu.Unlock()
}

func without(ls []*ports.Listener, l *ports.Listener) []*ports.Listener {
	out := ls[:0]
	for _, existing := range ls {
		if existing != l {
			out = append(out, existing)
		}
	}
	return out
}

// Element implements ports.Element.
type Element struct {
	Path string
	Text string
}

func (e Element) Describe() string    { return e.Path }
func (e Element) TextContent() string { return e.Text }
