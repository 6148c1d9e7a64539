package host

import (
	"sync"

	"github.com/bft-labs/walletscope/internal/ports"
)

type entry struct {
	state any
	url   string
}

// History implements ports.History for a Window.
type History struct {
	window *Window

	mu        sync.Mutex
	entries   []entry
	index     int
	pushFn    ports.HistoryFunc
	replaceFn ports.HistoryFunc
}

func newHistory(w *Window, href string) *History {
	h := &History{
		window:  w,
		entries: []entry{{url: href}},
	}
	h.pushFn = h.push
	h.replaceFn = h.replace
	return h
}

func (h *History) PushState(state any, title, url string) {
	h.PushStateFunc()(state, title, url)
}

func (h *History) ReplaceState(state any, title, url string) {
	h.ReplaceStateFunc()(state, title, url)
}

func (h *History) PushStateFunc() ports.HistoryFunc {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pushFn
}

func (h *History) SetPushStateFunc(fn ports.HistoryFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pushFn = fn
}

func (h *History) ReplaceStateFunc() ports.HistoryFunc {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.replaceFn
}

func (h *History) SetReplaceStateFunc(fn ports.HistoryFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.replaceFn = fn
}

// Len returns the number of history entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Back moves one entry back and dispatches popstate. It reports whether
// the location moved.
func (h *History) Back() bool {
	return h.Go(-1)
}

// Forward moves one entry forward and dispatches popstate.
func (h *History) Forward() bool {
	return h.Go(1)
}

// Go moves delta entries and dispatches popstate with the entry's state.
func (h *History) Go(delta int) bool {
	h.mu.Lock()
	target := h.index + delta
	if delta == 0 || target < 0 || target >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = target
	e := h.entries[target]
	h.mu.Unlock()

	h.window.setHref(e.url)
	h.window.DispatchEvent(ports.EventPopState, e.state)
	return true
}

func (h *History) push(state any, _ string, url string) {
	resolved := h.window.resolve(url)

	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], entry{state: state, url: resolved})
	h.index = len(h.entries) - 1
	h.mu.Unlock()

	h.window.setHref(resolved)
}

func (h *History) replace(state any, _ string, url string) {
	resolved := h.window.resolve(url)

	h.mu.Lock()
	h.entries[h.index] = entry{state: state, url: resolved}
	h.mu.Unlock()

	h.window.setHref(resolved)
}
