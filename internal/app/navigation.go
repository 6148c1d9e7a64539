package app

import (
	"reflect"

	"github.com/bft-labs/walletscope/internal/domain"
	"github.com/bft-labs/walletscope/internal/ports"
)

// trackFirstPageVisit records the landing page and emits a first-party
// PAGE envelope for it.
func (e *Engine) trackFirstPageVisit() {
	href := e.window.Href()
	e.state.SwapPageURL(href)
	if err := e.session.Set(CurrentURLKey, href); err != nil {
		e.logger.Warn("unable to store current url", ports.Err(err))
	}
	_ = e.pipeline.Emit(domain.EventPage, domain.Attributes{"referrer": e.window.Referrer()}, true)
}

// historyHook is one decorated history function: the function found at
// install time and the wrapper put in its place.
type historyHook struct {
	orig ports.HistoryFunc
	ours ports.HistoryFunc
}

func (e *Engine) decorate(hook *historyHook, get func() ports.HistoryFunc, set func(ports.HistoryFunc)) {
	if hook.ours != nil {
		return
	}
	orig := get()
	hook.orig = orig
	hook.ours = func(state any, title, url string) {
		orig(state, title, url)
		if e.navigationActive() {
			e.window.DispatchEvent(ports.EventLocationChange, nil)
		}
	}
	set(hook.ours)
}

// undecorate puts the original function back when the wrapper is still the
// current one. A wrapper the host stacked on top of ours is kept, and our
// decorator stays in the chain, inert until navigation is installed again.
func (e *Engine) undecorate(hook *historyHook, get func() ports.HistoryFunc, set func(ports.HistoryFunc)) {
	if hook.ours == nil {
		return
	}
	if !sameFunc(get(), hook.ours) {
		e.logger.Debug("history function wrapped after install, keeping decorator")
		return
	}
	set(hook.orig)
	hook.orig, hook.ours = nil, nil
}

// sameFunc reports whether a and b share an entry point.
func sameFunc(a, b ports.HistoryFunc) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// installNavigation decorates history push/replace so each mutation is
// followed by exactly one locationchange notification, and turns popstate
// into locationchange.
func (e *Engine) installNavigation() {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()

	if e.navigation {
		return
	}

	h := e.window.History()
	e.decorate(&e.push, h.PushStateFunc, h.SetPushStateFunc)
	e.decorate(&e.replace, h.ReplaceStateFunc, h.SetReplaceStateFunc)

	e.registerWindowListener(ports.EventPopState, func(any) {
		e.window.DispatchEvent(ports.EventLocationChange, nil)
	})
	e.registerWindowListener(ports.EventLocationChange, e.guard("locationchange", func(any) {
		e.onLocationChange()
	}))

	e.navigation = true
}

// uninstallNavigation removes the listeners and restores the history
// functions that are still ours.
func (e *Engine) uninstallNavigation() {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()

	if !e.navigation {
		return
	}
	e.navigation = false

	h := e.window.History()
	e.undecorate(&e.push, h.PushStateFunc, h.SetPushStateFunc)
	e.undecorate(&e.replace, h.ReplaceStateFunc, h.SetReplaceStateFunc)

	e.removeWindowListener(ports.EventPopState)
	e.removeWindowListener(ports.EventLocationChange)
}

func (e *Engine) navigationActive() bool {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	return e.navigation
}

// onLocationChange emits PAGE when the location differs from the last
// recorded page.
func (e *Engine) onLocationChange() {
	href := e.window.Href()
	if !e.state.SwapPageURL(href) {
		return
	}
	if err := e.session.Set(CurrentURLKey, href); err != nil {
		e.logger.Warn("unable to store current url", ports.Err(err))
	}
	_ = e.Page()
}

func (e *Engine) registerWindowListener(name string, fn func(any)) {
	l := ports.NewListener(fn)
	if prev := e.state.SetListener(name, l); prev != nil {
		e.window.RemoveEventListener(name, prev)
	}
	e.window.AddEventListener(name, l)
}

func (e *Engine) removeWindowListener(name string) {
	if l := e.state.RemoveListener(name); l != nil {
		e.window.RemoveEventListener(name, l)
	}
}
