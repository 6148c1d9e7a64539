package app

import (
	"github.com/bft-labs/walletscope/internal/domain"
	"github.com/bft-labs/walletscope/internal/ports"
)

func (e *Engine) installClicks() {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()

	if e.clicks {
		return
	}
	e.registerWindowListener(ports.EventClick, e.guard("trackClicks", e.onClick))
	e.clicks = true
}

func (e *Engine) uninstallClicks() {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()

	if !e.clicks {
		return
	}
	e.removeWindowListener(ports.EventClick)
	e.clicks = false
}

func (e *Engine) onClick(target any) {
	el, ok := target.(ports.Element)
	if !ok || el == nil {
		e.report(domain.LogLevelWarning, "trackClicks: event target is not an element", nil)
		return
	}
	_ = e.emit(domain.EventClick, domain.Attributes{
		"elementId": el.Describe(),
		"content":   el.TextContent(),
	})
}
