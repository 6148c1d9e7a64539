package app

import (
	"context"
	"fmt"

	"github.com/bft-labs/walletscope/internal/domain"
	"github.com/bft-labs/walletscope/internal/ports"
)

// Enrichment outcomes recorded in metrics.
const (
	enrichmentOK     = "ok"
	enrichmentFailed = "error"
)

// signingOrder says where the account sits in a signing method's params.
type signingOrder int

const (
	accountFirst signingOrder = iota
	messageFirst
)

var signingMethods = map[string]signingOrder{
	"personal_sign":        messageFirst,
	"eth_sign":             accountFirst,
	"signTypedData_v4":     accountFirst,
	"eth_signTypedData":    accountFirst,
	"eth_signTypedData_v3": accountFirst,
	"eth_signTypedData_v4": accountFirst,
}

var providerEvents = []string{ports.EventAccountsChanged, ports.EventChainChanged}

// Provider returns the currently bound provider, or nil.
func (e *Engine) Provider() ports.Provider {
	e.bindMu.Lock()
	defer e.bindMu.Unlock()
	return e.provider
}

// TrackProvider binds the engine to p. The previous provider gets its
// original request function back and loses the engine's listeners before
// p is wrapped and subscribed per the active tracking flags. A nil p
// leaves the engine with no provider. Calling it again with the same
// provider is safe.
func (e *Engine) TrackProvider(p ports.Provider) {
	e.bindMu.Lock()
	defer e.bindMu.Unlock()

	e.detachLocked()
	e.provider = p
	if p == nil || e.isClosed() {
		return
	}
	e.attachLocked(p)
}

func (e *Engine) detachLocked() {
	prev := e.provider
	if prev == nil {
		return
	}

	if e.original != nil {
		if err := prev.SetRequestFunc(e.original); err != nil {
			e.logger.Warn("unable to restore provider request", ports.Err(err))
		}
		e.original = nil
	}

	for _, name := range providerEvents {
		if l := e.state.RemoveListener(name); l != nil {
			prev.RemoveListener(name, l)
		}
	}
}

func (e *Engine) attachLocked(p ports.Provider) {
	t := e.Tracking()

	if t.WalletConnections {
		e.registerProviderListener(p, ports.EventAccountsChanged, e.guard("accountsChanged", e.onAccountsChanged))
	}
	if t.ChainChanges {
		e.registerProviderListener(p, ports.EventChainChanged, e.guard("chainChanged", e.onChainChanged))
	}

	if !t.Transactions && !t.Signing {
		return
	}

	original := p.RequestFunc()
	if err := p.SetRequestFunc(e.proxy(p, original)); err != nil {
		e.report(domain.LogLevelWarning, "trackProvider: request is not replaceable. transactions and signing not tracked", err)
		return
	}
	e.original = original
}

func (e *Engine) registerProviderListener(p ports.Provider, name string, fn func(any)) {
	l := ports.NewListener(fn)
	if prev := e.state.SetListener(name, l); prev != nil {
		p.RemoveListener(name, prev)
	}
	p.On(name, l)
}

// proxy returns a request function that observes the call and then
// delegates to original with the caller's arguments, returning its result
// untouched.
func (e *Engine) proxy(p ports.Provider, original ports.RequestFunc) ports.RequestFunc {
	return func(ctx context.Context, args ports.RequestArguments) (any, error) {
		e.observeRequest(p, args)
		return original(ctx, args)
	}
}

func (e *Engine) observeRequest(p ports.Provider, args ports.RequestArguments) {
	defer e.recoverPassive("observeRequest")

	t := e.Tracking()

	if args.Method == MethodSendTransaction {
		if !t.Transactions {
			return
		}
		for _, param := range args.Params {
			tx, ok := param.(map[string]any)
			if !ok {
				continue
			}
			tx = domain.Attributes(tx).Clone()
			e.spawn(func() { e.enrichTransaction(p, tx) })
		}
		return
	}

	order, ok := signingMethods[args.Method]
	if !ok || !t.Signing {
		return
	}

	first, second := param(args.Params, 0), param(args.Params, 1)
	account, message := first, second
	if order == messageFirst {
		account, message = second, first
	}
	_ = e.emit(domain.EventSigningTriggered, domain.Attributes{
		"account": account,
		"message": message,
	})
}

// enrichTransaction resolves the sender's nonce, then the chain id, and
// emits TRANSACTION_TRIGGERED. Failures only reach diagnostics.
func (e *Engine) enrichTransaction(p ports.Provider, tx map[string]any) {
	defer e.recoverPassive("trackTransactions")

	ctx := e.ctx
	count, err := p.Request(ctx, ports.RequestArguments{
		Method: MethodGetTransactionCount,
		Params: []any{tx["from"], "latest"},
	})
	if err != nil {
		e.enrichmentFailed("trackTransactions: unable to get transaction count", err)
		return
	}
	nonce, err := domain.QuantityToDecimal(count)
	if err != nil {
		e.enrichmentFailed("trackTransactions: invalid transaction count", err)
		return
	}

	chainID := e.state.ChainID()
	if chainID == "" {
		raw, err := p.Request(ctx, ports.RequestArguments{Method: MethodChainID})
		if err != nil {
			e.enrichmentFailed("trackTransactions: unable to get chain id", err)
			return
		}
		chainID, err = domain.QuantityToDecimal(raw)
		if err != nil {
			e.enrichmentFailed(fmt.Sprintf("trackTransactions: Invalid chainId %q", domain.RawValue(raw)), nil)
			return
		}
	}

	attrs := domain.Attributes(tx).Clone()
	attrs["nonce"] = nonce
	attrs["chainId"] = chainID
	_ = e.emit(domain.EventTransactionTriggered, attrs)
	e.metrics.EnrichmentFinished(enrichmentOK)
}

func (e *Engine) enrichmentFailed(msg string, err error) {
	e.metrics.EnrichmentFinished(enrichmentFailed)
	e.reporter.Report(e.ctx, domain.LogLevelError, msg, err)
}

func param(params []any, i int) any {
	if i < len(params) {
		return params[i]
	}
	return nil
}
