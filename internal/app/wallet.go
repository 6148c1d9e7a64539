package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/bft-labs/walletscope/internal/domain"
	"github.com/bft-labs/walletscope/internal/ports"
)

// Provider methods the engine issues or observes.
const (
	MethodAccounts            = "eth_accounts"
	MethodRequestAccounts     = "eth_requestAccounts"
	MethodChainID             = "eth_chainId"
	MethodGetTransactionCount = "eth_getTransactionCount"
	MethodSendTransaction     = "eth_sendTransaction"
)

// onAccountsChanged drives the account state machine: a non-empty list
// connects its first account, an empty list disconnects.
func (e *Engine) onAccountsChanged(payload any) {
	accounts := toAccounts(payload)
	if len(accounts) > 0 {
		e.handleAccountConnected(e.ctx, accounts[0])
		return
	}
	e.handleAccountDisconnected()
}

// handleAccountConnected resolves the chain id from the provider at the
// moment of connection and records the wallet.
func (e *Engine) handleAccountConnected(ctx context.Context, account string) {
	chainID, err := e.currentChainID(ctx)
	if err != nil {
		e.report(domain.LogLevelError, "accountsChanged: unable to get chain id. CONNECT not reported", err)
		return
	}

	if err := e.Wallet(WalletInput{Account: account, ChainID: chainID}); err != nil && !errors.Is(err, domain.ErrClosed) {
		e.report(domain.LogLevelError, "accountsChanged: CONNECT not reported", err)
	}
}

// handleAccountDisconnected emits DISCONNECT with the last known wallet and
// clears it. Nothing is emitted when no account was tracked.
func (e *Engine) handleAccountDisconnected() {
	account, chainID := e.state.ClearWallet()
	if account == "" {
		return
	}

	attrs := domain.Attributes{"account": account}
	if chainID != "" {
		attrs["chainId"] = chainID
	}
	_ = e.emit(domain.EventDisconnect, attrs)
}

// onChainChanged records a chain change reported by the provider. With no
// tracked account it asks the provider for one first.
func (e *Engine) onChainChanged(payload any) {
	ctx := e.ctx
	provider := e.Provider()
	if provider == nil {
		e.report(domain.LogLevelError, "chainChanged: provider not found. CHAIN_CHANGED not reported", nil)
		return
	}

	account := e.state.Account()
	if account == "" {
		res, err := provider.Request(ctx, ports.RequestArguments{Method: MethodRequestAccounts})
		if err != nil {
			if isUserRejection(err) {
				return
			}
			e.report(domain.LogLevelError, "chainChanged: unable to get account. eth_requestAccounts threw an error", err)
			return
		}

		accounts := toAccounts(res)
		if len(accounts) == 0 {
			e.report(domain.LogLevelError, "chainChanged: unable to get account. eth_requestAccounts returned empty", nil)
			return
		}
		account = accounts[0]
		e.state.SetAccount(account)
	}

	chainID, err := chainIDString(payload)
	if err != nil {
		e.report(domain.LogLevelError, "chainChanged: CHAIN_CHANGED not reported", err)
		return
	}

	if err := e.Chain(ChainInput{ChainID: chainID, Account: account}); err != nil && !errors.Is(err, domain.ErrClosed) {
		e.report(domain.LogLevelError, "chainChanged: CHAIN_CHANGED not reported", err)
	}
}

// reportCurrentWallet connects the account the provider already exposes.
func (e *Engine) reportCurrentWallet(ctx context.Context) {
	provider := e.Provider()
	if provider == nil {
		e.logger.Warn("provider not found, current wallet not reported")
		return
	}

	res, err := provider.Request(ctx, ports.RequestArguments{Method: MethodAccounts})
	if err != nil {
		e.report(domain.LogLevelError, "reportCurrentWallet: eth_accounts failed", err)
		return
	}

	accounts := toAccounts(res)
	if len(accounts) > 0 {
		e.handleAccountConnected(ctx, accounts[0])
	}
}

// currentChainID asks the bound provider for its chain id in decimal form.
func (e *Engine) currentChainID(ctx context.Context) (string, error) {
	provider := e.Provider()
	if provider == nil {
		return "", fmt.Errorf("getCurrentChainId: %w", domain.ErrProviderUnavailable)
	}

	res, err := provider.Request(ctx, ports.RequestArguments{Method: MethodChainID})
	if err != nil {
		return "", fmt.Errorf("getCurrentChainId: %w", err)
	}
	if res == nil {
		return "", fmt.Errorf("getCurrentChainId: %w: chainIdHex is: %s", domain.ErrParse, domain.RawValue(res))
	}

	chainID, err := domain.QuantityToDecimal(res)
	if err != nil {
		return "", fmt.Errorf("getCurrentChainId: %w: %v", domain.ErrParse, err)
	}
	return chainID, nil
}

func isUserRejection(err error) bool {
	var rpcErr *ports.RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == ports.CodeUserRejected
}

// toAccounts reads an account list as delivered by providers: either
// []string or a decoded JSON array.
func toAccounts(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// chainIDString accepts a chainChanged payload as a hex/decimal string or
// a number.
func chainIDString(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return domain.QuantityToDecimal(v)
}
