package app

import (
	"github.com/bft-labs/walletscope/internal/domain"
)

// WalletInput describes a wallet connection.
type WalletInput struct {
	Account string
	ChainID string
}

// DisconnectionInput describes a wallet disconnection. Account defaults to
// the tracked account.
type DisconnectionInput struct {
	Account string
}

// ChainInput describes a chain change. Account defaults to the tracked
// account.
type ChainInput struct {
	ChainID string
	Account string
}

// TransactionInput describes a submitted transaction. ChainID and Account
// default to the tracked values.
type TransactionInput struct {
	TransactionHash string
	ChainID         string
	Account         string
	Metadata        map[string]any
}

// SignatureInput describes a signed message. Account defaults to the
// tracked account.
type SignatureInput struct {
	Message       string
	Account       string
	SignatureHash string
}

const (
	reasonNotRecorded  = "cannot be empty and was not previously recorded"
	reasonInvalidChain = "chainId must be a valid hex or decimal number"
)

// Event emits a custom event.
func (e *Engine) Event(name string, attrs domain.Attributes) error {
	if e.isClosed() {
		return domain.ErrClosed
	}
	if name == "" {
		return domain.NewValidationError("event", "event name cannot be empty")
	}
	if attrs == nil {
		attrs = domain.Attributes{}
	}
	return e.emit(domain.EventCustom, domain.Attributes{
		"name":       name,
		"attributes": attrs,
	})
}

// Page emits a page view for the current location.
func (e *Engine) Page() error {
	if e.isClosed() {
		return domain.ErrClosed
	}
	return e.emit(domain.EventPage, domain.Attributes{"referrer": e.window.Referrer()})
}

// Wallet records a connected wallet and emits CONNECT.
func (e *Engine) Wallet(in WalletInput) error {
	if e.isClosed() {
		return domain.ErrClosed
	}
	if in.ChainID == "" {
		return domain.NewValidationError("wallet", "chainId cannot be empty")
	}
	if in.Account == "" {
		return domain.NewValidationError("wallet", "account cannot be empty")
	}
	chainID, err := domain.NormalizeChainID(in.ChainID)
	if err != nil {
		return domain.NewValidationError("wallet", reasonInvalidChain)
	}

	e.state.SetWallet(in.Account, chainID)
	return e.emit(domain.EventConnect, domain.Attributes{
		"chainId": chainID,
		"account": in.Account,
	})
}

// Disconnection forgets the tracked wallet and emits DISCONNECT when an
// account is known.
func (e *Engine) Disconnection(in DisconnectionInput) error {
	if e.isClosed() {
		return domain.ErrClosed
	}

	tracked, _ := e.state.ClearWallet()
	account := in.Account
	if account == "" {
		account = tracked
	}
	if account == "" {
		return nil
	}
	return e.emit(domain.EventDisconnect, domain.Attributes{"account": account})
}

// Chain records a chain change and emits CHAIN_CHANGED.
func (e *Engine) Chain(in ChainInput) error {
	if e.isClosed() {
		return domain.ErrClosed
	}
	if in.ChainID == "" || in.ChainID == "0" {
		return domain.NewValidationError("chain", "chainId cannot be empty or 0")
	}

	account := in.Account
	if account == "" {
		account = e.state.Account()
	}
	if account == "" {
		return domain.NewValidationError("chain", "account "+reasonNotRecorded)
	}

	chainID, err := domain.NormalizeChainID(in.ChainID)
	if err != nil {
		return domain.NewValidationError("chain", reasonInvalidChain)
	}
	if chainID == "0" {
		return domain.NewValidationError("chain", "chainId cannot be empty or 0")
	}

	e.state.SetChainID(chainID)
	return e.emit(domain.EventChainChanged, domain.Attributes{
		"chainId": chainID,
		"account": account,
	})
}

// Transaction emits TRANSACTION_SUBMITTED.
func (e *Engine) Transaction(in TransactionInput) error {
	if e.isClosed() {
		return domain.ErrClosed
	}
	if in.TransactionHash == "" {
		return domain.NewValidationError("transaction", "transactionHash cannot be empty")
	}

	chainID := in.ChainID
	if chainID == "" {
		chainID = e.state.ChainID()
	}
	if chainID == "" {
		return domain.NewValidationError("transaction", "chainId "+reasonNotRecorded)
	}

	account := in.Account
	if account == "" {
		account = e.state.Account()
	}
	if account == "" {
		return domain.NewValidationError("transaction", "account "+reasonNotRecorded)
	}

	normalized, err := domain.NormalizeChainID(chainID)
	if err != nil {
		return domain.NewValidationError("transaction", reasonInvalidChain)
	}

	attrs := domain.Attributes{
		"chainId":         normalized,
		"account":         account,
		"transactionHash": in.TransactionHash,
	}
	if in.Metadata != nil {
		attrs["metadata"] = in.Metadata
	}
	return e.emit(domain.EventTransactionSubmitted, attrs)
}

// Signature emits SIGNING_TRIGGERED.
func (e *Engine) Signature(in SignatureInput) error {
	if e.isClosed() {
		return domain.ErrClosed
	}
	if in.Message == "" {
		return domain.NewValidationError("signature", "message cannot be empty")
	}

	account := in.Account
	if account == "" {
		account = e.state.Account()
	}
	if account == "" {
		return domain.NewValidationError("signature", "account "+reasonNotRecorded)
	}

	attrs := domain.Attributes{
		"account": account,
		"message": in.Message,
	}
	if in.SignatureHash != "" {
		attrs["signatureHash"] = in.SignatureHash
	}
	return e.emit(domain.EventSigningTriggered, attrs)
}
