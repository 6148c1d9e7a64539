package walletscope

import (
	"github.com/bft-labs/walletscope/internal/adapters/host"
	"github.com/bft-labs/walletscope/internal/app"
	"github.com/bft-labs/walletscope/internal/domain"
	"github.com/bft-labs/walletscope/internal/ports"
)

// Collaborator interfaces.
type (
	// Logger is the interface for structured logging.
	Logger = ports.Logger

	// LogField represents a structured log field.
	LogField = ports.Field

	// HTTPClient is the interface for making HTTP requests.
	// *http.Client satisfies this interface.
	HTTPClient = ports.HTTPClient

	// Storage is a string key/value store.
	Storage = ports.Storage

	// Window is the host page.
	Window = ports.Window

	// Element is a click target.
	Element = ports.Element

	// Provider is an injected wallet provider.
	Provider = ports.Provider

	// RequestArguments is a single call made through a Provider.
	RequestArguments = ports.RequestArguments

	// RequestFunc serves provider requests.
	RequestFunc = ports.RequestFunc

	// Listener is a provider or window notification callback.
	Listener = ports.Listener

	// RPCError is an error returned by a provider request.
	RPCError = ports.RPCError

	// Dialer opens collector channels.
	Dialer = ports.Dialer

	// Channel is a persistent connection to the collector.
	Channel = ports.Channel

	// ChannelQuery is the payload sent when a channel is opened.
	ChannelQuery = ports.ChannelQuery

	// Poster performs one-shot collector requests.
	Poster = ports.Poster
)

// Event data.
type (
	Event      = domain.Event
	Attributes = domain.Attributes
	Envelope   = domain.Envelope
	LogLevel   = domain.LogLevel
)

// Operation inputs.
type (
	WalletInput        = app.WalletInput
	DisconnectionInput = app.DisconnectionInput
	ChainInput         = app.ChainInput
	TransactionInput   = app.TransactionInput
	SignatureInput     = app.SignatureInput
)

// In-memory host used by tools and tests.
type (
	MemoryWindow   = host.Window
	MemoryProvider = host.Provider
	MemoryElement  = host.Element
)

// NewMemoryWindow creates an in-memory page at href.
func NewMemoryWindow(href string, opts ...host.WindowOption) *MemoryWindow {
	return host.NewWindow(href, opts...)
}

// NewMemoryProvider creates a scriptable in-memory wallet provider.
func NewMemoryProvider(opts ...host.ProviderOption) *MemoryProvider {
	return host.NewProvider(opts...)
}

// NewListener wraps fn in a Listener.
func NewListener(fn func(payload any)) *Listener {
	return ports.NewListener(fn)
}

// Errors returned by the client. Check with errors.Is.
var (
	ErrValidation          = domain.ErrValidation
	ErrNetwork             = domain.ErrNetwork
	ErrRequest             = domain.ErrRequest
	ErrParse               = domain.ErrParse
	ErrProviderUnavailable = domain.ErrProviderUnavailable
	ErrClosed              = domain.ErrClosed
)

// Diagnostic levels.
const (
	LogLevelError   = domain.LogLevelError
	LogLevelWarning = domain.LogLevelWarning
)
