package walletscope

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Option configures optional behavior of a Client.
type Option func(*options)

// options holds the optional collaborators of a Client.
type options struct {
	httpClient     HTTPClient
	logger         Logger
	storage        Storage
	sessionStorage Storage
	stateDir       string
	window         Window
	provider       Provider
	dialer         Dialer
	poster         Poster
	registerer     prometheus.Registerer
	plugins        []Plugin
}

// WithHTTPClient sets a custom HTTP client for collector requests.
// If not provided, a client with Config.HTTPTimeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorage sets the durable storage holding the cached identity.
func WithStorage(s Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithStateDir keeps durable storage in a JSON file under dir.
// Ignored when WithStorage is also given.
func WithStateDir(dir string) Option {
	return func(o *options) {
		o.stateDir = dir
	}
}

// WithSessionStorage sets the storage holding the session id and the last
// recorded page. Defaults to an in-memory store.
func WithSessionStorage(s Storage) Option {
	return func(o *options) {
		o.sessionStorage = s
	}
}

// WithWindow sets the host page. Required.
func WithWindow(w Window) Option {
	return func(o *options) {
		o.window = w
	}
}

// WithProvider binds a wallet provider at startup.
func WithProvider(p Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithDialer replaces the WebSocket channel dialer.
func WithDialer(d Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithPoster replaces the HTTP poster used for identify and diagnostics.
func WithPoster(p Poster) Option {
	return func(o *options) {
		o.poster = p
	}
}

// WithMetricsRegisterer registers the client's Prometheus collectors with r.
func WithMetricsRegisterer(r prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = r
	}
}

// WithPlugin registers a plugin to be initialized when the client starts.
// Plugins are initialized in registration order and shut down in reverse
// order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
