package walletscope

import "context"

// Plugin extends a Client with optional behavior.
// Plugins are initialized in registration order after the client is up and
// shut down in reverse order when it closes.
type Plugin interface {
	// Name returns the plugin identifier used in logs.
	Name() string

	// Initialize starts the plugin.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin and releases its resources.
	Shutdown(ctx context.Context) error
}

// Reconfigurer applies new observer flags to a running client.
type Reconfigurer interface {
	Tracking() Tracking
	Reconfigure(t Tracking) error
}

// PluginConfig is handed to every plugin on Initialize.
type PluginConfig struct {
	APIKey string
	URL    string
	Logger Logger

	// Client is the running client.
	Client Reconfigurer
}
