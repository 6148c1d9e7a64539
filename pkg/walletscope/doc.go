// Package walletscope provides an embeddable analytics client for wallet
// enabled web pages.
//
// A Client attaches to a host page and an injected wallet provider, turns
// page navigation, wallet connections, chain switches, transaction and
// signing requests and clicks into events, and streams them to the
// collector over a single WebSocket channel.
//
// # Basic Usage
//
//	cfg := walletscope.DefaultConfig()
//	cfg.APIKey = "your-api-key"
//
//	client, err := walletscope.New(ctx, cfg,
//	    walletscope.WithWindow(window),
//	    walletscope.WithProvider(provider),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	_ = client.Event("checkout", walletscope.Attributes{"step": 2})
//
// # Configuration
//
// [DefaultConfig] enables every observer and identity caching. Individual
// observers can be toggled at runtime with [Client.Reconfigure]; the
// provider is re-bound with the new flags.
//
// # Dependency Injection
//
// The host page, storage, HTTP client and channel dialer are all
// injectable:
//
//	client, err := walletscope.New(ctx, cfg,
//	    walletscope.WithWindow(window),
//	    walletscope.WithStateDir("/var/lib/walletscope"),
//	    walletscope.WithHTTPClient(customClient),
//	    walletscope.WithLogger(log.NewConsoleLogger(zerolog.InfoLevel)),
//	)
//
// [NewMemoryWindow] and [NewMemoryProvider] create an in-memory host for
// tools and tests.
//
// # Plugins
//
// Plugins are started after the client is up and stopped before it closes:
//
//	import "github.com/bft-labs/walletscope/plugins/configwatcher"
//
//	client, err := walletscope.New(ctx, cfg,
//	    walletscope.WithWindow(window),
//	    configwatcher.WithConfigWatcher(configwatcher.DefaultConfig("walletscope.toml")),
//	)
//
// # Errors
//
// Caller mistakes are returned as validation errors matching
// [ErrValidation]. Failures inside observers never reach the host; they are
// reported to the collector as diagnostics.
package walletscope
