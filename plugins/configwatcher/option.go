package configwatcher

import "github.com/bft-labs/walletscope/pkg/walletscope"

// WithConfigWatcher returns a walletscope Option that enables config file
// watching.
//
// Usage:
//
//	c, err := walletscope.New(ctx, cfg,
//	    walletscope.WithWindow(window),
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:          "/etc/walletscope/config.toml",
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) walletscope.Option {
	plugin := New(cfg)
	return walletscope.WithPlugin(plugin)
}

// WithDefaultConfigWatcher returns a walletscope Option that watches path
// with default settings.
func WithDefaultConfigWatcher(path string) walletscope.Option {
	return WithConfigWatcher(DefaultConfig(path))
}
