// Package walletscope provides client-side analytics for wallet enabled
// web pages.
//
// Example usage:
//
//	cfg := walletscope.DefaultConfig()
//	cfg.APIKey = "your-api-key"
//	client, err := walletscope.New(ctx, cfg, walletscope.WithWindow(window))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
// The full API, including plugins and collaborator injection, lives in
// github.com/bft-labs/walletscope/pkg/walletscope.
package walletscope

import (
	"context"

	"github.com/bft-labs/walletscope/pkg/walletscope"
)

// Config holds the client configuration.
// Use DefaultConfig() to get a Config with every observer enabled.
type Config = walletscope.Config

// Client is a running instrumentation instance.
type Client = walletscope.Client

// Option configures optional behavior of a Client.
type Option = walletscope.Option

// DefaultURL is the production collector.
const DefaultURL = walletscope.DefaultURL

// New starts a client. See walletscope.New in pkg/walletscope.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	return walletscope.New(ctx, cfg, opts...)
}

// DefaultConfig returns a Config with every observer enabled.
// At minimum, APIKey must be set before calling New.
func DefaultConfig() Config {
	return walletscope.DefaultConfig()
}

// WithWindow sets the host page. Required.
func WithWindow(w walletscope.Window) Option {
	return walletscope.WithWindow(w)
}

// WithProvider binds a wallet provider at startup.
func WithProvider(p walletscope.Provider) Option {
	return walletscope.WithProvider(p)
}
