package walletscope

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/bft-labs/walletscope/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/walletscope/internal/adapters/http"
	logAdapter "github.com/bft-labs/walletscope/internal/adapters/log"
	"github.com/bft-labs/walletscope/internal/adapters/memory"
	"github.com/bft-labs/walletscope/internal/adapters/ws"
	"github.com/bft-labs/walletscope/internal/app"
	"github.com/bft-labs/walletscope/internal/ports"
)

// ErrWindowRequired is returned by New when no Window is given.
var ErrWindowRequired = errors.New("walletscope: window is required")

// Client is a running instrumentation instance.
// Use New() to create one and Close() to detach it from the host.
type Client struct {
	config  Config
	engine  *app.Engine
	metrics *app.Metrics
	logger  ports.Logger
	plugins []Plugin

	mu     sync.Mutex
	closed bool
}

// New resolves the device identity, opens the collector channel and
// installs the observers enabled in cfg. Identity or channel failures are
// returned and no client is produced.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.window == nil {
		return nil, ErrWindowRequired
	}

	logger := o.logger
	if logger == nil {
		logger = logAdapter.NewNoopLogger()
	}

	metrics := app.NewMetrics(o.registerer)
	if o.registerer != nil {
		if err := metrics.Register(); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	durable := o.storage
	if durable == nil {
		if o.stateDir != "" {
			fileStorage, err := fs.NewFileStorage(o.stateDir)
			if err != nil {
				return nil, err
			}
			durable = fileStorage
		} else {
			durable = memory.NewStorage()
		}
	}
	session := o.sessionStorage
	if session == nil {
		session = memory.NewStorage()
	}

	poster := o.poster
	if poster == nil {
		client := o.httpClient
		if client == nil {
			client = &http.Client{Timeout: cfg.HTTPTimeout}
		}
		poster = httpAdapter.NewPoster(client, logger, Version, cfg.LibraryType)
	}

	dialer := o.dialer
	if dialer == nil {
		dialer = ws.NewDialer(logger, ws.Options{
			OnStateChange: func(prev, cur ws.State, reason string) {
				metrics.SetChannelConnected(cur == ws.StateConnected)
				logger.Debug("channel state changed",
					ports.String("from", prev.String()),
					ports.String("to", cur.String()),
					ports.String("reason", reason),
				)
			},
		})
	}

	engine, err := app.Init(ctx, app.Config{
		APIKey:        cfg.APIKey,
		URL:           cfg.URL,
		SDKVersion:    Version,
		LibraryType:   cfg.LibraryType,
		CacheIdentity: cfg.CacheIdentity,
		Tracking:      cfg.Tracking(),
	}, app.Deps{
		Durable:  durable,
		Session:  session,
		Window:   o.window,
		Provider: o.provider,
		Dialer:   dialer,
		Poster:   poster,
		Logger:   logger,
		Metrics:  metrics,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		config:  cfg,
		engine:  engine,
		metrics: metrics,
		logger:  logger,
		plugins: o.plugins,
	}

	pluginCfg := PluginConfig{
		APIKey: cfg.APIKey,
		URL:    cfg.URL,
		Logger: logger,
		Client: c,
	}
	for i, p := range c.plugins {
		if err := p.Initialize(ctx, pluginCfg); err != nil {
			logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			c.plugins = c.plugins[:i]
			_ = c.Close()
			return nil, fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	return c, nil
}

// Config returns the configuration the client was created with.
func (c *Client) Config() Config {
	return c.config.WithTracking(c.engine.Tracking())
}

// IdentityID returns the resolved device identity.
func (c *Client) IdentityID() string { return c.engine.IdentityID() }

// SessionID returns the id of the current browsing session.
func (c *Client) SessionID() string { return c.engine.SessionID() }

// Event emits CUSTOM_EVENT {name, attributes}.
func (c *Client) Event(name string, attrs Attributes) error {
	return c.engine.Event(name, attrs)
}

// Page emits PAGE {referrer} for the current location.
func (c *Client) Page() error {
	return c.engine.Page()
}

// Wallet records a connected wallet and emits CONNECT.
func (c *Client) Wallet(in WalletInput) error {
	return c.engine.Wallet(in)
}

// Disconnection clears the recorded wallet and emits DISCONNECT when an
// account is known.
func (c *Client) Disconnection(in DisconnectionInput) error {
	return c.engine.Disconnection(in)
}

// Chain records a chain change and emits CHAIN_CHANGED.
func (c *Client) Chain(in ChainInput) error {
	return c.engine.Chain(in)
}

// Transaction emits TRANSACTION_SUBMITTED.
func (c *Client) Transaction(in TransactionInput) error {
	return c.engine.Transaction(in)
}

// Signature emits SIGNING_TRIGGERED.
func (c *Client) Signature(in SignatureInput) error {
	return c.engine.Signature(in)
}

// TrackProvider binds p, replacing any previous binding. A nil p detaches
// the current provider.
func (c *Client) TrackProvider(p Provider) {
	c.engine.TrackProvider(p)
}

// Provider returns the bound provider, or nil.
func (c *Client) Provider() Provider {
	return c.engine.Provider()
}

// Tracking returns the active observer flags.
func (c *Client) Tracking() Tracking {
	return c.engine.Tracking()
}

// Reconfigure applies new observer flags and re-binds the provider.
func (c *Client) Reconfigure(t Tracking) error {
	return c.engine.Reconfigure(t)
}

// Report posts a diagnostic to the collector and waits for the request.
func (c *Client) Report(ctx context.Context, level LogLevel, msg string, err error) {
	c.engine.Report(ctx, level, msg, err)
}

// Wait blocks until in-flight transaction enrichment and diagnostics
// finish.
func (c *Client) Wait() {
	c.engine.Wait()
}

// Close shuts plugins down in reverse order, detaches every observer and
// closes the channel. Calling Close more than once is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	shutdownCtx := context.Background()
	for i := len(c.plugins) - 1; i >= 0; i-- {
		p := c.plugins[i]
		if err := p.Shutdown(shutdownCtx); err != nil {
			c.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
		} else {
			c.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}

	return c.engine.Close()
}
