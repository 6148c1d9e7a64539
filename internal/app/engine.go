package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	logAdapter "github.com/bft-labs/walletscope/internal/adapters/log"
	"github.com/bft-labs/walletscope/internal/domain"
	"github.com/bft-labs/walletscope/internal/ports"
)

// ShutdownTimeout bounds how long Close waits for background work before
// canceling it.
const ShutdownTimeout = 10 * time.Second

// Tracking toggles the individual observers.
type Tracking struct {
	Pages             bool
	WalletConnections bool
	ChainChanges      bool
	Transactions      bool
	Signing           bool
	Clicks            bool
}

// AllTracking enables every observer.
func AllTracking() Tracking {
	return Tracking{
		Pages:             true,
		WalletConnections: true,
		ChainChanges:      true,
		Transactions:      true,
		Signing:           true,
		Clicks:            true,
	}
}

// Config contains the engine settings.
type Config struct {
	APIKey        string
	URL           string
	SDKVersion    string
	LibraryType   string
	CacheIdentity bool
	Tracking      Tracking
}

// Deps are the collaborators the engine runs against.
type Deps struct {
	Durable  ports.Storage
	Session  ports.Storage
	Window   ports.Window
	Provider ports.Provider
	Dialer   ports.Dialer
	Poster   ports.Poster
	Logger   ports.Logger
	Metrics  *Metrics

	// NewSessionID creates session ids. Defaults to random UUIDs.
	NewSessionID func() string
}

func (d *Deps) validate() error {
	switch {
	case d.Durable == nil:
		return errors.New("durable storage is required")
	case d.Session == nil:
		return errors.New("session storage is required")
	case d.Window == nil:
		return errors.New("window is required")
	case d.Dialer == nil:
		return errors.New("dialer is required")
	case d.Poster == nil:
		return errors.New("poster is required")
	}
	return nil
}

// Engine is one running instrumentation instance.
type Engine struct {
	cfgMu sync.RWMutex
	cfg   Config

	identityID string
	sessionID  string

	window   ports.Window
	session  ports.Storage
	logger   ports.Logger
	metrics  *Metrics
	state    *SessionState
	pipeline *Pipeline
	reporter *Reporter
	channel  ports.Channel

	// provider binding
	bindMu   sync.Mutex
	provider ports.Provider
	original ports.RequestFunc

	// navigation and click observers
	obsMu      sync.Mutex
	push       historyHook
	replace    historyHook
	navigation bool
	clicks     bool

	// background work (enrichment, passive diagnostics)
	ctx     context.Context
	cancel  context.CancelFunc
	spawnMu sync.Mutex
	closed  bool
	wg      sync.WaitGroup
}

// Init resolves the identity, opens the collector channel and installs the
// observers enabled in cfg.Tracking. Identity or channel failures are
// returned and no engine is produced.
func Init(ctx context.Context, cfg Config, deps Deps) (*Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = logAdapter.NewNoopLogger()
	}
	if deps.NewSessionID == nil {
		deps.NewSessionID = uuid.NewString
	}

	resolver := NewIdentityResolver(deps.Durable, deps.Poster, cfg.URL, cfg.APIKey, deps.Logger)
	identityID, err := resolver.Resolve(ctx, cfg.CacheIdentity)
	if err != nil {
		return nil, err
	}

	sessionID, err := ResolveSessionID(deps.Session, deps.NewSessionID)
	if err != nil {
		return nil, err
	}

	screen, viewport := deps.Window.Screen(), deps.Window.Viewport()
	channel, err := deps.Dialer.Open(ctx, cfg.URL, ports.ChannelQuery{
		APIKey:           cfg.APIKey,
		IdentityID:       identityID,
		SDKVersion:       cfg.SDKVersion,
		ScreenWidth:      screen.Width,
		ScreenHeight:     screen.Height,
		ViewportWidth:    viewport.Width,
		ViewportHeight:   viewport.Height,
		URL:              deps.Window.Href(),
		SessionStorageID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	lastPage, _ := deps.Session.Get(CurrentURLKey)
	runCtx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		cfg:        cfg,
		identityID: identityID,
		sessionID:  sessionID,
		window:     deps.Window,
		session:    deps.Session,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		state:      NewSessionState(lastPage),
		pipeline:   NewPipeline(channel, deps.Window, cfg.LibraryType, deps.Logger, deps.Metrics),
		reporter:   NewReporter(deps.Poster, deps.Window, cfg.URL, cfg.APIKey, identityID, deps.Logger, deps.Metrics),
		channel:    channel,
		ctx:        runCtx,
		cancel:     cancel,
	}

	e.logger.Info("engine initialized",
		ports.String("url", cfg.URL),
		ports.String("session", sessionID),
	)

	if cfg.Tracking.Pages {
		e.trackFirstPageVisit()
		e.installNavigation()
	}
	if cfg.Tracking.Clicks {
		e.installClicks()
	}

	e.TrackProvider(deps.Provider)

	if cfg.Tracking.WalletConnections {
		e.reportCurrentWallet(ctx)
	}

	return e, nil
}

// IdentityID returns the resolved device identity.
func (e *Engine) IdentityID() string { return e.identityID }

// SessionID returns the session id the channel was opened with.
func (e *Engine) SessionID() string { return e.sessionID }

// State exposes the session state.
func (e *Engine) State() *SessionState { return e.state }

// Tracking returns the active observer flags.
func (e *Engine) Tracking() Tracking {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.cfg.Tracking
}

// Reconfigure applies new observer flags: navigation and click observers
// are installed or removed, and the current provider is re-bound.
func (e *Engine) Reconfigure(t Tracking) error {
	if e.isClosed() {
		return domain.ErrClosed
	}

	e.cfgMu.Lock()
	e.cfg.Tracking = t
	e.cfgMu.Unlock()

	if t.Pages {
		e.installNavigation()
	} else {
		e.uninstallNavigation()
	}
	if t.Clicks {
		e.installClicks()
	} else {
		e.uninstallClicks()
	}

	e.TrackProvider(e.Provider())

	e.logger.Info("tracking reconfigured",
		ports.Bool("pages", t.Pages),
		ports.Bool("walletConnections", t.WalletConnections),
		ports.Bool("chainChanges", t.ChainChanges),
		ports.Bool("transactions", t.Transactions),
		ports.Bool("signing", t.Signing),
		ports.Bool("clicks", t.Clicks),
	)
	return nil
}

// Wait blocks until in-flight enrichment and passive diagnostics finish
// and every queued envelope has been handed to the channel.
func (e *Engine) Wait() {
	e.wg.Wait()
	e.pipeline.Flush()
}

// Close detaches every observer, waits for background work and closes the
// channel. Calling Close more than once is a no-op.
func (e *Engine) Close() error {
	e.spawnMu.Lock()
	if e.closed {
		e.spawnMu.Unlock()
		return nil
	}
	e.closed = true
	e.spawnMu.Unlock()

	e.TrackProvider(nil)
	e.uninstallNavigation()
	e.uninstallClicks()

	e.waitWithTimeout(ShutdownTimeout)
	e.cancel()
	e.wg.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := e.pipeline.Close(drainCtx); err != nil {
		e.logger.Warn("delivery queue not drained before close", ports.Err(err))
	}

	e.logger.Info("engine closed")
	return e.channel.Close()
}

// waitWithTimeout waits for background work. After timeout the context
// handed to that work is canceled.
func (e *Engine) waitWithTimeout(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		e.logger.Warn("shutdown timeout, canceling background work",
			ports.Duration("timeout", timeout),
		)
		e.cancel()
	}
}

func (e *Engine) isClosed() bool {
	e.spawnMu.Lock()
	defer e.spawnMu.Unlock()
	return e.closed
}

// spawn runs fn in a tracked goroutine unless the engine is closed.
func (e *Engine) spawn(fn func()) bool {
	e.spawnMu.Lock()
	defer e.spawnMu.Unlock()
	if e.closed {
		return false
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn()
	}()
	return true
}

// emit sends a third-party envelope.
func (e *Engine) emit(event domain.Event, attrs domain.Attributes) error {
	return e.pipeline.Emit(event, attrs, false)
}

// report posts a diagnostic from a passive path without blocking it.
func (e *Engine) report(level domain.LogLevel, msg string, err error) {
	if !e.spawn(func() { e.reporter.Report(e.ctx, level, msg, err) }) {
		e.logger.Warn(msg, ports.Err(err))
	}
}

// Report posts a diagnostic and waits for the post to finish.
func (e *Engine) Report(ctx context.Context, level domain.LogLevel, msg string, err error) {
	e.reporter.Report(ctx, level, msg, err)
}

// guard wraps a passive listener so a panic is reported instead of
// unwinding into host code.
func (e *Engine) guard(name string, fn func(payload any)) func(payload any) {
	return func(payload any) {
		defer e.recoverPassive(name)
		fn(payload)
	}
}

func (e *Engine) recoverPassive(name string) {
	if r := recover(); r != nil {
		e.report(domain.LogLevelError, fmt.Sprintf("%s: recovered from panic: %v", name, r), nil)
	}
}
