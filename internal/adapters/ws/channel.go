// Package ws implements the collector channel over a single WebSocket.
package ws

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bft-labs/walletscope/internal/domain"
	"github.com/bft-labs/walletscope/internal/jsoncodec"
	"github.com/bft-labs/walletscope/internal/ports"
)

// FrameSubmitEvent is the frame type carrying one envelope.
const FrameSubmitEvent = "submit-event"

// Default timeouts.
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
)

// Frame is the JSON message written for every emitted envelope.
type Frame struct {
	Type    string          `json:"type"`
	Payload domain.Envelope `json:"payload"`
}

// Options configures channels opened by a Dialer.
type Options struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	BackoffInitial   time.Duration
	BackoffMax       time.Duration

	// OnStateChange observes connection state changes. It must not call
	// back into the channel.
	OnStateChange StateObserver
}

// Dialer implements ports.Dialer with gorilla/websocket.
type Dialer struct {
	logger ports.Logger
	opts   Options
	dialer *websocket.Dialer
}

// NewDialer creates a new WebSocket dialer.
func NewDialer(logger ports.Logger, opts Options) *Dialer {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.BackoffInitial <= 0 {
		opts.BackoffInitial = DefaultBackoffInitial
	}
	if opts.BackoffMax <= 0 {
		opts.BackoffMax = DefaultBackoffMax
	}
	return &Dialer{
		logger: logger,
		opts:   opts,
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: opts.HandshakeTimeout,
		},
	}
}

// Endpoint converts an http(s) collector base URL into the ws(s) URL
// carrying the channel query.
func Endpoint(baseURL string, q ports.ChannelQuery) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse collector url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported collector url scheme %q", u.Scheme)
	}

	u.RawQuery = q.Values().Encode()
	return u.String(), nil
}

// Open connects to the collector. A failed first attempt is not an error:
// the channel keeps reconnecting in the background and drops events until
// a connection is up.
func (d *Dialer) Open(ctx context.Context, baseURL string, q ports.ChannelQuery) (ports.Channel, error) {
	endpoint, err := Endpoint(baseURL, q)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c := &Channel{
		endpoint: endpoint,
		dialer:   d.dialer,
		logger:   d.logger,
		opts:     d.opts,
		state:    newConnState(d.logger, d.opts.OnStateChange),
		backoff:  newBackoff(d.opts.BackoffInitial, d.opts.BackoffMax),
		ctx:      runCtx,
		cancel:   cancel,
	}

	_ = c.state.TransitionTo(StateConnecting, "open")
	if err := c.connect(ctx); err != nil {
		d.logger.Warn("channel connect failed, retrying in background",
			ports.String("url", baseURL),
			ports.Err(err),
		)
		c.scheduleReconnect("initial connect failed")
	}

	return c, nil
}

// Channel is a persistent WebSocket connection to the collector.
type Channel struct {
	endpoint string
	dialer   *websocket.Dialer
	logger   ports.Logger
	opts     Options
	state    *connState
	backoff  *backoff

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	conn *websocket.Conn
}

// State returns the current connection state.
func (c *Channel) State() State {
	return c.state.State()
}

// Emit writes one submit-event frame. It returns domain.ErrDisconnected
// when no connection is up; the envelope is not queued.
func (c *Channel) Emit(envelope domain.Envelope) error {
	data, err := jsoncodec.Marshal(Frame{Type: FrameSubmitEvent, Payload: envelope})
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.State() == StateClosed {
		return domain.ErrClosed
	}
	if c.conn == nil {
		return domain.ErrDisconnected
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: write frame: %v", domain.ErrNetwork, err)
	}
	return nil
}

// Close tears the connection down and stops reconnecting.
func (c *Channel) Close() error {
	c.mu.Lock()
	if err := c.state.TransitionTo(StateClosed, "close"); err != nil {
		c.mu.Unlock()
		return nil
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	c.cancel()

	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.opts.WriteTimeout))
		_ = conn.Close()
	}

	c.wg.Wait()
	return nil
}

func (c *Channel) connect(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: dial: %v", domain.ErrNetwork, err)
	}

	c.mu.Lock()
	if err := c.state.TransitionTo(StateConnected, "dial succeeded"); err != nil {
		c.mu.Unlock()
		_ = conn.Close()
		return domain.ErrClosed
	}
	c.conn = conn
	c.backoff.Reset()
	c.wg.Add(1)
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

// readLoop drains inbound frames; the collector sends nothing we act on.
// A read error marks the connection as lost.
func (c *Channel) readLoop(conn *websocket.Conn) {
	defer c.wg.Done()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			c.logger.Debug("channel read ended", ports.Err(err))
			break
		}
	}

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()

	c.scheduleReconnect("connection lost")
}

func (c *Channel) scheduleReconnect(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.state.TransitionTo(StateReconnecting, reason); err != nil {
		return
	}
	c.wg.Add(1)
	go c.reconnectLoop()
}

func (c *Channel) reconnectLoop() {
	defer c.wg.Done()

	for {
		if err := c.backoff.Wait(c.ctx); err != nil {
			return
		}
		err := c.connect(c.ctx)
		if err == nil || c.ctx.Err() != nil {
			return
		}
		c.logger.Debug("channel reconnect failed", ports.Err(err))
	}
}
