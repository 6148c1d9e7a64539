package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bft-labs/walletscope/internal/adapters/host"
	"github.com/bft-labs/walletscope/internal/adapters/memory"
	"github.com/bft-labs/walletscope/internal/domain"
	"github.com/bft-labs/walletscope/internal/ports"
)

const (
	testURL        = "https://app.example/"
	testReferrer   = "https://referrer.example/"
	testAPIKey     = "test-api-key"
	testIdentity   = "test-identity"
	testAccount    = "0x884151235a59c38b4e72550b0cf16781b08ef7b0"
	testChainID    = "1"
	testSessionID  = "test-session"
	testBaseURL    = "https://collector.example"
	testSDKVersion = "1.0.0"
	testLibrary    = "go-module"
)

// recordingChannel implements ports.Channel and keeps every envelope.
type recordingChannel struct {
	mu        sync.Mutex
	envelopes []domain.Envelope
	err       error
	closed    bool
	delay     time.Duration
}

func (c *recordingChannel) Emit(env domain.Envelope) error {
	c.mu.Lock()
	delay := c.delay
	c.mu.Unlock()
	time.Sleep(delay)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrClosed
	}
	if c.err != nil {
		return c.err
	}
	c.envelopes = append(c.envelopes, env)
	return nil
}

// SetDelay makes every later Emit stall for d, like a socket with a full
// send buffer.
func (c *recordingChannel) SetDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = d
}

func (c *recordingChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingChannel) Envelopes() []domain.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Envelope(nil), c.envelopes...)
}

func (c *recordingChannel) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.envelopes = nil
}

// recordingDialer implements ports.Dialer.
type recordingDialer struct {
	channel *recordingChannel
	baseURL string
	query   ports.ChannelQuery
	opens   int
	err     error
}

func (d *recordingDialer) Open(_ context.Context, baseURL string, q ports.ChannelQuery) (ports.Channel, error) {
	d.opens++
	if d.err != nil {
		return nil, d.err
	}
	d.baseURL = baseURL
	d.query = q
	return d.channel, nil
}

type postCall struct {
	baseURL string
	apiKey  string
	path    string
	payload any
}

// recordingPoster implements ports.Poster.
type recordingPoster struct {
	mu          sync.Mutex
	calls       []postCall
	identity    string
	identifyErr error
}

func (p *recordingPoster) Post(_ context.Context, baseURL, apiKey, path string, payload any) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, postCall{baseURL: baseURL, apiKey: apiKey, path: path, payload: payload})
	if path == PathIdentify {
		if p.identifyErr != nil {
			return "", p.identifyErr
		}
		return p.identity, nil
	}
	return "", nil
}

func (p *recordingPoster) Calls() []postCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]postCall(nil), p.calls...)
}

// Reports returns the diagnostic payloads posted so far.
func (p *recordingPoster) Reports() []logPayload {
	var out []logPayload
	for _, c := range p.Calls() {
		if c.path == PathLogSDK {
			out = append(out, c.payload.(logPayload))
		}
	}
	return out
}

type fixture struct {
	window   *host.Window
	provider *host.Provider
	durable  *memory.Storage
	session  *memory.Storage
	channel  *recordingChannel
	dialer   *recordingDialer
	poster   *recordingPoster
	metrics  *Metrics
	engine   *Engine
}

func newFixture() *fixture {
	provider := host.NewProvider()
	provider.HandleResult(MethodAccounts, []any{})
	provider.HandleResult(MethodChainID, "0x1")

	channel := &recordingChannel{}
	return &fixture{
		window:   host.NewWindow(testURL, host.WithReferrer(testReferrer)),
		provider: provider,
		durable:  memory.NewStorage(),
		session:  memory.NewStorage(),
		channel:  channel,
		dialer:   &recordingDialer{channel: channel},
		poster:   &recordingPoster{identity: testIdentity},
		metrics:  NewMetrics(nil),
	}
}

func (f *fixture) deps() Deps {
	d := Deps{
		Durable:      f.durable,
		Session:      f.session,
		Window:       f.window,
		Dialer:       f.dialer,
		Poster:       f.poster,
		Metrics:      f.metrics,
		NewSessionID: func() string { return testSessionID },
	}
	if f.provider != nil {
		d.Provider = f.provider
	}
	return d
}

func testConfig(t Tracking) Config {
	return Config{
		APIKey:      testAPIKey,
		URL:         testBaseURL,
		SDKVersion:  testSDKVersion,
		LibraryType: testLibrary,
		Tracking:    t,
	}
}

func (f *fixture) init(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := Init(context.Background(), cfg, f.deps())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	f.engine = e
	return e
}

// envelopes waits for the engine's delivery queue and returns what the
// channel received.
func (f *fixture) envelopes() []domain.Envelope {
	if f.engine != nil {
		f.engine.Wait()
	}
	return f.channel.Envelopes()
}

// reset drains the delivery queue and forgets what was delivered.
func (f *fixture) reset() {
	if f.engine != nil {
		f.engine.Wait()
	}
	f.channel.Reset()
}

// initQuiet starts an engine with every observer off and clears the
// bootstrap traffic.
func (f *fixture) initQuiet(t *testing.T) *Engine {
	t.Helper()
	e := f.init(t, testConfig(Tracking{}))
	f.reset()
	return e
}

func events(envs []domain.Envelope) []domain.Event {
	out := make([]domain.Event, len(envs))
	for i, env := range envs {
		out[i] = env.Event
	}
	return out
}
