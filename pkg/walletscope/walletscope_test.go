package walletscope_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/walletscope/internal/adapters/memory"
	"github.com/bft-labs/walletscope/internal/adapters/ws"
	"github.com/bft-labs/walletscope/internal/jsoncodec"
	"github.com/bft-labs/walletscope/pkg/walletscope"
)

const (
	testPage    = "https://app.example/"
	testAPIKey  = "test-api-key"
	testAccount = "0x884151235a59c38b4e72550b0cf16781b08ef7b0"
)

// collector serves /identify, /log-sdk and the event channel.
type collector struct {
	t        *testing.T
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu         sync.Mutex
	identifies int
	logs       []string
	frames     []ws.Frame
}

func newCollector(t *testing.T) *collector {
	c := &collector{t: t}
	mux := http.NewServeMux()
	mux.HandleFunc("/identify", func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		c.identifies++
		c.mu.Unlock()
		_, _ = io.WriteString(w, `"collector-identity"`)
	})
	mux.HandleFunc("/log-sdk", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.logs = append(c.logs, string(body))
		c.mu.Unlock()
		_, _ = io.WriteString(w, `""`)
	})
	mux.HandleFunc("/", c.serveChannel)
	c.server = httptest.NewServer(mux)
	t.Cleanup(c.server.Close)
	return c
}

func (c *collector) serveChannel(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var f ws.Frame
		if err := jsoncodec.Unmarshal(data, &f); err != nil {
			c.t.Errorf("unmarshal frame: %v", err)
			return
		}
		c.mu.Lock()
		c.frames = append(c.frames, f)
		c.mu.Unlock()
	}
}

func (c *collector) Frames() []ws.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ws.Frame(nil), c.frames...)
}

func (c *collector) Logs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.logs...)
}

func (c *collector) Identifies() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identifies
}

func newProvider() *walletscope.MemoryProvider {
	p := walletscope.NewMemoryProvider()
	p.HandleResult("eth_accounts", []any{})
	p.HandleResult("eth_chainId", "0x1")
	return p
}

func TestClient_EndToEnd(t *testing.T) {
	col := newCollector(t)

	cfg := walletscope.DefaultConfig()
	cfg.APIKey = testAPIKey
	cfg.URL = col.server.URL + "/"

	window := walletscope.NewMemoryWindow(testPage)
	client, err := walletscope.New(context.Background(), cfg,
		walletscope.WithWindow(window),
		walletscope.WithProvider(newProvider()),
	)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "collector-identity", client.IdentityID())
	assert.NotEmpty(t, client.SessionID())
	assert.Equal(t, col.server.URL, client.Config().URL)

	require.NoError(t, client.Wallet(walletscope.WalletInput{Account: testAccount, ChainID: "0x1"}))

	require.Eventually(t, func() bool { return len(col.Frames()) == 2 }, 5*time.Second, 10*time.Millisecond)

	frames := col.Frames()
	assert.Equal(t, ws.FrameSubmitEvent, frames[0].Type)
	assert.Equal(t, walletscope.Event("PAGE"), frames[0].Payload.Event)
	assert.Empty(t, frames[0].Payload.LibraryType)

	assert.Equal(t, walletscope.Event("CONNECT"), frames[1].Payload.Event)
	assert.Equal(t, testPage, frames[1].Payload.URL)
	assert.Equal(t, walletscope.DefaultLibraryType, frames[1].Payload.LibraryType)
	assert.Equal(t, "1", frames[1].Payload.Attributes["chainId"])
	assert.Equal(t, testAccount, frames[1].Payload.Attributes["account"])
}

func TestClient_ReportPostsDiagnostic(t *testing.T) {
	col := newCollector(t)

	cfg := walletscope.DefaultConfig()
	cfg.APIKey = testAPIKey
	cfg.URL = col.server.URL

	client, err := walletscope.New(context.Background(), cfg,
		walletscope.WithWindow(walletscope.NewMemoryWindow(testPage)),
	)
	require.NoError(t, err)
	defer client.Close()

	client.Report(context.Background(), walletscope.LogLevelWarning, "custom", errors.New("TestError"))

	logs := col.Logs()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0], `"logLevel":"warning"`)
	assert.Contains(t, logs[0], `"msg":"custom: TestError"`)
}

func TestClient_CachesIdentity(t *testing.T) {
	col := newCollector(t)
	storage := memory.NewStorage()

	cfg := walletscope.DefaultConfig()
	cfg.APIKey = testAPIKey
	cfg.URL = col.server.URL

	for i := 0; i < 2; i++ {
		client, err := walletscope.New(context.Background(), cfg,
			walletscope.WithWindow(walletscope.NewMemoryWindow(testPage)),
			walletscope.WithStorage(storage),
		)
		require.NoError(t, err)
		require.NoError(t, client.Close())
	}

	assert.Equal(t, 1, col.Identifies())
}

func TestClient_StateDir(t *testing.T) {
	col := newCollector(t)
	dir := t.TempDir()

	cfg := walletscope.DefaultConfig()
	cfg.APIKey = testAPIKey
	cfg.URL = col.server.URL

	for i := 0; i < 2; i++ {
		client, err := walletscope.New(context.Background(), cfg,
			walletscope.WithWindow(walletscope.NewMemoryWindow(testPage)),
			walletscope.WithStateDir(dir),
		)
		require.NoError(t, err)
		require.NoError(t, client.Close())
	}

	assert.Equal(t, 1, col.Identifies())
}

func TestNew_IdentifyFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	cfg := walletscope.DefaultConfig()
	cfg.APIKey = testAPIKey
	cfg.URL = server.URL

	_, err := walletscope.New(context.Background(), cfg,
		walletscope.WithWindow(walletscope.NewMemoryWindow(testPage)),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, walletscope.ErrRequest))
}

func TestNew_RequiresWindow(t *testing.T) {
	cfg := walletscope.DefaultConfig()
	cfg.APIKey = testAPIKey

	_, err := walletscope.New(context.Background(), cfg)
	assert.ErrorIs(t, err, walletscope.ErrWindowRequired)
}

func TestClient_MetricsRegisterer(t *testing.T) {
	col := newCollector(t)
	reg := prometheus.NewRegistry()

	cfg := walletscope.DefaultConfig()
	cfg.APIKey = testAPIKey
	cfg.URL = col.server.URL

	client, err := walletscope.New(context.Background(), cfg,
		walletscope.WithWindow(walletscope.NewMemoryWindow(testPage)),
		walletscope.WithMetricsRegisterer(reg),
	)
	require.NoError(t, err)
	defer client.Close()

	gathered := func() []string {
		families, err := reg.Gather()
		require.NoError(t, err)
		var names []string
		for _, f := range families {
			names = append(names, f.GetName())
		}
		return names
	}

	require.Eventually(t, func() bool {
		for _, name := range gathered() {
			if name == "walletscope_sdk_events_emitted_total" {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, gathered(), "walletscope_sdk_channel_connected")
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	col := newCollector(t)

	cfg := walletscope.DefaultConfig()
	cfg.APIKey = testAPIKey
	cfg.URL = col.server.URL

	client, err := walletscope.New(context.Background(), cfg,
		walletscope.WithWindow(walletscope.NewMemoryWindow(testPage)),
	)
	require.NoError(t, err)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.Page(), walletscope.ErrClosed)
	assert.ErrorIs(t, client.Event("x", nil), walletscope.ErrClosed)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*walletscope.Config)
		wantErr string
	}{
		{"valid", func(*walletscope.Config) {}, ""},
		{"missing api key", func(c *walletscope.Config) { c.APIKey = " " }, "apiKey cannot be empty"},
		{"relative url", func(c *walletscope.Config) { c.URL = "/collector" }, "url must be"},
		{"unsupported scheme", func(c *walletscope.Config) { c.URL = "ftp://collector.example" }, "url must be"},
		{"negative timeout", func(c *walletscope.Config) { c.HTTPTimeout = -time.Second }, "httpTimeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := walletscope.DefaultConfig()
			cfg.APIKey = testAPIKey
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, walletscope.ErrValidation)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}

func TestConfig_ValidateTrimsTrailingSlash(t *testing.T) {
	cfg := walletscope.DefaultConfig()
	cfg.APIKey = testAPIKey
	cfg.URL = "https://collector.example/v1/"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://collector.example/v1", cfg.URL)
}

func TestConfig_Tracking(t *testing.T) {
	cfg := walletscope.DefaultConfig()
	assert.Equal(t, walletscope.Tracking{
		Pages: true, WalletConnections: true, ChainChanges: true,
		Transactions: true, Signing: true, Clicks: true,
	}, cfg.Tracking())

	cfg = cfg.WithTracking(walletscope.Tracking{Clicks: true})
	assert.False(t, cfg.TrackPages)
	assert.True(t, cfg.TrackClicks)
}
