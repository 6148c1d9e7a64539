package walletscope

import (
	"net/url"
	"strings"
	"time"

	"github.com/bft-labs/walletscope/internal/app"
	"github.com/bft-labs/walletscope/internal/domain"
)

const (
	// DefaultURL is the production collector.
	DefaultURL = "https://api.walletscope.dev/v1"

	// DefaultLibraryType tags envelopes produced by this module.
	DefaultLibraryType = "go-module"

	// DefaultHTTPTimeout bounds each one-shot collector request.
	DefaultHTTPTimeout = 30 * time.Second
)

// Tracking toggles the individual observers.
type Tracking = app.Tracking

// Config holds the client configuration.
// Use DefaultConfig() to get a Config with every observer enabled.
type Config struct {
	// APIKey authenticates the client against the collector. Required.
	APIKey string

	// URL is the collector base URL.
	// Default: DefaultURL
	URL string

	// CacheIdentity keeps the resolved device identity in durable storage.
	CacheIdentity bool

	TrackPages             bool
	TrackWalletConnections bool
	TrackChainChanges      bool
	TrackTransactions      bool
	TrackSigning           bool
	TrackClicks            bool

	// LibraryType is stamped on envelopes produced by observers and
	// explicit calls.
	// Default: DefaultLibraryType
	LibraryType string

	// HTTPTimeout is the timeout of the default HTTP client.
	// Default: 30 seconds
	HTTPTimeout time.Duration
}

// DefaultConfig returns a Config with every observer and identity caching
// enabled. APIKey must still be set.
func DefaultConfig() Config {
	return Config{
		URL:                    DefaultURL,
		CacheIdentity:          true,
		TrackPages:             true,
		TrackWalletConnections: true,
		TrackChainChanges:      true,
		TrackTransactions:      true,
		TrackSigning:           true,
		TrackClicks:            true,
		LibraryType:            DefaultLibraryType,
		HTTPTimeout:            DefaultHTTPTimeout,
	}
}

// SetDefaults fills zero-valued fields that have defaults.
// Boolean flags are left alone.
func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.LibraryType == "" {
		c.LibraryType = DefaultLibraryType
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
}

// Validate checks the configuration and normalizes URL by dropping a
// trailing slash.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return domain.NewValidationError("init", "apiKey cannot be empty")
	}

	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" {
		return domain.NewValidationError("init", "url must be an absolute http or https URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return domain.NewValidationError("init", "url must be an absolute http or https URL")
	}
	c.URL = strings.TrimRight(c.URL, "/")

	if c.HTTPTimeout < 0 {
		return domain.NewValidationError("init", "httpTimeout cannot be negative")
	}
	return nil
}

// Tracking returns the observer flags of c.
func (c Config) Tracking() Tracking {
	return Tracking{
		Pages:             c.TrackPages,
		WalletConnections: c.TrackWalletConnections,
		ChainChanges:      c.TrackChainChanges,
		Transactions:      c.TrackTransactions,
		Signing:           c.TrackSigning,
		Clicks:            c.TrackClicks,
	}
}

// WithTracking returns a copy of c with the observer flags of t.
func (c Config) WithTracking(t Tracking) Config {
	c.TrackPages = t.Pages
	c.TrackWalletConnections = t.WalletConnections
	c.TrackChainChanges = t.ChainChanges
	c.TrackTransactions = t.Transactions
	c.TrackSigning = t.Signing
	c.TrackClicks = t.Clicks
	return c
}
