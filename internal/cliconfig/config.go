package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/walletscope/pkg/walletscope"
)

// DefaultURL is the default collector endpoint.
const DefaultURL = walletscope.DefaultURL

// Config holds CLI configuration for walletscope.
type Config struct {
	APIKey      string
	URL         string
	StateDir    string
	HTTPTimeout time.Duration
	LogLevel    string
	MetricsAddr string

	CacheIdentity          bool
	TrackPages             bool
	TrackWalletConnections bool
	TrackChainChanges      bool
	TrackTransactions      bool
	TrackSigning           bool
	TrackClicks            bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	lib := walletscope.DefaultConfig()
	return Config{
		APIKey:                 os.Getenv("WALLETSCOPE_API_KEY"),
		URL:                    DefaultURL,
		StateDir:               "", // Derived from the home directory during Validate
		HTTPTimeout:            15 * time.Second,
		LogLevel:               "info",
		CacheIdentity:          lib.CacheIdentity,
		TrackPages:             lib.TrackPages,
		TrackWalletConnections: lib.TrackWalletConnections,
		TrackChainChanges:      lib.TrackChainChanges,
		TrackTransactions:      lib.TrackTransactions,
		TrackSigning:           lib.TrackSigning,
		TrackClicks:            lib.TrackClicks,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api-key is required")
	}

	if c.URL == "" {
		c.URL = DefaultURL
	}

	// Ensure no trailing slash
	if len(c.URL) > 0 && c.URL[len(c.URL)-1] == '/' {
		c.URL = c.URL[:len(c.URL)-1]
	}

	if c.StateDir == "" {
		c.StateDir = DefaultStateDir()
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}

	return nil
}

// Level returns the zerolog level named by LogLevel, or info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Library converts the CLI configuration into the client configuration.
func (c Config) Library() walletscope.Config {
	return walletscope.Config{
		APIKey:                 c.APIKey,
		URL:                    c.URL,
		CacheIdentity:          c.CacheIdentity,
		TrackPages:             c.TrackPages,
		TrackWalletConnections: c.TrackWalletConnections,
		TrackChainChanges:      c.TrackChainChanges,
		TrackTransactions:      c.TrackTransactions,
		TrackSigning:           c.TrackSigning,
		TrackClicks:            c.TrackClicks,
		LibraryType:            walletscope.DefaultLibraryType,
		HTTPTimeout:            c.HTTPTimeout,
	}
}

// DefaultStateDir returns ~/.walletscope, or a relative fallback.
func DefaultStateDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".walletscope")
	}
	return ".walletscope"
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
