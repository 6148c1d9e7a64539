package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/walletscope/pkg/walletscope"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	APIKey        string       `toml:"api_key"`
	URL           string       `toml:"url"`
	StateDir      string       `toml:"state_dir"`
	HTTPTimeout   string       `toml:"http_timeout"`
	LogLevel      string       `toml:"log_level"`
	MetricsAddr   string       `toml:"metrics_addr"`
	CacheIdentity *bool        `toml:"cache_identity"`
	Tracking      FileTracking `toml:"tracking"`
}

// FileTracking is the [tracking] table. Absent keys leave the current
// setting alone.
type FileTracking struct {
	Pages             *bool `toml:"pages"`
	WalletConnections *bool `toml:"wallet_connections"`
	ChainChanges      *bool `toml:"chain_changes"`
	Transactions      *bool `toml:"transactions"`
	Signing           *bool `toml:"signing"`
	Clicks            *bool `toml:"clicks"`
}

// Apply returns t with every key present in ft applied.
func (ft FileTracking) Apply(t walletscope.Tracking) walletscope.Tracking {
	set := func(v *bool, dst *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(ft.Pages, &t.Pages)
	set(ft.WalletConnections, &t.WalletConnections)
	set(ft.ChainChanges, &t.ChainChanges)
	set(ft.Transactions, &t.Transactions)
	set(ft.Signing, &t.Signing)
	set(ft.Clicks, &t.Clicks)
	return t
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.walletscope/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".walletscope", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("api-key", fc.APIKey, &cfg.APIKey)
	s.setString("url", fc.URL, &cfg.URL)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setBool("cache-identity", fc.CacheIdentity, &cfg.CacheIdentity)
	s.setBool("track-pages", fc.Tracking.Pages, &cfg.TrackPages)
	s.setBool("track-wallet-connections", fc.Tracking.WalletConnections, &cfg.TrackWalletConnections)
	s.setBool("track-chain-changes", fc.Tracking.ChainChanges, &cfg.TrackChainChanges)
	s.setBool("track-transactions", fc.Tracking.Transactions, &cfg.TrackTransactions)
	s.setBool("track-signing", fc.Tracking.Signing, &cfg.TrackSigning)
	s.setBool("track-clicks", fc.Tracking.Clicks, &cfg.TrackClicks)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
