package cliconfig

import "os"

// ApplyEnvConfig applies WALLETSCOPE_* environment variables to cfg.
// They override file values but not explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("api-key", os.Getenv("WALLETSCOPE_API_KEY"), &cfg.APIKey)
	s.setString("url", os.Getenv("WALLETSCOPE_URL"), &cfg.URL)
	s.setString("state-dir", os.Getenv("WALLETSCOPE_STATE_DIR"), &cfg.StateDir)
	s.setString("log-level", os.Getenv("WALLETSCOPE_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("metrics-addr", os.Getenv("WALLETSCOPE_METRICS_ADDR"), &cfg.MetricsAddr)

	if err := s.setDuration("timeout", os.Getenv("WALLETSCOPE_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setBoolFromString("cache-identity", os.Getenv("WALLETSCOPE_CACHE_IDENTITY"), &cfg.CacheIdentity)
	s.setBoolFromString("track-pages", os.Getenv("WALLETSCOPE_TRACK_PAGES"), &cfg.TrackPages)
	s.setBoolFromString("track-wallet-connections", os.Getenv("WALLETSCOPE_TRACK_WALLET_CONNECTIONS"), &cfg.TrackWalletConnections)
	s.setBoolFromString("track-chain-changes", os.Getenv("WALLETSCOPE_TRACK_CHAIN_CHANGES"), &cfg.TrackChainChanges)
	s.setBoolFromString("track-transactions", os.Getenv("WALLETSCOPE_TRACK_TRANSACTIONS"), &cfg.TrackTransactions)
	s.setBoolFromString("track-signing", os.Getenv("WALLETSCOPE_TRACK_SIGNING"), &cfg.TrackSigning)
	s.setBoolFromString("track-clicks", os.Getenv("WALLETSCOPE_TRACK_CLICKS"), &cfg.TrackClicks)

	return nil
}
