package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/walletscope/internal/cliconfig"
	"github.com/bft-labs/walletscope/pkg/log"
)

const helpDescription = `
Replay wallet sessions against the walletscope collector.

Highlights:
  - Drives an in-memory page and wallet from YAML scenarios.
  - Streams page views, wallet connections, chain switches, transactions,
    signatures and clicks over a single channel.
  - Configure via file, env (WALLETSCOPE_*) or flags.
`

var exampleUsage = strings.TrimSpace(`
  walletscope identify --api-key <api-key>
  walletscope replay swap.yaml --config $HOME/.walletscope/config.toml --watch
  walletscope replay swap.yaml --track-clicks=false --metrics-addr :9100
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries the flag-bound configuration shared by every command.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	log     zerolog.Logger
}

func main() {
	c := &cli{
		cfg: cliconfig.DefaultConfig(),
		log: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger(),
	}

	root := &cobra.Command{
		Use:           "walletscope",
		Short:         "Replay wallet sessions against the walletscope collector",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.walletscope/config.toml)")
	flags.StringVar(&c.cfg.APIKey, "api-key", c.cfg.APIKey, "API key for the collector")
	flags.StringVar(&c.cfg.URL, "url", c.cfg.URL, "collector base URL")
	flags.StringVar(&c.cfg.StateDir, "state-dir", c.cfg.StateDir, "directory for the cached identity (default: $HOME/.walletscope)")
	flags.DurationVar(&c.cfg.HTTPTimeout, "timeout", c.cfg.HTTPTimeout, "HTTP timeout")
	flags.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&c.cfg.MetricsAddr, "metrics-addr", c.cfg.MetricsAddr, "serve Prometheus metrics on this address")
	flags.BoolVar(&c.cfg.CacheIdentity, "cache-identity", c.cfg.CacheIdentity, "cache the device identity in state-dir")
	flags.BoolVar(&c.cfg.TrackPages, "track-pages", c.cfg.TrackPages, "track page views")
	flags.BoolVar(&c.cfg.TrackWalletConnections, "track-wallet-connections", c.cfg.TrackWalletConnections, "track wallet connections")
	flags.BoolVar(&c.cfg.TrackChainChanges, "track-chain-changes", c.cfg.TrackChainChanges, "track chain changes")
	flags.BoolVar(&c.cfg.TrackTransactions, "track-transactions", c.cfg.TrackTransactions, "track transaction requests")
	flags.BoolVar(&c.cfg.TrackSigning, "track-signing", c.cfg.TrackSigning, "track signing requests")
	flags.BoolVar(&c.cfg.TrackClicks, "track-clicks", c.cfg.TrackClicks, "track clicks")

	root.AddCommand(newIdentifyCmd(c), newReplayCmd(c))

	if err := root.Execute(); err != nil {
		c.log.Error().Err(err).Msg("walletscope")
		os.Exit(1)
	}
}

// load layers the config file, WALLETSCOPE_* variables and explicit flags,
// then validates the result. It returns the config file path in use.
func (c *cli) load(cmd *cobra.Command) (string, error) {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return "", fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return "", err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return "", err
	}

	if err := c.cfg.Validate(); err != nil {
		return "", err
	}

	c.log = c.log.Level(c.cfg.Level())

	logCfg := c.cfg
	if len(logCfg.APIKey) > 0 {
		logCfg.APIKey = "*****"
	}
	c.log.Debug().Interface("config", logCfg).Msg("configuration")

	return cfgFile, nil
}

func (c *cli) logger() log.Logger {
	return log.NewZerologLogger(c.log)
}
