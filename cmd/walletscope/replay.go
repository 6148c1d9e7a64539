package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bft-labs/walletscope/internal/scenario"
	"github.com/bft-labs/walletscope/pkg/walletscope"
	"github.com/bft-labs/walletscope/plugins/configwatcher"
)

func newReplayCmd(c *cli) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Replay a YAML scenario against the collector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, err := c.load(cmd)
			if err != nil {
				return err
			}

			s, err := scenario.Load(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts := []walletscope.Option{
				walletscope.WithLogger(c.logger()),
				walletscope.WithStateDir(c.cfg.StateDir),
			}

			if c.cfg.MetricsAddr != "" {
				reg := prometheus.NewRegistry()
				opts = append(opts, walletscope.WithMetricsRegisterer(reg))
				srv := serveMetrics(c, reg)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			if watch {
				opts = append(opts, configwatcher.WithDefaultConfigWatcher(cfgFile))
			}

			h := scenario.NewHost(s)
			opts = append(opts,
				walletscope.WithWindow(h.Window),
				walletscope.WithProvider(h.ProviderOrNil()),
			)

			client, err := walletscope.New(ctx, c.cfg.Library(), opts...)
			if err != nil {
				return fmt.Errorf("create client: %w", err)
			}
			defer client.Close()

			c.log.Info().
				Str("scenario", s.Name).
				Str("identity", client.IdentityID()).
				Str("session", client.SessionID()).
				Msg("replay started")

			res, err := scenario.NewRunner(client, h, c.logger()).Run(ctx, s)
			if err != nil {
				return fmt.Errorf("replay %s: %w", s.Name, err)
			}

			c.log.Info().
				Int("steps", res.Steps).
				Int("expectedFailures", len(res.Errors)).
				Msg("replay finished")

			if watch {
				c.log.Info().Msg("watching config, press Ctrl+C to stop")
				<-ctx.Done()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and apply tracking changes from the config file")
	return cmd
}

func serveMetrics(c *cli, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              c.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.log.Error().Err(err).Msg("metrics server")
		}
	}()
	c.log.Info().Str("addr", c.cfg.MetricsAddr).Msg("serving metrics")
	return srv
}
