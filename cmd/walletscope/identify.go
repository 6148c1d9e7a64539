package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/bft-labs/walletscope/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/walletscope/internal/adapters/http"
	"github.com/bft-labs/walletscope/internal/app"
	"github.com/bft-labs/walletscope/pkg/walletscope"
)

func newIdentifyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "identify",
		Short: "Resolve and cache the device identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.load(cmd); err != nil {
				return err
			}

			storage, err := fs.NewFileStorage(c.cfg.StateDir)
			if err != nil {
				return err
			}

			logger := c.logger()
			poster := httpAdapter.NewPoster(&http.Client{Timeout: c.cfg.HTTPTimeout}, logger, walletscope.Version, walletscope.DefaultLibraryType)
			resolver := app.NewIdentityResolver(storage, poster, c.cfg.URL, c.cfg.APIKey, logger)

			id, err := resolver.Resolve(cmd.Context(), c.cfg.CacheIdentity)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
