package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/cine-khobor/internal/app"
	"github.com/Adda-Baaj/cine-khobor/internal/config"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "cinekhobor",
		Short: "Movie and entertainment news, filtered for relevance",
		Long: `cinekhobor searches NewsAPI for movie news, drops political, sports and
finance noise, and shows what is left as cards.

Example usage:
  cinekhobor serve                    # Web UI on server.addr
  cinekhobor search dune part two     # One-shot search printed to stdout
  cinekhobor cache purge              # Drop expired cache entries`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml)")

	root.AddCommand(
		newServeCmd(opts),
		newSearchCmd(opts),
		newCacheCmd(opts),
	)
	return root
}

// withApp loads configuration, builds the app and hands it to fn.
func withApp(ctx context.Context, opts *rootOptions, fn func(*app.App) error) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
