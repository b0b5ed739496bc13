package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/cine-khobor/internal/app"
)

func newCacheCmd(opts *rootOptions) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Drop expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				n, err := a.Search.PurgeCache()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entries\n", n)
				return nil
			})
		},
	})
	return cacheCmd
}
