package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/cine-khobor/internal/app"
	"github.com/Adda-Baaj/cine-khobor/internal/render"
	"github.com/Adda-Baaj/cine-khobor/internal/search"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		refresh bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search once and print the cards",
		Long: `Search once and print the relevant articles.

With no query the configured default (search.default_query) is used.
--refresh skips the cache lookup and stores the new result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				query := strings.Join(args, " ")
				if len(args) == 0 {
					query = a.Config.Search.DefaultQuery
				}

				run := a.Search.Search
				if refresh {
					run = a.Search.Refresh
				}
				res, err := run(cmd.Context(), query)

				out := cmd.OutOrStdout()
				if asJSON {
					return printJSON(out, res, err)
				}
				printCards(out, res, err)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache for this search")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print cards as JSON")
	return cmd
}

func printCards(w io.Writer, res search.Result, err error) {
	if err != nil {
		fmt.Fprintln(w, render.Failure(err).Text)
	}
	fmt.Fprintln(w, render.Summary(len(res.Articles), res.Query).Text)

	for _, c := range render.CardsFor(res.Articles) {
		fmt.Fprintln(w)
		fmt.Fprintln(w, c.Title)
		fmt.Fprintf(w, "  %s • %s\n", c.SourceName, c.Date)
		fmt.Fprintf(w, "  %s\n", c.Description)
		if c.ImageURL != "" {
			fmt.Fprintf(w, "  image: %s\n", c.ImageURL)
		}
		fmt.Fprintf(w, "  %s\n", c.URL)
	}
}

func printJSON(w io.Writer, res search.Result, err error) error {
	payload := struct {
		Query        string        `json:"query"`
		BoostedQuery string        `json:"boosted_query"`
		FromCache    bool          `json:"from_cache"`
		Articles     []render.Card `json:"articles"`
		Error        string        `json:"error,omitempty"`
	}{
		Query:        res.Query,
		BoostedQuery: res.BoostedQuery,
		FromCache:    res.FromCache,
		Articles:     render.CardsFor(res.Articles),
	}
	if err != nil {
		payload.Error = render.Failure(err).Text
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(payload); encErr != nil {
		return encErr
	}
	return err
}
