package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FranksOps/serpkit/internal/serp"
	"github.com/spf13/cobra"
)

var (
	searchOpts   queryFlags
	searchLimit  int
	searchOutput string
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Collect up to --limit results for a term across result pages",
	Long: `Search pages through results until --limit organic results are collected
or a page comes back empty. Each page is a separate, recorded query. On error
the results gathered so far are printed before the error is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := searchOpts.buildURL(args[0])
		if err != nil {
			return err
		}

		runner, cleanup, err := newRunner(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		g := &serp.GoogleSearch{
			Base: base,
			Query: func(ctx context.Context, u serp.URL) (*serp.Page, error) {
				page, _, err := runner.Run(ctx, u)
				return page, err
			},
		}
		results, searchErr := g.Search(cmd.Context(), base.SearchTerm(), searchLimit)

		out := cmd.OutOrStdout()
		switch searchOutput {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return err
			}
		case "text":
			for _, r := range results {
				fmt.Fprintf(out, "%3d. %s\n     %s\n", r.Position, r.Title, r.URL)
			}
		default:
			return fmt.Errorf("unknown output format %q", searchOutput)
		}
		return searchErr
	},
}

func init() {
	searchOpts.register(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 30, "Number of results to collect")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "text", "Output format: text or json")
}
