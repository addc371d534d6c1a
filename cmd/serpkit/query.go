package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/FranksOps/serpkit/internal/serp"
	"github.com/spf13/cobra"
)

var (
	queryOpts   queryFlags
	queryOutput string
)

var queryCmd = &cobra.Command{
	Use:   "query <term|url>",
	Short: "Run one search and print the results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := queryOpts.buildURL(args[0])
		if err != nil {
			return err
		}

		runner, cleanup, err := newRunner(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		page, _, err := runner.Run(cmd.Context(), u)
		if err != nil {
			return err
		}
		return writePage(cmd.OutOrStdout(), page, queryOutput)
	},
}

func init() {
	queryOpts.register(queryCmd)
	queryCmd.Flags().StringVarP(&queryOutput, "output", "o", "text", "Output format: text or json")
}

func writePage(w io.Writer, page *serp.Page, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	case "text":
		fmt.Fprintf(w, "%s\n", page.URL.String())
		if page.TotalResults > 0 {
			fmt.Fprintf(w, "about %d results\n", page.TotalResults)
		}
		fmt.Fprintln(w)
		for _, r := range page.Results {
			fmt.Fprintf(w, "%2d. %s\n    %s\n", r.Position, r.Title, r.URL)
			if r.Snippet != "" {
				fmt.Fprintf(w, "    %s\n", r.Snippet)
			}
		}
		if len(page.RelatedSearches) > 0 {
			fmt.Fprintln(w, "\nrelated:")
			for _, s := range page.RelatedSearches {
				fmt.Fprintf(w, "  %s\n", s)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
