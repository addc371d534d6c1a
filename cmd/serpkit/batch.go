package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/FranksOps/serpkit/internal/pipeline"
	"github.com/FranksOps/serpkit/internal/report"
	"github.com/FranksOps/serpkit/internal/serp"
	"github.com/FranksOps/serpkit/internal/storage"
	"github.com/spf13/cobra"
)

var (
	batchOpts    queryFlags
	batchSummary bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <file|->",
	Short: "Run every search term or URL listed in a file, one per line",
	Long: `Batch reads one search term or search URL per line ("-" reads stdin).
Blank lines and lines starting with # are skipped. Queries run concurrently
(--concurrency) and each one is recorded to the configured storage backend.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, closeIn, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer closeIn()

		urls, err := readQueries(in, &batchOpts)
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			return fmt.Errorf("no queries in %s", args[0])
		}

		runner, cleanup, err := newRunner(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		results, err := runner.RunBatch(cmd.Context(), urls, cfg.Batch.Concurrency)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		records := writeBatch(out, results)

		if batchSummary {
			fmt.Fprintln(out)
			if err := report.WriteText(out, report.GenerateSummary(records)); err != nil {
				return err
			}
		}

		if failed := countFailed(results); failed > 0 {
			return fmt.Errorf("%d of %d queries failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	batchOpts.register(batchCmd)
	batchCmd.Flags().Int("concurrency", 4, "Maximum queries in flight")
	batchCmd.Flags().BoolVar(&batchSummary, "summary", false, "Print a summary after the run")
}

func openInput(name string) (io.Reader, func(), error) {
	if name == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open query file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func readQueries(r io.Reader, opts *queryFlags) ([]serp.URL, error) {
	var urls []serp.URL
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		u, err := opts.buildURL(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		urls = append(urls, u)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queries: %w", err)
	}
	return urls, nil
}

// writeBatch prints one tab-separated line per result and returns the
// records in input order.
func writeBatch(w io.Writer, results []pipeline.Result) []*storage.Record {
	records := make([]*storage.Record, 0, len(results))
	for _, res := range results {
		rec := res.Record
		if rec == nil {
			continue
		}
		records = append(records, rec)
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", rec.Outcome, rec.StatusCode, rec.ResultCount, rec.SearchTerm)
	}
	return records
}

func countFailed(results []pipeline.Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
