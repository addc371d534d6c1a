package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/FranksOps/serpkit/internal/report"
	"github.com/FranksOps/serpkit/internal/storage"
	"github.com/spf13/cobra"
)

var (
	reportFormat  string
	reportSince   time.Duration
	reportOutcome string
	reportURL     string
	reportLimit   int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarise recorded queries from the storage backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := cfg.Storage.OpenBackend(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		if backend == nil {
			return errors.New("report needs a storage backend (--storage and --dsn)")
		}
		defer backend.Close()

		filter := storage.Filter{
			URL:     reportURL,
			Outcome: storage.Outcome(reportOutcome),
			Limit:   reportLimit,
		}
		if reportSince > 0 {
			since := time.Now().Add(-reportSince)
			filter.Since = &since
		}

		records, err := backend.Query(cmd.Context(), filter)
		if err != nil {
			return err
		}
		summary := report.GenerateSummary(records)

		out := cmd.OutOrStdout()
		switch reportFormat {
		case "text":
			return report.WriteText(out, summary)
		case "json":
			return report.WriteJSON(out, summary)
		case "html":
			return report.WriteHTML(out, summary)
		default:
			return fmt.Errorf("unknown report format %q", reportFormat)
		}
	},
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&reportFormat, "format", "f", "text", "Output format: text, json, html")
	f.DurationVar(&reportSince, "since", 0, "Only include records newer than this, e.g. 24h")
	f.StringVar(&reportOutcome, "outcome", "", "Only include one outcome: page, captcha, invalid_response, transport_error")
	f.StringVar(&reportURL, "url", "", "Only include records for this exact URL")
	f.IntVar(&reportLimit, "limit", 0, "Only include the most recent N records")
}
