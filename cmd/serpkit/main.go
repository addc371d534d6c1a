package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/FranksOps/serpkit/internal/config"
	"github.com/FranksOps/serpkit/internal/serp"
	"github.com/spf13/cobra"
)

// Exit codes distinguish how a query failed.
const (
	exitFailure         = 1
	exitCaptcha         = 2
	exitInvalidResponse = 3
)

var (
	configFile string

	cfg    *config.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "serpkit",
	Short: "Query search engines and audit how they answer",
	Long: `serpkit sends search queries to Google, parses the result pages and
recognises captcha interstitials.

Every query is classified as a page, a captcha or an invalid response and can
be recorded to sqlite, postgres, NDJSON or CSV for later reporting.

Settings come from --config, then SERPKIT_* environment variables, then flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile, cmd.Flags())
		if err != nil {
			return err
		}
		logger, err = cfg.Log.NewLogger(os.Stderr)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, serp.ErrCaptcha):
		return exitCaptcha
	case errors.Is(err, serp.ErrInvalidResponse):
		return exitInvalidResponse
	default:
		return exitFailure
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Configuration file (yaml, json or toml)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text or json")

	pf.String("host", "www.google.com", "Search engine host used for bare search terms")
	pf.String("accept-language", "en", "Default Accept-Language")
	pf.Bool("honor-url-language", true, "Send the URL's language restriction as Accept-Language")
	pf.String("user-agent", "", "User-Agent override: a preset name or a literal string")

	pf.Duration("timeout", 0, "Request timeout")
	pf.Int("max-redirects", 10, "Maximum redirects to follow (negative disables)")
	pf.String("fingerprint", "chrome", "TLS fingerprint: chrome, firefox, safari, go, random")
	pf.String("proxy", "", "Proxy URL for all requests")
	pf.Int64("max-body-bytes", 0, "Maximum response body size to read")

	pf.String("storage", "none", "Record backend: none, sqlite, postgres, json, csv")
	pf.String("dsn", "", "Backend DSN or file path")
	pf.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	rootCmd.AddCommand(queryCmd, searchCmd, batchCmd, reportCmd, presetsCmd)
}
