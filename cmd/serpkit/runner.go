package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/FranksOps/serpkit/internal/metrics"
	"github.com/FranksOps/serpkit/internal/pipeline"
	"github.com/FranksOps/serpkit/internal/serp"
	"github.com/FranksOps/serpkit/pkg/useragent"
	"github.com/spf13/cobra"
)

// queryFlags are the search URL fields settable from the command line.
type queryFlags struct {
	lang          string
	interfaceLang string
	country       string
	num           int
	page          int
	safe          string
	resultType    string
	noAutocorrect bool
}

func (q *queryFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&q.lang, "lang", "", "Restrict results to a language (lr=lang_<code>)")
	f.StringVar(&q.interfaceLang, "hl", "", "Interface language (hl)")
	f.StringVar(&q.country, "country", "", "Restrict results to a country (cr)")
	f.IntVar(&q.num, "num", 0, "Results per page")
	f.IntVar(&q.page, "page", 0, "Result page, starting at 1")
	f.StringVar(&q.safe, "safe", "", "SafeSearch: off, medium, active")
	f.StringVar(&q.resultType, "type", "", "Result type: isch, nws, vid, bks")
	f.BoolVar(&q.noAutocorrect, "no-autocorrect", false, "Disable automatic spelling correction")
}

// buildURL turns a search term or a full search URL into a serp.URL with the
// flag overrides applied.
func (q *queryFlags) buildURL(arg string) (serp.URL, error) {
	var u serp.URL
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		parsed, err := serp.ParseURL(arg)
		if err != nil {
			return serp.URL{}, err
		}
		u = parsed
	} else {
		u = serp.NewURL()
		u.Host = cfg.Search.Host
		u.SetSearchTerm(arg)
	}

	if q.lang != "" {
		u.SetLanguageRestriction(q.lang)
	}
	if q.interfaceLang != "" {
		u.SetInterfaceLanguage(q.interfaceLang)
	}
	if q.country != "" {
		u.SetCountryRestriction(q.country)
	}
	if q.num > 0 {
		u.SetResultsPerPage(q.num)
	}
	if q.page > 0 {
		u.SetPage(q.page)
	}
	if q.safe != "" {
		u.SetSafeSearch(q.safe)
	}
	if q.resultType != "" {
		u.SetResultType(q.resultType)
	}
	if q.noAutocorrect {
		u.SetAutoCorrectionEnabled(false)
	}
	return u, nil
}

// newRunner wires transport, client, storage and metrics from cfg. The
// returned cleanup must be called once the runner is no longer used.
func newRunner(ctx context.Context) (*pipeline.Runner, func(), error) {
	tr, err := cfg.Transport.NewTransport(logger)
	if err != nil {
		return nil, nil, err
	}

	client := serp.NewClient(pipeline.Observe(tr), serp.WithLogger(logger))
	rb := client.RequestBuilder()
	rb.SetDefaultAcceptLanguage(cfg.Search.AcceptLanguage)
	rb.SetAcceptLanguageFromURL(cfg.Search.HonorURLLanguage)
	if ua := useragent.Resolve(cfg.Search.UserAgent); ua != "" {
		if err := rb.SetUserAgent(ua); err != nil {
			return nil, nil, err
		}
	}

	backend, err := cfg.Storage.OpenBackend(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	var srv *metrics.Server
	if cfg.Metrics.Addr != "" {
		srv = metrics.Start(cfg.Metrics.Addr, logger)
	}

	cleanup := func() {
		if backend != nil {
			if err := backend.Close(); err != nil {
				logger.Error("failed to close storage", "err", err)
			}
		}
		if err := srv.Stop(context.Background()); err != nil {
			logger.Error("failed to stop metrics server", "err", err)
		}
	}

	return &pipeline.Runner{
		Client:  client,
		Backend: backend,
		Logger:  logger,
		Metrics: srv != nil,
	}, cleanup, nil
}
