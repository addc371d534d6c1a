// Package pipeline runs search queries through a serp.Client and keeps an
// audit trail of how each one ended.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/FranksOps/serpkit/internal/metrics"
	"github.com/FranksOps/serpkit/internal/serp"
	"github.com/FranksOps/serpkit/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Runner executes queries and records one storage.Record per query.
// Backend and Logger are optional.
type Runner struct {
	Client  *serp.Client
	Backend storage.Backend
	Logger  *slog.Logger
	// Metrics toggles Prometheus updates.
	Metrics bool
}

// Result pairs a query's page (nil unless it succeeded) with its record.
type Result struct {
	Page   *serp.Page
	Record *storage.Record
	Err    error
}

type probeKey struct{}

// probe receives the raw response details that serp.Client does not expose.
type probe struct {
	status int
	bytes  int
}

// Observe wraps t so that a Runner can see status codes and body sizes of
// the responses it classifies. Clients built without it still work; their
// records just lack the status of captcha pages and the byte counts.
func Observe(t serp.Transport) serp.Transport {
	return serp.TransportFunc(func(ctx context.Context, req *serp.Request) (*serp.Response, error) {
		resp, err := t.Send(ctx, req)
		if p, ok := ctx.Value(probeKey{}).(*probe); ok && resp != nil {
			p.status = resp.StatusCode
			p.bytes = len(resp.Body)
		}
		return resp, err
	})
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Run queries u once and records the outcome. The returned error is the
// client's error for the query; a failure to save the record is logged and
// does not replace it.
func (r *Runner) Run(ctx context.Context, u serp.URL) (*serp.Page, *storage.Record, error) {
	if r.Client == nil {
		return nil, nil, errors.New("pipeline: runner has no client")
	}

	p := &probe{}
	start := time.Now()
	page, err := r.Client.Query(context.WithValue(ctx, probeKey{}, p), u)

	rec := &storage.Record{
		ID:         uuid.NewString(),
		URL:        u.String(),
		SearchTerm: u.SearchTerm(),
		StatusCode: p.status,
		Duration:   time.Since(start),
		CreatedAt:  start.UTC(),
	}
	classify(rec, page, err)

	log := r.logger().With("id", rec.ID, "url", rec.URL, "outcome", rec.Outcome)
	if err != nil {
		log.Warn("query failed", "status", rec.StatusCode, "err", err)
	} else {
		log.Info("query succeeded", "results", rec.ResultCount, "duration", rec.Duration)
	}

	if r.Metrics {
		metrics.RecordQuery(u.Host, rec, p.bytes)
	}

	if r.Backend != nil {
		if serr := r.Backend.Save(ctx, rec); serr != nil {
			log.Error("failed to save query record", "err", serr)
		}
	}

	return page, rec, err
}

// classify fills the outcome fields of rec from what Client.Query returned.
func classify(rec *storage.Record, page *serp.Page, err error) {
	var captchaErr *serp.CaptchaError
	var invalidErr *serp.InvalidResponseError

	switch {
	case err == nil:
		rec.Outcome = storage.OutcomePage
		if rec.StatusCode == 0 {
			rec.StatusCode = 200
		}
		if page != nil {
			rec.ResultCount = len(page.Results)
		}
		return
	case errors.As(err, &captchaErr):
		rec.Outcome = storage.OutcomeCaptcha
		if c := captchaErr.Captcha; c != nil {
			rec.DetectedIP = c.DetectedIP
			rec.CaptchaSource = c.Source
		}
	case errors.As(err, &invalidErr):
		rec.Outcome = storage.OutcomeInvalidResponse
		rec.StatusCode = invalidErr.StatusCode
	default:
		rec.Outcome = storage.OutcomeTransportError
		rec.StatusCode = 0
	}
	rec.Error = err.Error()
}

// RunBatch runs every URL with at most concurrency queries in flight and
// returns the results in input order. Per-query failures are carried in
// Result.Err; the returned error is only set when ctx is cancelled.
func (r *Runner) RunBatch(ctx context.Context, urls []serp.URL, concurrency int) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]Result, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			page, rec, err := r.Run(gctx, u)
			results[i] = Result{Page: page, Record: rec, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("pipeline: batch interrupted: %w", err)
	}
	return results, nil
}
