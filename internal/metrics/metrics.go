package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/FranksOps/serpkit/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serpkit_queries_total",
			Help: "Total number of search queries executed, by outcome",
		},
		[]string{"host", "outcome", "status"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "serpkit_query_duration_seconds",
			Help:    "Duration of search queries in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"host"},
	)

	ResponseBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serpkit_response_bytes_total",
			Help: "Total response body bytes received",
		},
		[]string{"host"},
	)

	CaptchaTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serpkit_captcha_total",
			Help: "Total number of captcha interstitials encountered",
		},
		[]string{"host", "source"},
	)
)

// RecordQuery updates the metrics for one audited query against host.
// bodyBytes is the size of the response body, 0 when none arrived.
func RecordQuery(host string, rec *storage.Record, bodyBytes int) {
	if rec == nil {
		return
	}

	status := strconv.Itoa(rec.StatusCode)
	if rec.Outcome == storage.OutcomeTransportError {
		status = "error"
	}

	QueriesTotal.WithLabelValues(host, string(rec.Outcome), status).Inc()
	QueryDuration.WithLabelValues(host).Observe(rec.Duration.Seconds())
	ResponseBytesTotal.WithLabelValues(host).Add(float64(bodyBytes))

	if rec.Outcome == storage.OutcomeCaptcha {
		CaptchaTotal.WithLabelValues(host, rec.CaptchaSource).Inc()
	}
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on addr (e.g. ":9090") and exposes /metrics.
func Start(addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		// Suppress the error from intentional shutdown
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "err", err)
		}
	}()

	logger.Info("metrics server listening", "addr", addr)
	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
