// Package transport sends serp requests over the network.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FranksOps/serpkit/internal/fingerprint"
	"github.com/FranksOps/serpkit/internal/serp"
	"github.com/FranksOps/serpkit/pkg/httpclient"
)

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes int64 = 8 << 20

// ErrBodyTooLarge is returned when a response body exceeds MaxBodyBytes.
var ErrBodyTooLarge = errors.New("response body too large")

// Config configures an HTTP transport.
type Config struct {
	Timeout      time.Duration
	MaxRedirects int
	Fingerprint  fingerprint.Profile
	// ProxyURL routes all traffic through one proxy, e.g. "http://host:3128".
	ProxyURL     string
	MaxBodyBytes int64
	// InsecureSkipVerify disables certificate checks. Tests only.
	InsecureSkipVerify bool
	Logger             *slog.Logger
}

// HTTP is a serp.Transport backed by net/http with a fingerprinted TLS
// handshake. It keeps no cookies or other state between requests beyond the
// connection pool.
type HTTP struct {
	client  *httpclient.Client
	maxBody int64
	logger  *slog.Logger
}

var _ serp.Transport = (*HTTP)(nil)

// New creates an HTTP transport.
func New(cfg Config) (*HTTP, error) {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}

	opts := fingerprint.Options{InsecureSkipVerify: cfg.InsecureSkipVerify}
	if cfg.ProxyURL != "" {
		u, err := url.Parse(cfg.ProxyURL)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy url %q", cfg.ProxyURL)
		}
		opts.Proxy = u
	}

	rt, err := fingerprint.Transport(cfg.Fingerprint, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to setup transport: %w", err)
	}

	return &HTTP{
		client: httpclient.New(httpclient.Config{
			Timeout:      cfg.Timeout,
			MaxRedirects: cfg.MaxRedirects,
			Transport:    rt,
		}),
		maxBody: cfg.MaxBodyBytes,
		logger:  cfg.Logger,
	}, nil
}

// Send performs req and returns the response with its full body, whatever
// the status code.
func (t *HTTP) Send(ctx context.Context, req *serp.Request) (*serp.Response, error) {
	requested, err := serp.ParseURL(req.URL)
	if err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vals := range req.Header {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := t.client.Do(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(body)) > t.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrBodyTooLarge, t.maxBody, req.URL)
	}

	effective := requested
	if resp.Request != nil && resp.Request.URL != nil {
		if u, err := serp.ParseURL(resp.Request.URL.String()); err == nil {
			effective = u
		}
	}

	t.logger.Debug("search response received",
		"url", req.URL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)

	return &serp.Response{
		StatusCode:   resp.StatusCode,
		Header:       resp.Header,
		Body:         body,
		Binary:       isBinary(resp.Header.Get("Content-Type")),
		RequestedURL: requested,
		EffectiveURL: effective,
		Metadata: map[string]string{
			"protocol": resp.Proto,
			"duration": time.Since(start).String(),
		},
	}, nil
}

// isBinary reports whether a content type is something other than text.
// A missing content type is treated as text.
func isBinary(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch {
	case strings.HasPrefix(mediaType, "text/"),
		strings.HasSuffix(mediaType, "+xml"),
		strings.HasSuffix(mediaType, "+json"),
		mediaType == "application/json",
		mediaType == "application/xml",
		mediaType == "application/javascript":
		return false
	}
	return true
}
