// Package serp builds search engine queries, sends them through a pluggable
// Transport and classifies what comes back as a result page, a captcha
// challenge, or an invalid response.
package serp

import (
	"context"
	"errors"
	"log/slog"
)

// Option configures a Client.
type Option func(*Client)

// WithClassifier replaces the default Google classifier.
func WithClassifier(c *Classifier) Option {
	return func(cl *Client) {
		if c != nil {
			cl.classifier = c
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// WithRequestBuilder makes the client use b instead of a fresh builder.
func WithRequestBuilder(b *RequestBuilder) Option {
	return func(cl *Client) {
		if b != nil {
			cl.request = b
		}
	}
}

// Client runs one build/send/classify pass per Query call. It keeps no state
// between calls other than its RequestBuilder.
type Client struct {
	transport  Transport
	request    *RequestBuilder
	classifier *Classifier
	logger     *slog.Logger
}

// NewClient creates a Client that sends requests through t.
func NewClient(t Transport, opts ...Option) *Client {
	c := &Client{
		transport:  t,
		request:    NewRequestBuilder(),
		classifier: NewClassifier(nil, nil, nil),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestBuilder returns the builder owned by c. The same pointer is returned
// on every call, so configuration changes apply to subsequent queries.
func (c *Client) RequestBuilder() *RequestBuilder {
	return c.request
}

// Query searches for u and returns the parsed result page.
//
// A captcha page yields a *CaptchaError, any other non-page response an
// *InvalidResponseError. Errors from the Transport are returned as-is.
func (c *Client) Query(ctx context.Context, u URL) (*Page, error) {
	if c.transport == nil {
		return nil, errors.New("serp: client has no transport")
	}

	req := c.request.BuildRequest(u.Clone())
	c.logger.Debug("sending search request", "url", req.URL, "accept_language", req.Header.Get("Accept-Language"))

	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("serp: transport returned no response")
	}
	if resp.RequestedURL.IsZero() {
		resp.RequestedURL = u.Clone()
	}

	outcome, err := c.classifier.Classify(resp)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("classified search response", "url", req.URL, "status", resp.StatusCode, "outcome", outcome.Kind.String())

	if outcome.Kind != OutcomePage {
		return nil, outcome.Err()
	}
	return outcome.Page, nil
}
