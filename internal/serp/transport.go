package serp

import (
	"context"
	"net/http"
)

// Transport sends a Request and returns the raw response. Errors returned by
// a Transport are network-level failures; Client passes them through
// untouched. Timeouts and cancellation are the Transport's concern.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

func (f TransportFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Response is what a Transport hands back. Body is populated for every status
// code since captcha and error detection both read it.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Binary is set when the body is not text (e.g. an image content type).
	Binary bool
	// RequestedURL is the URL that was sent; EffectiveURL is where the
	// transport ended up after following redirects.
	RequestedURL URL
	EffectiveURL URL
	Metadata     map[string]string
}

// URL returns EffectiveURL, falling back to RequestedURL when the transport
// did not report one.
func (r *Response) URL() URL {
	if !r.EffectiveURL.IsZero() {
		return r.EffectiveURL
	}
	return r.RequestedURL
}
