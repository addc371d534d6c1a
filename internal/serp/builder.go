package serp

import (
	"net/http"
)

// DefaultAcceptLanguage is sent when neither the URL nor the configuration
// supplies a language.
const DefaultAcceptLanguage = "en"

// Request describes an outbound HTTP request. It is built fresh for every
// query and must not be modified once handed to a Transport.
type Request struct {
	Method string
	URL    string
	// Header keys are canonicalised, so lookups through Get/Values are
	// case-insensitive.
	Header http.Header
}

// RequestBuilder turns URLs into Requests and owns the header negotiation
// policy. It is not safe for concurrent mutation; callers sharing a Client
// across goroutines must synchronise configuration changes themselves.
type RequestBuilder struct {
	userAgent             *string
	defaultAcceptLanguage string
	acceptLanguageFromURL bool
}

// NewRequestBuilder returns a builder with no user-agent override, a default
// Accept-Language of "en", and URL language restrictions honoured.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		defaultAcceptLanguage: DefaultAcceptLanguage,
		acceptLanguageFromURL: true,
	}
}

// SetUserAgent sets the User-Agent override. v must be a string, a *string,
// or nil; nil (or a nil *string) removes the override. Any other type yields
// an *InvalidConfigurationError and leaves the current value in place.
func (b *RequestBuilder) SetUserAgent(v any) error {
	switch ua := v.(type) {
	case nil:
		b.userAgent = nil
	case string:
		b.userAgent = &ua
	case *string:
		if ua == nil {
			b.userAgent = nil
			return nil
		}
		s := *ua
		b.userAgent = &s
	default:
		return &InvalidConfigurationError{Setting: "user agent", Value: v}
	}
	return nil
}

// UserAgent returns the override and whether one is set.
func (b *RequestBuilder) UserAgent() (string, bool) {
	if b.userAgent == nil {
		return "", false
	}
	return *b.userAgent, true
}

// SetDefaultAcceptLanguage sets the fallback Accept-Language. An empty code
// restores DefaultAcceptLanguage so that every request carries the header.
func (b *RequestBuilder) SetDefaultAcceptLanguage(code string) {
	if code == "" {
		code = DefaultAcceptLanguage
	}
	b.defaultAcceptLanguage = code
}

func (b *RequestBuilder) DefaultAcceptLanguage() string {
	return b.defaultAcceptLanguage
}

// SetAcceptLanguageFromURL controls whether a URL's language restriction
// takes precedence over the default Accept-Language.
func (b *RequestBuilder) SetAcceptLanguageFromURL(enabled bool) {
	b.acceptLanguageFromURL = enabled
}

func (b *RequestBuilder) AcceptLanguageFromURL() bool {
	return b.acceptLanguageFromURL
}

// AcceptLanguage returns the Accept-Language value that BuildRequest would
// send for u.
func (b *RequestBuilder) AcceptLanguage(u URL) string {
	if b.acceptLanguageFromURL {
		if lr, ok := u.LanguageRestriction(); ok {
			return lr
		}
	}
	return b.defaultAcceptLanguage
}

// BuildRequest creates a GET request for u using the current configuration.
func (b *RequestBuilder) BuildRequest(u URL) *Request {
	h := make(http.Header)
	h.Set("Accept-Language", b.AcceptLanguage(u))
	if ua, ok := b.UserAgent(); ok {
		h.Set("User-Agent", ua)
	}
	return &Request{
		Method: http.MethodGet,
		URL:    u.String(),
		Header: h,
	}
}
