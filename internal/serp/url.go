package serp

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultScheme = "https"
	DefaultHost   = "www.google.com"
	DefaultPath   = "/search"

	defaultResultsPerPage = 10
	languagePrefix        = "lang_"
	countryPrefix         = "country"
)

// Query parameter names understood by URL.
const (
	ParamSearchTerm          = "q"
	ParamLanguageRestriction = "lr"
	ParamInterfaceLanguage   = "hl"
	ParamCountryRestriction  = "cr"
	ParamResultsPerPage      = "num"
	ParamStart               = "start"
	ParamSafeSearch          = "safe"
	ParamNoAutoCorrection    = "nfpr"
	ParamResultType          = "tbm"
)

// Values accepted by SetResultType.
const (
	ResultTypeAll    = ""
	ResultTypeImages = "isch"
	ResultTypeNews   = "nws"
	ResultTypeVideos = "vid"
	ResultTypeBooks  = "bks"
)

// Values accepted by SetSafeSearch.
const (
	SafeSearchOff    = "off"
	SafeSearchMedium = "medium"
	SafeSearchStrict = "active"
)

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string

	// raw is the segment as it appeared in the parsed query string. It is
	// written back unchanged until a setter replaces the parameter.
	raw string
}

func (p Param) encode() string {
	if p.raw != "" {
		return p.raw
	}
	return url.QueryEscape(p.Key) + "=" + url.QueryEscape(p.Value)
}

// URL is a search endpoint plus an ordered set of query parameters. Parsed
// parameters keep their original encoding, and repeated keys stay separate
// entries. Setting a key replaces its first occurrence in place and drops
// the rest.
//
// Setters use pointer receivers and mutate the caller's value. The query
// pipeline only ever reads URLs.
type URL struct {
	Scheme string
	Host   string
	// Path is stored escaped, exactly as it appears in the serialized form.
	Path     string
	Fragment string

	params []Param
}

// NewURL returns a URL pointing at the default Google search endpoint with no
// parameters.
func NewURL() URL {
	return URL{
		Scheme: DefaultScheme,
		Host:   DefaultHost,
		Path:   DefaultPath,
	}
}

// ParseURL parses an absolute http(s) URL. Every parameter is kept verbatim
// and in order, including bare keys and repeated keys.
func ParseURL(raw string) (URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URL{}, &MalformedURLError{Input: raw, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return URL{}, &MalformedURLError{Input: raw, Err: errors.New("scheme must be http or https")}
	}
	if u.Host == "" {
		return URL{}, &MalformedURLError{Input: raw, Err: errors.New("missing host")}
	}

	out := URL{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     u.EscapedPath(),
		Fragment: u.EscapedFragment(),
	}

	if u.RawQuery == "" {
		return out, nil
	}
	for _, seg := range strings.Split(u.RawQuery, "&") {
		if seg == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(seg, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return URL{}, &MalformedURLError{Input: raw, Err: err}
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return URL{}, &MalformedURLError{Input: raw, Err: err}
		}
		out.params = append(out.params, Param{Key: key, Value: value, raw: seg})
	}
	return out, nil
}

// MustParseURL is like ParseURL but panics on error. Intended for tests and
// package-level literals.
func MustParseURL(raw string) URL {
	u, err := ParseURL(raw)
	if err != nil {
		panic(err)
	}
	return u
}

// String serializes the URL. Parameters are form encoded in insertion order.
func (u URL) String() string {
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	b.WriteString(u.Host)
	b.WriteString(u.Path)
	if len(u.params) > 0 {
		b.WriteByte('?')
		b.WriteString(u.RawQuery())
	}
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.Fragment)
	}
	return b.String()
}

// MarshalText encodes u as its String form.
func (u URL) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText parses text with ParseURL.
func (u *URL) UnmarshalText(text []byte) error {
	parsed, err := ParseURL(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// RawQuery returns the encoded query string without the leading '?'.
// Parameters set through setters are form encoded.
func (u URL) RawQuery() string {
	parts := make([]string, 0, len(u.params))
	for _, p := range u.params {
		parts = append(parts, p.encode())
	}
	return strings.Join(parts, "&")
}

// Clone returns a copy that shares no state with u.
func (u URL) Clone() URL {
	c := u
	c.params = append([]Param(nil), u.params...)
	return c
}

// IsZero reports whether u is the zero value.
func (u URL) IsZero() bool {
	return u.Scheme == "" && u.Host == "" && u.Path == "" && len(u.params) == 0
}

// Params returns a copy of the parameters in order.
func (u URL) Params() []Param {
	return append([]Param(nil), u.params...)
}

// Param returns the value of the first occurrence of key.
func (u URL) Param(key string) (string, bool) {
	for _, p := range u.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// SetParam sets key to value at the position of its first occurrence, or
// appends it. Later occurrences of key are dropped. The parameter slice is
// rebuilt so that copies of u are unaffected.
func (u *URL) SetParam(key, value string) {
	params := make([]Param, 0, len(u.params)+1)
	found := false
	for _, p := range u.params {
		if p.Key != key {
			params = append(params, p)
			continue
		}
		if !found {
			params = append(params, Param{Key: key, Value: value})
			found = true
		}
	}
	if !found {
		params = append(params, Param{Key: key, Value: value})
	}
	u.params = params
}

// RemoveParam deletes every occurrence of key.
func (u *URL) RemoveParam(key string) {
	params := make([]Param, 0, len(u.params))
	for _, p := range u.params {
		if p.Key != key {
			params = append(params, p)
		}
	}
	u.params = params
}

func (u URL) SearchTerm() string {
	v, _ := u.Param(ParamSearchTerm)
	return v
}

func (u *URL) SetSearchTerm(term string) {
	u.SetParam(ParamSearchTerm, term)
}

// LanguageRestriction returns the language code results are restricted to.
// The parameter is stored as "lang_<code>"; the prefix is stripped here.
func (u URL) LanguageRestriction() (string, bool) {
	v, _ := u.Param(ParamLanguageRestriction)
	code := strings.TrimPrefix(v, languagePrefix)
	if code == "" {
		return "", false
	}
	return code, true
}

// SetLanguageRestriction restricts results to a language. An empty code
// removes the restriction.
func (u *URL) SetLanguageRestriction(code string) {
	if code == "" {
		u.RemoveParam(ParamLanguageRestriction)
		return
	}
	u.SetParam(ParamLanguageRestriction, languagePrefix+code)
}

func (u URL) InterfaceLanguage() (string, bool) {
	v, ok := u.Param(ParamInterfaceLanguage)
	return v, ok && v != ""
}

func (u *URL) SetInterfaceLanguage(code string) {
	if code == "" {
		u.RemoveParam(ParamInterfaceLanguage)
		return
	}
	u.SetParam(ParamInterfaceLanguage, code)
}

// CountryRestriction returns the upper-case country code from "country<CC>".
func (u URL) CountryRestriction() (string, bool) {
	v, _ := u.Param(ParamCountryRestriction)
	code := strings.TrimPrefix(v, countryPrefix)
	if code == "" {
		return "", false
	}
	return code, true
}

func (u *URL) SetCountryRestriction(code string) {
	if code == "" {
		u.RemoveParam(ParamCountryRestriction)
		return
	}
	u.SetParam(ParamCountryRestriction, countryPrefix+strings.ToUpper(code))
}

// ResultsPerPage returns the "num" parameter, or 10 when unset or invalid.
func (u URL) ResultsPerPage() int {
	if v, ok := u.Param(ParamResultsPerPage); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultResultsPerPage
}

func (u *URL) SetResultsPerPage(n int) {
	if n <= 0 {
		u.RemoveParam(ParamResultsPerPage)
		return
	}
	u.SetParam(ParamResultsPerPage, strconv.Itoa(n))
}

// Page returns the 1-based page number derived from "start" and "num".
func (u URL) Page() int {
	v, ok := u.Param(ParamStart)
	if !ok {
		return 1
	}
	start, err := strconv.Atoi(v)
	if err != nil || start <= 0 {
		return 1
	}
	return start/u.ResultsPerPage() + 1
}

// SetPage sets the result offset for a 1-based page. Page 1 clears it.
func (u *URL) SetPage(page int) {
	if page <= 1 {
		u.RemoveParam(ParamStart)
		return
	}
	u.SetParam(ParamStart, strconv.Itoa((page-1)*u.ResultsPerPage()))
}

func (u URL) SafeSearch() string {
	v, _ := u.Param(ParamSafeSearch)
	return v
}

func (u *URL) SetSafeSearch(mode string) {
	if mode == "" {
		u.RemoveParam(ParamSafeSearch)
		return
	}
	u.SetParam(ParamSafeSearch, mode)
}

// AutoCorrectionEnabled is false when "nfpr=1" is present.
func (u URL) AutoCorrectionEnabled() bool {
	v, _ := u.Param(ParamNoAutoCorrection)
	return v != "1"
}

func (u *URL) SetAutoCorrectionEnabled(enabled bool) {
	if enabled {
		u.RemoveParam(ParamNoAutoCorrection)
		return
	}
	u.SetParam(ParamNoAutoCorrection, "1")
}

func (u URL) ResultType() string {
	v, _ := u.Param(ParamResultType)
	return v
}

func (u *URL) SetResultType(t string) {
	if t == ResultTypeAll {
		u.RemoveParam(ParamResultType)
		return
	}
	u.SetParam(ParamResultType, t)
}

// Resolve resolves a reference (typically an href from a result page)
// against u.
func (u URL) Resolve(ref string) (string, error) {
	base, err := url.Parse(u.String())
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(r).String(), nil
}
