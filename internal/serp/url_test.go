package serp

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseURL_RoundTrip(t *testing.T) {
	cases := []string{
		"https://www.google.fr/search?q=simpsons+movie+trailer",
		"https://www.google.com/search?q=golang&lr=lang_es&hl=es",
		"https://www.google.com/search?q=a%26b&num=20&start=40",
		"https://www.google.de/search?q=wetter&cr=countryDE&nfpr=1&tbm=nws",
		"https://www.google.com/search",
		"http://www.google.co.uk/search?q=test&safe=active#top",
	}

	for _, raw := range cases {
		t.Run(raw, func(t *testing.T) {
			u, err := ParseURL(raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := u.String(); got != raw {
				t.Errorf("expected %q, got %q", raw, got)
			}
		})
	}
}

func TestParseURL_PreservesUnknownParams(t *testing.T) {
	raw := "https://www.google.com/search?client=firefox-b-d&q=serpkit&ie=UTF-8"
	u, err := ParseURL(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u.SetSearchTerm("serp")
	want := "https://www.google.com/search?client=firefox-b-d&q=serp&ie=UTF-8"
	if got := u.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	params := u.Params()
	if len(params) != 3 || params[0].Key != "client" || params[2].Key != "ie" {
		t.Errorf("unexpected param order: %v", params)
	}

	verbatim := []string{
		"https://www.google.com/search?q=golang&tbs=qdr:d",
		"https://www.google.com/search?q=golang&pws",
		"https://www.google.com/search?q=a&q=b",
		"https://www.google.com/search?q=golang&as_sitesearch=go.dev/doc&x=1&x=2",
	}
	for _, raw := range verbatim {
		u, err := ParseURL(raw)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", raw, err)
		}
		if got := u.String(); got != raw {
			t.Errorf("expected %q, got %q", raw, got)
		}
	}
}

func TestParseURL_RepeatedAndBareKeys(t *testing.T) {
	u := MustParseURL("https://www.google.com/search?q=a&pws&x=1&q=b&x=2")

	if term := u.SearchTerm(); term != "a" {
		t.Errorf("expected first q to win, got %q", term)
	}
	if v, ok := u.Param("pws"); !ok || v != "" {
		t.Errorf("expected bare key pws, got %q (%v)", v, ok)
	}
	if n := len(u.Params()); n != 5 {
		t.Errorf("expected 5 params, got %d", n)
	}

	u.SetSearchTerm("c d")
	want := "https://www.google.com/search?q=c+d&pws&x=1&x=2"
	if got := u.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	u.RemoveParam("x")
	want = "https://www.google.com/search?q=c+d&pws"
	if got := u.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestParseURL_Malformed(t *testing.T) {
	cases := []string{
		"",
		"not a url",
		"/search?q=relative",
		"ftp://www.google.com/search",
		"https:///search?q=nohost",
		"https://www.google.com/search?q=%zz",
		"http://[::1",
	}

	for _, raw := range cases {
		_, err := ParseURL(raw)
		var malformed *MalformedURLError
		if !errors.As(err, &malformed) {
			t.Errorf("%q: expected MalformedURLError, got %v", raw, err)
			continue
		}
		if malformed.Input != raw {
			t.Errorf("%q: expected input to be recorded, got %q", raw, malformed.Input)
		}
	}
}

func TestURL_LanguageRestriction(t *testing.T) {
	u := NewURL()
	if _, ok := u.LanguageRestriction(); ok {
		t.Errorf("expected no restriction on a new url")
	}

	u.SetLanguageRestriction("es")
	if lr, ok := u.LanguageRestriction(); !ok || lr != "es" {
		t.Errorf("expected es, got %q (%v)", lr, ok)
	}
	if v, _ := u.Param(ParamLanguageRestriction); v != "lang_es" {
		t.Errorf("expected lr=lang_es, got %q", v)
	}

	u.SetLanguageRestriction("")
	if _, ok := u.LanguageRestriction(); ok {
		t.Errorf("expected restriction to be removed")
	}

	empty := MustParseURL("https://www.google.com/search?q=x&lr=lang_")
	if lr, ok := empty.LanguageRestriction(); ok {
		t.Errorf("expected empty lang_ to count as unset, got %q", lr)
	}
}

func TestURL_Fields(t *testing.T) {
	u := NewURL()
	u.SetSearchTerm("simpsons movie trailer")
	u.SetResultsPerPage(20)
	u.SetPage(3)
	u.SetCountryRestriction("fr")
	u.SetInterfaceLanguage("fr")
	u.SetSafeSearch(SafeSearchStrict)
	u.SetAutoCorrectionEnabled(false)
	u.SetResultType(ResultTypeNews)

	want := "https://www.google.com/search?q=simpsons+movie+trailer&num=20&start=40&cr=countryFR&hl=fr&safe=active&nfpr=1&tbm=nws"
	if got := u.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if u.Page() != 3 {
		t.Errorf("expected page 3, got %d", u.Page())
	}
	if cr, _ := u.CountryRestriction(); cr != "FR" {
		t.Errorf("expected FR, got %q", cr)
	}
	if u.AutoCorrectionEnabled() {
		t.Errorf("expected auto correction disabled")
	}

	u.SetPage(1)
	u.SetResultType(ResultTypeAll)
	u.SetAutoCorrectionEnabled(true)
	if _, ok := u.Param(ParamStart); ok {
		t.Errorf("expected start to be cleared for page 1")
	}
	if u.ResultType() != "" || !u.AutoCorrectionEnabled() {
		t.Errorf("expected result type and nfpr cleared")
	}
}

func TestURL_CopiesAreIndependent(t *testing.T) {
	a := MustParseURL("https://www.google.com/search?q=one&lr=lang_fr")
	b := a
	b.SetLanguageRestriction("de")
	b.SetParam("extra", "1")

	if lr, _ := a.LanguageRestriction(); lr != "fr" {
		t.Errorf("expected original to keep fr, got %q", lr)
	}
	if _, ok := a.Param("extra"); ok {
		t.Errorf("expected original to be unaffected by append")
	}

	c := a.Clone()
	c.RemoveParam(ParamSearchTerm)
	if a.SearchTerm() != "one" {
		t.Errorf("expected original search term to survive clone mutation")
	}
}

func TestURL_Resolve(t *testing.T) {
	u := MustParseURL("https://www.google.fr/search?q=x")
	got, err := u.Resolve("/url?q=https://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://www.google.fr/url?q=https://example.com/" {
		t.Errorf("unexpected resolved url %q", got)
	}
}

func TestURL_JSON(t *testing.T) {
	page := Page{URL: MustParseURL("https://www.google.fr/search?q=simpsons+movie+trailer&lr=lang_fr")}
	data, err := json.Marshal(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"url":"https://www.google.fr/search?q=simpsons+movie+trailer`) {
		t.Errorf("expected url encoded as a string, got %s", data)
	}

	var back struct {
		URL URL `json:"url"`
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lr, _ := back.URL.LanguageRestriction(); lr != "fr" {
		t.Errorf("expected lr fr after decoding, got %q", lr)
	}
}
