package serp

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Result is a single organic search result.
type Result struct {
	Position   int    `json:"position"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	DisplayURL string `json:"display_url,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
}

// Page is a parsed search result page.
type Page struct {
	// URL is the effective URL the page was served from.
	URL          URL `json:"url"`
	RequestedURL URL `json:"requested_url"`

	Results         []Result `json:"results"`
	TotalResults    int64    `json:"total_results,omitempty"`
	RelatedSearches []string `json:"related_searches,omitempty"`
}

// PageParser turns a successful response body into a Page.
type PageParser interface {
	ParsePage(body []byte, requested, effective URL) (*Page, error)
}

// PageParserFunc adapts a function to PageParser.
type PageParserFunc func(body []byte, requested, effective URL) (*Page, error)

func (f PageParserFunc) ParsePage(body []byte, requested, effective URL) (*Page, error) {
	return f(body, requested, effective)
}

var (
	resultSelectors  = []string{"div.g", "div.MjjYud", "#rso > div"}
	snippetSelectors = "div.VwiC3b, span.st, div.s span, span.aCOpRe, div[data-content-feature='1']"
	relatedSelectors = "#brs a, p.nVcaUb a, div.related-searches a"
)

// GooglePageParser extracts organic results from a Google result page.
type GooglePageParser struct{}

func (GooglePageParser) ParsePage(body []byte, requested, effective URL) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse result page: %w", err)
	}

	page := &Page{
		URL:          effective,
		RequestedURL: requested,
	}
	if page.URL.IsZero() {
		page.URL = requested
	}

	container := resultSelectors[0]
	for _, sel := range resultSelectors {
		if doc.Find(sel).Length() > 0 {
			container = sel
			break
		}
	}

	seen := make(map[string]struct{})
	doc.Find(container).Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find("h3").First().Text())
		if title == "" {
			return
		}

		link := s.Find("h3").First().Closest("a[href]")
		if link.Length() == 0 {
			link = s.Find("a[href]").First()
		}
		href, _ := link.Attr("href")
		target := resultTarget(page.URL, href)
		if target == "" {
			return
		}
		if _, dup := seen[target]; dup {
			return
		}
		seen[target] = struct{}{}

		page.Results = append(page.Results, Result{
			Position:   len(page.Results) + 1,
			Title:      title,
			URL:        target,
			DisplayURL: strings.TrimSpace(s.Find("cite").First().Text()),
			Snippet:    strings.TrimSpace(s.Find(snippetSelectors).First().Text()),
		})
	})

	page.TotalResults = parseResultCount(doc.Find("#result-stats").First().Text())

	doc.Find(relatedSelectors).Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			page.RelatedSearches = append(page.RelatedSearches, text)
		}
	})

	return page, nil
}

// resultTarget resolves an href found on the result page to the destination
// URL, unwrapping Google's /url?q= redirects. Links back into the search
// engine itself yield "".
func resultTarget(base URL, href string) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	resolved, err := base.Resolve(href)
	if err != nil {
		return ""
	}
	u, err := url.Parse(resolved)
	if err != nil {
		return ""
	}

	if u.Host == base.Host && u.Path == "/url" {
		q := u.Query()
		for _, key := range []string{"q", "url"} {
			if v := q.Get(key); strings.HasPrefix(v, "http") {
				return v
			}
		}
		return ""
	}
	if u.Host == base.Host && (u.Path == "/search" || strings.HasPrefix(u.Path, "/sorry")) {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return resolved
}

// parseResultCount reads "About 1,230,000 results (0.42 seconds)" in any
// locale by keeping the digits before the timing suffix.
func parseResultCount(text string) int64 {
	if i := strings.Index(text, "("); i >= 0 {
		text = text[:i]
	}
	var digits strings.Builder
	for _, r := range text {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
