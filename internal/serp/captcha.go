package serp

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/FranksOps/serpkit/internal/bypass"
	"github.com/PuerkitoBio/goquery"
)

// Captcha holds the diagnostics Google prints on its "unusual traffic" page.
type Captcha struct {
	// Source names the challenge mechanism, e.g. bypass.SourceGoogleSorry.
	Source     string
	DetectedIP string
	Time       time.Time
	// URL is the blocked URL as reported by the challenge page.
	URL      string
	ImageURL string
	ID       string
}

// CaptchaDetector reports whether a body is a challenge page and which
// mechanism served it. Implementations must only look at the content.
type CaptchaDetector interface {
	DetectCaptcha(body []byte) (detected bool, source string)
}

// CaptchaDetectorFunc adapts a function to CaptchaDetector.
type CaptchaDetectorFunc func(body []byte) (bool, string)

func (f CaptchaDetectorFunc) DetectCaptcha(body []byte) (bool, string) { return f(body) }

// CaptchaParser extracts diagnostics from a challenge page.
type CaptchaParser interface {
	ParseCaptcha(body []byte) (*Captcha, error)
}

// CaptchaParserFunc adapts a function to CaptchaParser.
type CaptchaParserFunc func(body []byte) (*Captcha, error)

func (f CaptchaParserFunc) ParseCaptcha(body []byte) (*Captcha, error) { return f(body) }

// DefaultCaptchaDetector runs the bypass package's default detectors.
var DefaultCaptchaDetector CaptchaDetector = CaptchaDetectorFunc(func(body []byte) (bool, string) {
	return bypass.Detect(body, bypass.DefaultDetectors())
})

var (
	ipPattern   = regexp.MustCompile(`IP address:\s*([0-9A-Fa-f:.]+)`)
	timePattern = regexp.MustCompile(`Time:\s*(\S+)`)
	urlPattern  = regexp.MustCompile(`URL:\s*(\S+)`)
)

// GoogleCaptchaParser reads the Google /sorry/ page.
type GoogleCaptchaParser struct{}

func (GoogleCaptchaParser) ParseCaptcha(body []byte) (*Captcha, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse captcha page: %w", err)
	}

	// The diagnostics block is a run of <br>-separated lines.
	doc.Find("br").ReplaceWithHtml("\n")
	text := doc.Find("body").Text()

	c := &Captcha{Source: bypass.SourceGoogleSorry}
	if m := ipPattern.FindStringSubmatch(text); m != nil {
		c.DetectedIP = strings.TrimRight(m[1], ".:")
	}
	if m := timePattern.FindStringSubmatch(text); m != nil {
		if ts, err := time.Parse(time.RFC3339, m[1]); err == nil {
			c.Time = ts
		}
	}
	if m := urlPattern.FindStringSubmatch(text); m != nil {
		c.URL = m[1]
	}
	if c.URL == "" {
		c.URL, _ = doc.Find(`input[name="continue"]`).Attr("value")
	}

	if src, ok := doc.Find(`img[src*="/sorry/image"]`).Attr("src"); ok {
		c.ImageURL = src
	}
	c.ID, _ = doc.Find(`input[name="id"]`).Attr("value")
	if c.ID == "" {
		c.ID, _ = doc.Find(`input[name="q"]`).Attr("value")
	}

	return c, nil
}
