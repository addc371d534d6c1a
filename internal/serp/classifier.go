package serp

import (
	"errors"
	"fmt"
	"net/http"
)

// OutcomeKind is the category a response was classified into.
type OutcomeKind int

const (
	OutcomePage OutcomeKind = iota + 1
	OutcomeCaptcha
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePage:
		return "page"
	case OutcomeCaptcha:
		return "captcha"
	case OutcomeError:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Outcome is the result of classifying a Response. Exactly one of Page or
// Captcha is set for the corresponding kinds; OutcomeError carries only the
// status code.
type Outcome struct {
	Kind       OutcomeKind
	Response   *Response
	Page       *Page
	Captcha    *Captcha
	StatusCode int
}

// Err converts a non-page outcome into the matching typed error.
func (o Outcome) Err() error {
	switch o.Kind {
	case OutcomePage:
		return nil
	case OutcomeCaptcha:
		return &CaptchaError{Captcha: o.Captcha}
	default:
		return &InvalidResponseError{StatusCode: o.StatusCode}
	}
}

// Classifier decides whether a Response is a result page, a captcha
// challenge, or an error. The zero value is not usable; use NewClassifier.
type Classifier struct {
	pages    PageParser
	detector CaptchaDetector
	captchas CaptchaParser
}

// NewClassifier builds a Classifier. Nil collaborators are replaced by the
// Google defaults.
func NewClassifier(pages PageParser, detector CaptchaDetector, captchas CaptchaParser) *Classifier {
	if pages == nil {
		pages = GooglePageParser{}
	}
	if detector == nil {
		detector = DefaultCaptchaDetector
	}
	if captchas == nil {
		captchas = GoogleCaptchaParser{}
	}
	return &Classifier{
		pages:    pages,
		detector: detector,
		captchas: captchas,
	}
}

// Classify maps resp to an Outcome in two steps: a 200 status is parsed as a
// result page; anything else is checked for a captcha signature before
// being reported as an invalid response. A non-200 status alone does not
// make a response invalid, since Google serves captchas with 503.
//
// An error is returned only if a parser fails.
func (c *Classifier) Classify(resp *Response) (Outcome, error) {
	if resp == nil {
		return Outcome{}, errors.New("classify: nil response")
	}

	if resp.StatusCode == http.StatusOK {
		page, err := c.pages.ParsePage(resp.Body, resp.RequestedURL, resp.URL())
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomePage, Response: resp, Page: page, StatusCode: resp.StatusCode}, nil
	}

	if detected, source := c.detector.DetectCaptcha(resp.Body); detected {
		captcha, err := c.captchas.ParseCaptcha(resp.Body)
		if err != nil {
			return Outcome{}, fmt.Errorf("captcha detected: %w", err)
		}
		if captcha == nil {
			captcha = &Captcha{}
		}
		if source != "" {
			captcha.Source = source
		}
		return Outcome{Kind: OutcomeCaptcha, Response: resp, Captcha: captcha, StatusCode: resp.StatusCode}, nil
	}

	return Outcome{Kind: OutcomeError, Response: resp, StatusCode: resp.StatusCode}, nil
}
