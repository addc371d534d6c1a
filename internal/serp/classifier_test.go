package serp

import (
	"errors"
	"net/http"
	"testing"
)

func TestClassifier_Decisions(t *testing.T) {
	captchaBody := []byte("CAPTCHA")
	detector := CaptchaDetectorFunc(func(body []byte) (bool, string) {
		return string(body) == "CAPTCHA", "Test"
	})
	pages := PageParserFunc(func(body []byte, requested, effective URL) (*Page, error) {
		return &Page{URL: effective, RequestedURL: requested}, nil
	})
	captchas := CaptchaParserFunc(func(body []byte) (*Captcha, error) {
		return &Captcha{DetectedIP: "10.0.0.1"}, nil
	})
	c := NewClassifier(pages, detector, captchas)

	cases := []struct {
		name   string
		status int
		body   []byte
		want   OutcomeKind
	}{
		{"ok page", http.StatusOK, []byte("<html></html>"), OutcomePage},
		{"ok page even with captcha body", http.StatusOK, captchaBody, OutcomePage},
		{"captcha on 503", http.StatusServiceUnavailable, captchaBody, OutcomeCaptcha},
		{"captcha on 429", http.StatusTooManyRequests, captchaBody, OutcomeCaptcha},
		{"captcha on 302", http.StatusFound, captchaBody, OutcomeCaptcha},
		{"plain 400", http.StatusBadRequest, []byte("bad"), OutcomeError},
		{"plain 503", http.StatusServiceUnavailable, []byte("down"), OutcomeError},
		{"201 is not success", http.StatusCreated, []byte("<html></html>"), OutcomeError},
		{"204 is not success", http.StatusNoContent, nil, OutcomeError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := &Response{StatusCode: tc.status, Body: tc.body}
			out, err := c.Classify(resp)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Kind != tc.want {
				t.Errorf("expected %s, got %s", tc.want, out.Kind)
			}
			if out.Response != resp {
				t.Errorf("expected outcome to carry the response")
			}
			if out.StatusCode != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, out.StatusCode)
			}
		})
	}
}

func TestClassifier_CaptchaSource(t *testing.T) {
	c := NewClassifier(nil, CaptchaDetectorFunc(func([]byte) (bool, string) { return true, "Custom" }),
		CaptchaParserFunc(func([]byte) (*Captcha, error) { return nil, nil }))

	out, err := c.Classify(&Response{StatusCode: http.StatusForbidden, Body: []byte("x")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Captcha == nil || out.Captcha.Source != "Custom" {
		t.Errorf("expected captcha tagged with detector source, got %+v", out.Captcha)
	}
}

func TestClassifier_ParserErrors(t *testing.T) {
	boom := errors.New("boom")
	c := NewClassifier(
		PageParserFunc(func([]byte, URL, URL) (*Page, error) { return nil, boom }),
		CaptchaDetectorFunc(func([]byte) (bool, string) { return true, "" }),
		CaptchaParserFunc(func([]byte) (*Captcha, error) { return nil, boom }),
	)

	if _, err := c.Classify(&Response{StatusCode: http.StatusOK}); !errors.Is(err, boom) {
		t.Errorf("expected page parser error, got %v", err)
	}
	if _, err := c.Classify(&Response{StatusCode: http.StatusServiceUnavailable}); !errors.Is(err, boom) {
		t.Errorf("expected captcha parser error, got %v", err)
	}
	if _, err := c.Classify(nil); err == nil {
		t.Errorf("expected error for nil response")
	}
}

func TestClassifier_PageURLFallsBackToRequested(t *testing.T) {
	c := NewClassifier(nil, nil, nil)
	requested := MustParseURL(simpsonsURL)

	out, err := c.Classify(&Response{
		StatusCode:   http.StatusOK,
		Body:         []byte("<html><body></body></html>"),
		RequestedURL: requested,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Page.URL.String() != simpsonsURL {
		t.Errorf("expected page url to fall back to requested url, got %q", out.Page.URL.String())
	}
}

func TestOutcome_Err(t *testing.T) {
	if err := (Outcome{Kind: OutcomePage}).Err(); err != nil {
		t.Errorf("expected nil for page outcome, got %v", err)
	}

	err := (Outcome{Kind: OutcomeError, StatusCode: 500}).Err()
	var invalid *InvalidResponseError
	if !errors.As(err, &invalid) || invalid.StatusCode != 500 {
		t.Errorf("expected 500 InvalidResponseError, got %v", err)
	}

	c := &Captcha{DetectedIP: "1.2.3.4"}
	err = (Outcome{Kind: OutcomeCaptcha, Captcha: c}).Err()
	var captchaErr *CaptchaError
	if !errors.As(err, &captchaErr) || captchaErr.Captcha != c {
		t.Errorf("expected CaptchaError carrying diagnostics, got %v", err)
	}
}
