package serp

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidResponse matches any *InvalidResponseError via errors.Is.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrCaptcha matches any *CaptchaError via errors.Is.
	ErrCaptcha = errors.New("captcha challenge")
)

// MalformedURLError is returned when text cannot be parsed into a URL.
type MalformedURLError struct {
	Input string
	Err   error
}

func (e *MalformedURLError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed search url %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("malformed search url %q", e.Input)
}

func (e *MalformedURLError) Unwrap() error { return e.Err }

// InvalidConfigurationError is returned by a RequestBuilder setter that
// received a value of the wrong shape. The configuration is left unchanged.
type InvalidConfigurationError struct {
	Setting string
	Value   any
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %T (%v)", e.Setting, e.Value, e.Value)
}

// InvalidResponseError reports a response that was neither a result page nor
// a captcha challenge.
type InvalidResponseError struct {
	StatusCode int
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response: http status %d", e.StatusCode)
}

func (e *InvalidResponseError) Is(target error) bool { return target == ErrInvalidResponse }

// CaptchaError reports that the search engine served a captcha page instead
// of results.
type CaptchaError struct {
	Captcha *Captcha
}

func (e *CaptchaError) Error() string {
	if e.Captcha != nil && e.Captcha.DetectedIP != "" {
		return fmt.Sprintf("captcha challenge (detected ip %s)", e.Captcha.DetectedIP)
	}
	return "captcha challenge"
}

func (e *CaptchaError) Is(target error) bool { return target == ErrCaptcha }
