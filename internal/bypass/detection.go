package bypass

import (
	"bytes"
)

// Source names reported by the default detectors.
const (
	SourceGoogleSorry = "GoogleSorry"
	SourceRecaptcha   = "reCAPTCHA"
	SourceCloudflare  = "Cloudflare"
	SourceDataDome    = "DataDome"
	SourcePerimeterX  = "PerimeterX"
)

// Detector examines a response body and reports whether it is a bot
// challenge page, and which mechanism served it. Detectors look at content
// only: a challenge can arrive with any status code.
type Detector func(body []byte) (detected bool, source string)

// DefaultDetectors returns the detectors used for search engine responses,
// most specific first.
func DefaultDetectors() []Detector {
	return []Detector{
		detectGoogleSorry,
		detectRecaptcha,
		detectCloudflare,
		detectDataDome,
		detectPerimeterX,
	}
}

// Detect runs body through detectors in order and returns the first match.
func Detect(body []byte, detectors []Detector) (bool, string) {
	if len(body) == 0 {
		return false, ""
	}
	for _, d := range detectors {
		if detected, source := d(body); detected {
			return true, source
		}
	}
	return false, ""
}

// LooksLikeCaptcha reports whether any default detector matches body.
func LooksLikeCaptcha(body []byte) bool {
	detected, _ := Detect(body, DefaultDetectors())
	return detected
}

func containsAny(body []byte, needles ...string) bool {
	for _, n := range needles {
		if bytes.Contains(body, []byte(n)) {
			return true
		}
	}
	return false
}

// detectGoogleSorry matches the page Google serves from /sorry/ when it
// flags a client as automated.
func detectGoogleSorry(body []byte) (bool, string) {
	if containsAny(body,
		"/sorry/image",
		"/sorry/index",
		`id="captcha-form"`,
		`action="CaptchaRedirect"`,
	) {
		return true, SourceGoogleSorry
	}

	// The explanatory paragraph survives layout changes better than markup.
	lower := bytes.ToLower(body)
	if bytes.Contains(lower, []byte("our systems have detected unusual traffic")) {
		return true, SourceGoogleSorry
	}
	return false, ""
}

func detectRecaptcha(body []byte) (bool, string) {
	if containsAny(body,
		`class="g-recaptcha"`,
		"www.google.com/recaptcha/api.js",
		"www.recaptcha.net/recaptcha/api.js",
	) {
		return true, SourceRecaptcha
	}
	return false, ""
}

func detectCloudflare(body []byte) (bool, string) {
	if containsAny(body,
		"cf-browser-verification",
		"cf-turnstile",
		"Attention Required! | Cloudflare",
		"challenges.cloudflare.com",
	) {
		return true, SourceCloudflare
	}
	return false, ""
}

func detectDataDome(body []byte) (bool, string) {
	if containsAny(body, "geo.captcha-delivery.com", "ct.captcha-delivery.com") {
		return true, SourceDataDome
	}
	return false, ""
}

func detectPerimeterX(body []byte) (bool, string) {
	if containsAny(body, "client.perimeterx.net", "px-captcha", "_pxBlock") {
		return true, SourcePerimeterX
	}
	return false, ""
}
