package useragent

import (
	"sort"
	"strings"
)

// Presets maps short names to realistic desktop browser User-Agents.
var Presets = map[string]string{
	"chrome-windows":  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"chrome-mac":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"firefox-windows": "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:122.0) Gecko/20100101 Firefox/122.0",
	"firefox-mac":     "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
	"safari-mac":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"edge-windows":    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
}

// Names returns the preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the User-Agent for a preset name (case-insensitive).
func Lookup(name string) (string, bool) {
	ua, ok := Presets[strings.ToLower(strings.TrimSpace(name))]
	return ua, ok
}

// Resolve returns the preset's User-Agent when value names a preset and
// value itself otherwise. The empty string stays empty, meaning "no override".
func Resolve(value string) string {
	if ua, ok := Lookup(value); ok {
		return ua
	}
	return value
}
