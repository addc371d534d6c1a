package useragent

import (
	"strings"
	"testing"
)

func TestLookup(t *testing.T) {
	ua, ok := Lookup("Chrome-Windows")
	if !ok {
		t.Fatal("expected chrome-windows preset")
	}
	if !strings.Contains(ua, "Chrome/") {
		t.Errorf("expected a Chrome user agent, got %s", ua)
	}

	if _, ok := Lookup("lynx"); ok {
		t.Errorf("expected unknown preset to be missing")
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("safari-mac"); got != Presets["safari-mac"] {
		t.Errorf("expected preset to resolve, got %s", got)
	}
	if got := Resolve("MyBot/1.0"); got != "MyBot/1.0" {
		t.Errorf("expected literal to pass through, got %s", got)
	}
	if got := Resolve(""); got != "" {
		t.Errorf("expected empty to stay empty, got %s", got)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d names, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("expected sorted names, got %v", names)
		}
	}
	for _, n := range names {
		if Presets[n] == "" {
			t.Errorf("preset %s has an empty user agent", n)
		}
	}
}
