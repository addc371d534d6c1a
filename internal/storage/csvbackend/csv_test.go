package csvbackend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/FranksOps/serpkit/internal/storage"
)

func TestCSVBackend(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "serpkit.csv")

	b, err := New(filePath)
	if err != nil {
		t.Fatalf("Failed to create CSV backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond) // Format truncates precision

	rec1 := &storage.Record{
		ID:          "csv1",
		URL:         "https://www.google.com/search?q=csv1",
		SearchTerm:  "csv1",
		Outcome:     storage.OutcomePage,
		StatusCode:  200,
		ResultCount: 9,
		Duration:    10 * time.Millisecond,
		CreatedAt:   now.Add(-2 * time.Hour),
	}

	rec2 := &storage.Record{
		ID:            "csv2",
		URL:           "https://www.google.com/search?q=csv2&lr=lang_fr",
		SearchTerm:    "csv2, with comma",
		Outcome:       storage.OutcomeCaptcha,
		StatusCode:    503,
		DetectedIP:    "128.78.166.25",
		CaptchaSource: "google-sorry",
		Duration:      20 * time.Millisecond,
		CreatedAt:     now.Add(-1 * time.Hour),
		Error:         "serp: captcha",
	}

	err = b.Save(ctx, rec1)
	if err != nil {
		t.Fatalf("Failed to save record 1: %v", err)
	}
	err = b.Save(ctx, rec2)
	if err != nil {
		t.Fatalf("Failed to save record 2: %v", err)
	}

	// Test URL Filter
	filterURL := storage.Filter{URL: rec2.URL}
	resultsURL, err := b.Query(ctx, filterURL)
	if err != nil {
		t.Fatalf("Failed to query by URL: %v", err)
	}
	if len(resultsURL) != 1 {
		t.Fatalf("Expected 1 result for URL filter, got %d", len(resultsURL))
	}
	got := resultsURL[0]
	if got.ID != "csv2" {
		t.Errorf("Expected ID csv2, got %s", got.ID)
	}
	if got.SearchTerm != rec2.SearchTerm {
		t.Errorf("Expected SearchTerm %q, got %q", rec2.SearchTerm, got.SearchTerm)
	}
	if got.DetectedIP != rec2.DetectedIP {
		t.Errorf("Expected DetectedIP %s, got %s", rec2.DetectedIP, got.DetectedIP)
	}
	if got.StatusCode != 503 {
		t.Errorf("Expected StatusCode 503, got %d", got.StatusCode)
	}
	if !got.CreatedAt.Equal(rec2.CreatedAt) {
		t.Errorf("Expected CreatedAt %v, got %v", rec2.CreatedAt, got.CreatedAt)
	}

	// Test Outcome Filter
	resultsCaptcha, err := b.Query(ctx, storage.Filter{Outcome: storage.OutcomeCaptcha})
	if err != nil {
		t.Fatalf("Failed to query by Outcome: %v", err)
	}
	if len(resultsCaptcha) != 1 {
		t.Fatalf("Expected 1 result for Outcome filter, got %d", len(resultsCaptcha))
	}

	resultsPage, err := b.Query(ctx, storage.Filter{Outcome: storage.OutcomePage})
	if err != nil {
		t.Fatalf("Failed to query by Outcome=page: %v", err)
	}
	if len(resultsPage) != 1 || resultsPage[0].ResultCount != 9 {
		t.Fatalf("Expected 1 page result with 9 results, got %d", len(resultsPage))
	}

	// Test Since Filter
	past := now.Add(-90 * time.Minute)
	filterSince := storage.Filter{Since: &past}
	resultsSince, err := b.Query(ctx, filterSince)
	if err != nil {
		t.Fatalf("Failed to query by Since: %v", err)
	}
	if len(resultsSince) != 1 {
		t.Fatalf("Expected 1 result for Since filter, got %d", len(resultsSince))
	}
	if resultsSince[0].ID != "csv2" {
		t.Errorf("Expected ID csv2, got %s", resultsSince[0].ID)
	}

	// Test no filters, ordering
	resultsAll, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query all: %v", err)
	}
	if len(resultsAll) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(resultsAll))
	}
	// Order should be descending (newest first)
	if resultsAll[0].ID != "csv2" {
		t.Errorf("Expected csv2 first, got %s", resultsAll[0].ID)
	}

	// Test limit
	resultsLimit, err := b.Query(ctx, storage.Filter{Limit: 1})
	if err != nil {
		t.Fatalf("Failed to query limit: %v", err)
	}
	if len(resultsLimit) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(resultsLimit))
	}

	// Test offset
	resultsOffset, err := b.Query(ctx, storage.Filter{Offset: 1})
	if err != nil {
		t.Fatalf("Failed to query offset: %v", err)
	}
	if len(resultsOffset) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(resultsOffset))
	}
	if resultsOffset[0].ID != "csv1" {
		t.Errorf("Expected csv1 for offset 1, got %s", resultsOffset[0].ID)
	}
}

func TestCSVBackend_ReopenKeepsSingleHeader(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "serpkit.csv")
	ctx := context.Background()

	for i, id := range []string{"a", "b"} {
		b, err := New(filePath)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := b.Save(ctx, &storage.Record{ID: id, Outcome: storage.OutcomePage, CreatedAt: time.Now()}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
		b.Close()
	}

	b, err := New(filePath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()

	all, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(all))
	}
}
