package storage

import (
	"context"
	"testing"
	"time"
)

func TestFilter_Match(t *testing.T) {
	now := time.Now()
	r := &Record{
		URL:       "https://www.google.com/search?q=a",
		Outcome:   OutcomeCaptcha,
		CreatedAt: now,
	}

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"url match", Filter{URL: r.URL}, true},
		{"url mismatch", Filter{URL: "https://www.google.com/search?q=b"}, false},
		{"outcome match", Filter{Outcome: OutcomeCaptcha}, true},
		{"outcome mismatch", Filter{Outcome: OutcomePage}, false},
		{"since past", Filter{Since: &past}, true},
		{"since future", Filter{Since: &future}, false},
	}

	for _, tc := range cases {
		if got := tc.filter.Match(r); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestFilter_Paginate(t *testing.T) {
	mk := func() []*Record {
		return []*Record{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}}
	}

	got := Filter{}.Paginate(mk())
	if len(got) != 4 || got[0].ID != "4" || got[3].ID != "1" {
		t.Errorf("expected newest first, got %v", ids(got))
	}

	got = Filter{Offset: 1, Limit: 2}.Paginate(mk())
	if len(got) != 2 || got[0].ID != "3" || got[1].ID != "2" {
		t.Errorf("expected [3 2], got %v", ids(got))
	}

	got = Filter{Offset: 10}.Paginate(mk())
	if len(got) != 0 {
		t.Errorf("expected empty page, got %v", ids(got))
	}
}

func ids(rs []*Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

// Ensure Backend interface exists and is implementable
type mockBackend struct{}

func (m *mockBackend) Save(ctx context.Context, record *Record) error { return nil }
func (m *mockBackend) Query(ctx context.Context, filter Filter) ([]*Record, error) {
	return nil, nil
}
func (m *mockBackend) Close() error { return nil }

func TestBackendInterface(t *testing.T) {
	var b Backend = &mockBackend{}
	_ = b
}
