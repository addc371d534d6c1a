package storage

import (
	"context"
	"time"
)

// Outcome is how a query ended.
type Outcome string

const (
	OutcomePage            Outcome = "page"
	OutcomeCaptcha         Outcome = "captcha"
	OutcomeInvalidResponse Outcome = "invalid_response"
	OutcomeTransportError  Outcome = "transport_error"
)

// Record is the audit entry for a single search query.
type Record struct {
	ID            string        `json:"id"`
	URL           string        `json:"url"`
	SearchTerm    string        `json:"search_term"`
	Outcome       Outcome       `json:"outcome"`
	StatusCode    int           `json:"status_code"` // 0 when no HTTP response arrived
	DetectedIP    string        `json:"detected_ip,omitempty"`
	CaptchaSource string        `json:"captcha_source,omitempty"`
	ResultCount   int           `json:"result_count"`
	Duration      time.Duration `json:"duration"`
	CreatedAt     time.Time     `json:"created_at"`
	Error         string        `json:"error,omitempty"`
}

// Filter allows querying for specific Records.
type Filter struct {
	URL     string
	Outcome Outcome
	Since   *time.Time
	Limit   int
	Offset  int
}

// Match reports whether r passes the filter's predicates. Limit and Offset
// are not considered.
func (f Filter) Match(r *Record) bool {
	if f.URL != "" && r.URL != f.URL {
		return false
	}
	if f.Outcome != "" && r.Outcome != f.Outcome {
		return false
	}
	if f.Since != nil && r.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

// Paginate takes records in insertion order, reverses them to newest first
// and applies Offset and Limit. File-based backends use it after filtering.
func (f Filter) Paginate(records []*Record) []*Record {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	if f.Offset > 0 {
		if f.Offset >= len(records) {
			return []*Record{}
		}
		records = records[f.Offset:]
	}

	if f.Limit > 0 && f.Limit < len(records) {
		records = records[:f.Limit]
	}
	return records
}

// Backend defines the interface for storing and querying query records.
type Backend interface {
	Save(ctx context.Context, record *Record) error
	Query(ctx context.Context, filter Filter) ([]*Record, error)
	Close() error
}
