package serp

import "context"

// Searcher returns up to limit organic results for a search term, across as
// many result pages as needed.
type Searcher interface {
	Search(ctx context.Context, term string, limit int) ([]Result, error)
}

// QueryFunc runs a single page query. (*Client).Query is one.
type QueryFunc func(ctx context.Context, u URL) (*Page, error)
