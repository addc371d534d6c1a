package serp

import (
	"context"
	"errors"
	"fmt"
)

var _ Searcher = (*GoogleSearch)(nil)

// maxSearchPages bounds how far GoogleSearch pages before giving up.
const maxSearchPages = 50

// GoogleSearch pages through Google results with one query per page.
type GoogleSearch struct {
	// Client runs the page queries unless Query is set.
	Client *Client
	// Query overrides Client, e.g. to audit every page query.
	Query QueryFunc
	// Base supplies host and parameters other than the term and page.
	// The zero value means NewURL().
	Base URL
}

// Search stops at the first error and returns the results gathered so far
// along with it. A page without results ends the search early.
func (g *GoogleSearch) Search(ctx context.Context, term string, limit int) ([]Result, error) {
	if limit < 0 {
		return nil, fmt.Errorf("limit cannot be negative: %d", limit)
	}
	query := g.Query
	if query == nil {
		if g.Client == nil {
			return nil, errors.New("serp: google search has no client")
		}
		query = g.Client.Query
	}

	u := g.Base.Clone()
	if u.IsZero() {
		u = NewURL()
	}
	u.SetSearchTerm(term)

	results := make([]Result, 0, limit)
	seen := make(map[string]struct{})

	for page := 1; len(results) < limit && page <= maxSearchPages; page++ {
		u.SetPage(page)
		p, err := query(ctx, u.Clone())
		if err != nil {
			return results, err
		}
		if p == nil {
			break
		}
		added := 0
		for _, r := range p.Results {
			if _, dup := seen[r.URL]; dup {
				continue
			}
			seen[r.URL] = struct{}{}
			r.Position = len(results) + 1
			results = append(results, r)
			added++
			if len(results) == limit {
				break
			}
		}
		if added == 0 {
			break
		}
	}

	return results, nil
}
