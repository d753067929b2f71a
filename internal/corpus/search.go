package corpus

import (
	"fmt"
	"strings"
)

// StrategyUNNumber reports a search answered by UN number lookup.
const StrategyUNNumber = "un-number"

// SearchRequest is the input to System.Search. A nil Threshold uses the
// configured search threshold.
type SearchRequest struct {
	Query         string        `json:"query"`
	Threshold     *float64      `json:"threshold,omitempty"`
	TransportMode TransportMode `json:"transportMode,omitempty"`
	Category      Category      `json:"category,omitempty"`
	Limit         int           `json:"limit,omitempty"`
}

// SearchResponse is the ranked outcome of a search.
type SearchResponse struct {
	Query     string   `json:"query"`
	UNNumber  *string  `json:"unNumber,omitempty"`
	Strategy  string   `json:"strategy"`
	Fallback  bool     `json:"fallback"`
	Threshold float64  `json:"threshold"`
	Results   []Result `json:"results"`
	Groups    []Group  `json:"groups"`
	Derived   *Derived `json:"derived,omitempty"`
}

func (r SearchRequest) query(cfg Config) (Query, error) {
	q := Query{
		Text:      strings.TrimSpace(r.Query),
		Threshold: cfg.SearchThreshold,
		Transport: r.TransportMode,
		Limit:     r.Limit,
	}

	if q.Text == "" {
		return q, fmt.Errorf("%w: query required", ErrInvalid)
	}
	if r.Threshold != nil {
		if *r.Threshold < 0 || *r.Threshold > 1 {
			return q, fmt.Errorf("%w: threshold must be between 0 and 1", ErrInvalid)
		}
		q.Threshold = *r.Threshold
	}
	if q.Transport != "" {
		if _, ok := q.Transport.Part(); !ok {
			return q, fmt.Errorf("%w: unknown transportMode %q", ErrInvalid, q.Transport)
		}
	}
	if r.Category != "" && !r.Category.Valid() {
		return q, fmt.Errorf("%w: unknown category %q", ErrInvalid, r.Category)
	}
	if q.Limit <= 0 {
		q.Limit = cfg.DefaultLimit
	}
	q.Limit = min(q.Limit, cfg.MaxLimit)

	return q, nil
}

func newSearchResponse(q Query, strategy string, results []Result) *SearchResponse {
	resp := &SearchResponse{
		Query:     q.Text,
		Strategy:  strategy,
		Threshold: q.Threshold,
		Results:   results,
		Groups:    GroupResults(results),
		Derived:   Derive(results),
	}
	if q.UNNumber != "" {
		un := q.UNNumber
		resp.UNNumber = &un
	}
	return resp
}
