package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/lading/internal/corpus"
	"github.com/JaimeStill/lading/internal/freight"
	"github.com/JaimeStill/lading/internal/links"
)

// DescribeRequest is a free-text product or chemical description.
type DescribeRequest struct {
	Text          string               `json:"text"`
	TransportMode corpus.TransportMode `json:"transportMode,omitempty"`
	Limit         int                  `json:"limit,omitempty"`
}

// DescribeResponse carries the corpus matches for a description and, when
// the top match names a hazard class or UN number, a hazmat suggestion.
type DescribeResponse struct {
	Success          bool                   `json:"success"`
	Source           links.Source           `json:"source,omitempty"`
	IsHazmat         bool                   `json:"isHazmat"`
	Suggestion       *Suggestion            `json:"suggestion,omitempty"`
	RequiresDOT      bool                   `json:"requiresDOT,omitempty"`
	RequiresPlacards bool                   `json:"requiresPlacards,omitempty"`
	Search           *corpus.SearchResponse `json:"search"`
}

func (s *service) Describe(ctx context.Context, req DescribeRequest) (*DescribeResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, &ValidationError{Field: "text", Message: "required"}
	}

	threshold := s.describeThreshold
	search, err := s.corpus.Search(ctx, corpus.SearchRequest{
		Query:         text,
		Threshold:     &threshold,
		TransportMode: req.TransportMode,
		Limit:         req.Limit,
	})
	if err != nil {
		return nil, err
	}

	resp := &DescribeResponse{Success: true, Search: search}

	d := search.Derived
	if d == nil || (d.HazardClass == nil && d.UNNumber == nil) {
		s.logger.Info("description matched no hazmat reference", "results", len(search.Results))
		return resp, nil
	}

	suggestion, err := s.fromDerived(ctx, d, search.Results[0].Similarity)
	if err != nil {
		return nil, err
	}

	resp.Source = links.SourceSuggested
	resp.IsHazmat = true
	resp.Suggestion = suggestion
	resp.RequiresDOT = true
	resp.RequiresPlacards = true

	s.logger.Info(
		"description resolved",
		"strategy", search.Strategy,
		"fallback", search.Fallback,
		"freight_class", suggestion.FreightClass,
	)
	return resp, nil
}

func (s *service) fromDerived(ctx context.Context, d *corpus.Derived, similarity float64) (*Suggestion, error) {
	var hc, un, pg, psn string
	if d.HazardClass != nil {
		hc = freight.NormalizeHazardClass(*d.HazardClass)
	}
	if d.UNNumber != nil {
		un = *d.UNNumber
	}
	if d.PackingGroup != nil {
		pg = *d.PackingGroup
	}
	if d.ProperShippingName != nil {
		psn = *d.ProperShippingName
	}

	if hc == "" {
		resolved, err := s.resolver.hazardClassForUN(ctx, un)
		if err != nil {
			return nil, err
		}
		hc = resolved
	}

	rule, match := freight.HazmatRuleFor(hc)
	var note string
	if match != freight.MatchExact {
		note = fmt.Sprintf("hazard class %q resolved by %s rule", hc, match)
	}

	return &Suggestion{
		NMFCCode:           rule.NMFC,
		FreightClass:       rule.Class,
		Description:        rule.Name,
		Confidence:         min(1, HazmatConfidence*similarity),
		Label:              "Hazmat Class " + rule.HazardClass,
		HazardClass:        optional(hc),
		PackingGroup:       optional(pg),
		UNNumber:           optional(un),
		ProperShippingName: optional(psn),
		Note:               note,
	}, nil
}
