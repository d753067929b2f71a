package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/lading/internal/corpus"
	"github.com/JaimeStill/lading/internal/freight"
	"github.com/JaimeStill/lading/internal/links"
)

// Path confidences.
const (
	SavedConfidence   = 0.95
	HazmatConfidence  = 0.9
	DensityConfidence = 0.85
)

// ApprovedLinks resolves saved classifications and the hazard class of
// products already approved under a UN number.
type ApprovedLinks interface {
	FindApprovedBySKU(ctx context.Context, sku string) (*links.Row, error)
	HazardClassForUN(ctx context.Context, unNumber string) (string, error)
}

// HazardTable resolves a UN number against reference hazard-table entries.
type HazardTable interface {
	LookupHazardClass(ctx context.Context, unNumber string) (string, error)
}

// Suggestion is a proposed classification. It is never persisted here.
type Suggestion struct {
	NMFCCode           string        `json:"nmfcCode"`
	NMFCSub            *string       `json:"nmfcSub"`
	FreightClass       freight.Class `json:"freightClass"`
	Description        string        `json:"description"`
	Confidence         float64       `json:"confidence"`
	Label              string        `json:"label"`
	Density            *float64      `json:"density,omitempty"`
	CubicFeet          *float64      `json:"cubicFeet,omitempty"`
	HazardClass        *string       `json:"hazardClass,omitempty"`
	PackingGroup       *string       `json:"packingGroup,omitempty"`
	UNNumber           *string       `json:"unNumber,omitempty"`
	ProperShippingName *string       `json:"properShippingName,omitempty"`
	Note               string        `json:"note,omitempty"`
	ClassificationID   *uuid.UUID    `json:"classificationId,omitempty"`
	LinkID             *uuid.UUID    `json:"linkId,omitempty"`
}

// Response is the successful outcome of a resolution.
type Response struct {
	Success          bool         `json:"success"`
	Source           links.Source `json:"source"`
	IsHazmat         bool         `json:"isHazmat"`
	Suggestion       Suggestion   `json:"suggestion"`
	RequiresDOT      bool         `json:"requiresDOT,omitempty"`
	RequiresPlacards bool         `json:"requiresPlacards,omitempty"`
}

// Resolver applies the resolution paths in strict priority order:
// saved classification, hazmat rule table, density table.
type Resolver struct {
	links  ApprovedLinks
	hazard HazardTable
	logger *slog.Logger
}

func NewResolver(approved ApprovedLinks, hazard HazardTable, logger *slog.Logger) *Resolver {
	return &Resolver{
		links:  approved,
		hazard: hazard,
		logger: logger.With("system", "resolver"),
	}
}

// Resolve returns the first applicable suggestion, or an
// *InsufficientDataError when no path applies. Hazmat always wins over
// density; hazmat freight classes are never density based.
func (r *Resolver) Resolve(ctx context.Context, in Input) (*Response, error) {
	if in.SKU != "" {
		row, err := r.links.FindApprovedBySKU(ctx, in.SKU)
		switch {
		case err == nil:
			return saved(row), nil
		case !errors.Is(err, links.ErrNotFound):
			return nil, fmt.Errorf("saved classification for %s: %w", in.SKU, err)
		}
	}

	if in.HasHazmatIndicator() {
		return r.hazmat(ctx, in)
	}

	return density(in.Dimensions)
}

func saved(row *links.Row) *Response {
	c := row.Classification

	class := c.FreightClass
	if row.OverrideFreightClass != nil {
		class = freight.Class(*row.OverrideFreightClass)
	}

	confidence := SavedConfidence
	if row.ConfidenceScore != nil {
		confidence = *row.ConfidenceScore
	}

	classificationID, linkID := c.ID, row.ID
	s := Suggestion{
		NMFCCode:         c.NMFCCode,
		NMFCSub:          c.NMFCSub,
		FreightClass:     class,
		Description:      c.Description,
		Confidence:       confidence,
		Label:            "Saved Classification",
		HazardClass:      c.HazmatClass,
		PackingGroup:     c.PackingGroup,
		UNNumber:         row.Product.UNNumber,
		ClassificationID: &classificationID,
		LinkID:           &linkID,
	}

	return &Response{
		Success:          true,
		Source:           links.SourceSaved,
		IsHazmat:         c.IsHazmat,
		Suggestion:       s,
		RequiresDOT:      c.IsHazmat,
		RequiresPlacards: c.IsHazmat,
	}
}

func (r *Resolver) hazmat(ctx context.Context, in Input) (*Response, error) {
	var notes []string

	hc := in.HazardClass
	if hc == "" && in.UNNumber != "" {
		resolved, err := r.hazardClassForUN(ctx, in.UNNumber)
		if err != nil {
			return nil, err
		}
		if resolved == "" {
			notes = append(notes, fmt.Sprintf("no hazard class on record for %s", in.UNNumber))
		}
		hc = resolved
	}

	rule, match := freight.HazmatRuleFor(hc)
	switch {
	case hc == "":
		notes = append(notes, "hazard class unknown; miscellaneous dangerous goods applied")
	case match == freight.MatchMainClass:
		notes = append(notes, fmt.Sprintf("division %s not in rule table; class %s applied", hc, rule.HazardClass))
	case match == freight.MatchDefault:
		notes = append(notes, fmt.Sprintf("hazard class %s not in rule table; miscellaneous dangerous goods applied", hc))
	}
	if len(in.Dimensions.Missing()) == 0 {
		notes = append(notes, "hazmat freight class is rule based; dimensions ignored")
	}

	s := Suggestion{
		NMFCCode:     rule.NMFC,
		FreightClass: rule.Class,
		Description:  rule.Name,
		Confidence:   HazmatConfidence,
		Label:        "Hazmat Class " + rule.HazardClass,
		HazardClass:  optional(hc),
		PackingGroup: optional(in.PackingGroup),
		UNNumber:     optional(in.UNNumber),
		Note:         strings.Join(notes, "; "),
	}
	if in.ProductName != "" {
		s.ProperShippingName = optional(in.ProductName)
	}

	return &Response{
		Success:          true,
		Source:           links.SourceHazmat,
		IsHazmat:         true,
		Suggestion:       s,
		RequiresDOT:      true,
		RequiresPlacards: true,
	}, nil
}

// hazardClassForUN consults the reference hazard table first, then the
// classification approved for a product carrying the UN number. It returns
// "" when neither knows the UN number.
func (r *Resolver) hazardClassForUN(ctx context.Context, un string) (string, error) {
	hc, err := r.hazard.LookupHazardClass(ctx, un)
	if err == nil {
		return freight.NormalizeHazardClass(hc), nil
	}
	if !errors.Is(err, corpus.ErrNotFound) {
		return "", fmt.Errorf("hazard table lookup for %s: %w", un, err)
	}

	hc, err = r.links.HazardClassForUN(ctx, un)
	if err == nil {
		return freight.NormalizeHazardClass(hc), nil
	}
	if !errors.Is(err, links.ErrNotFound) {
		return "", fmt.Errorf("approved product lookup for %s: %w", un, err)
	}

	r.logger.Debug("un number not on record", "un_number", un)
	return "", nil
}

func density(d freight.Dimensions) (*Response, error) {
	res, err := freight.RateByDensity(d)
	if err != nil {
		var missing *freight.InsufficientDataError
		if errors.As(err, &missing) {
			return nil, &InsufficientDataError{MissingFields: MissingFields{
				ForDensity: missing.Missing,
				ForHazmat:  []string{"hazardClass or unNumber"},
			}}
		}
		return nil, err
	}

	sub := res.Sub
	dens, cubic := res.Density, res.CubicFeet
	return &Response{
		Success:  true,
		Source:   links.SourceDensity,
		IsHazmat: false,
		Suggestion: Suggestion{
			NMFCCode:     res.NMFC,
			NMFCSub:      &sub,
			FreightClass: res.Class,
			Description:  fmt.Sprintf("Density-rated freight, %.2f lb/ft³", res.Density),
			Confidence:   DensityConfidence,
			Label:        res.Label,
			Density:      &dens,
			CubicFeet:    &cubic,
		},
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
