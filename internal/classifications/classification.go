// Package classifications manages freight classifications: the NMFC code,
// freight class, and hazmat attributes a product link points at.
// Classifications referenced by links cannot be deleted and cannot change
// their hazmat flag.
package classifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lading/internal/freight"
)

// Classification is a stored freight classification.
type Classification struct {
	ID           uuid.UUID     `json:"id"`
	Description  string        `json:"description"`
	NMFCCode     string        `json:"nmfcCode"`
	NMFCSub      *string       `json:"nmfcSub"`
	FreightClass freight.Class `json:"freightClass"`
	IsHazmat     bool          `json:"isHazmat"`
	HazmatClass  *string       `json:"hazmatClass"`
	PackingGroup *string       `json:"packingGroup"`
	MinDensity   *float64      `json:"minDensity"`
	MaxDensity   *float64      `json:"maxDensity"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Command carries the fields of a classification for create and update.
type Command struct {
	Description  string   `json:"description"`
	NMFCCode     string   `json:"nmfcCode"`
	NMFCSub      *string  `json:"nmfcSub"`
	FreightClass string   `json:"freightClass"`
	IsHazmat     bool     `json:"isHazmat"`
	HazmatClass  *string  `json:"hazmatClass"`
	PackingGroup *string  `json:"packingGroup"`
	MinDensity   *float64 `json:"minDensity"`
	MaxDensity   *float64 `json:"maxDensity"`
}

// normalized is a validated Command ready for persistence.
type normalized struct {
	Command
	class freight.Class
}

func (c Command) validate() (normalized, error) {
	n := normalized{Command: c}
	n.Description = strings.TrimSpace(c.Description)
	n.NMFCCode = strings.TrimSpace(c.NMFCCode)

	if n.Description == "" {
		return n, fmt.Errorf("%w: description required", ErrInvalid)
	}
	if n.NMFCCode == "" {
		return n, fmt.Errorf("%w: nmfcCode required", ErrInvalid)
	}

	class, err := freight.ParseClass(c.FreightClass)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	n.class = class

	if c.HazmatClass != nil {
		hc := freight.NormalizeHazardClass(*c.HazmatClass)
		if hc == "" {
			n.HazmatClass = nil
		} else {
			n.HazmatClass = &hc
		}
	}
	if c.IsHazmat && n.HazmatClass == nil {
		return n, fmt.Errorf("%w: hazmatClass required when isHazmat is true", ErrInvalid)
	}

	if c.PackingGroup != nil {
		pg := freight.NormalizePackingGroup(*c.PackingGroup)
		if pg != "I" && pg != "II" && pg != "III" {
			return n, fmt.Errorf("%w: packingGroup must be I, II, or III", ErrInvalid)
		}
		n.PackingGroup = &pg
	}

	for _, d := range []*float64{c.MinDensity, c.MaxDensity} {
		if d != nil && *d < 0 {
			return n, fmt.Errorf("%w: density bounds must be non-negative", ErrInvalid)
		}
	}
	if c.MinDensity != nil && c.MaxDensity != nil && *c.MinDensity > *c.MaxDensity {
		return n, fmt.Errorf("%w: minDensity exceeds maxDensity", ErrInvalid)
	}

	return n, nil
}

func (n normalized) args() []any {
	return []any{
		n.Description,
		n.NMFCCode,
		n.NMFCSub,
		string(n.class),
		n.IsHazmat,
		n.HazmatClass,
		n.PackingGroup,
		n.MinDensity,
		n.MaxDensity,
	}
}
