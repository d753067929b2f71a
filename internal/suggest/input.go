package suggest

import (
	"math"
	"strings"

	"github.com/JaimeStill/lading/internal/freight"
)

// Request is the wire form of a suggestion request. Every field is optional.
type Request struct {
	SKU          *string  `json:"sku"`
	ProductName  *string  `json:"productName"`
	Weight       *float64 `json:"weight"`
	Length       *float64 `json:"length"`
	Width        *float64 `json:"width"`
	Height       *float64 `json:"height"`
	Quantity     *int     `json:"quantity"`
	IsHazmat     *bool    `json:"isHazmat"`
	HazardClass  *string  `json:"hazardClass"`
	PackingGroup *string  `json:"packingGroup"`
	UNNumber     *string  `json:"unNumber"`
}

// Input is a validated Request. Strings are trimmed and normalized; empty
// means absent. Dimensions are passed through unchecked so the density
// path can report which of them are missing.
type Input struct {
	SKU          string
	ProductName  string
	Dimensions   freight.Dimensions
	IsHazmat     bool
	HazardClass  string
	PackingGroup string
	UNNumber     string
}

// HasHazmatIndicator reports whether the hazmat path applies.
func (in Input) HasHazmatIndicator() bool {
	return in.IsHazmat || in.HazardClass != "" || in.UNNumber != ""
}

// Validate converts r into an Input. Quantity defaults to 1.
func (r Request) Validate() (Input, error) {
	in := Input{
		SKU:         value(r.SKU),
		ProductName: value(r.ProductName),
		HazardClass: freight.NormalizeHazardClass(value(r.HazardClass)),
		Dimensions:  freight.Dimensions{Quantity: 1},
	}

	for _, f := range []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"weight", r.Weight, &in.Dimensions.Weight},
		{"length", r.Length, &in.Dimensions.Length},
		{"width", r.Width, &in.Dimensions.Width},
		{"height", r.Height, &in.Dimensions.Height},
	} {
		if f.src == nil {
			continue
		}
		if math.IsNaN(*f.src) || math.IsInf(*f.src, 0) {
			return in, &ValidationError{Field: f.name, Message: "must be a finite number"}
		}
		*f.dst = *f.src
	}

	if r.Quantity != nil {
		in.Dimensions.Quantity = *r.Quantity
	}
	if r.IsHazmat != nil {
		in.IsHazmat = *r.IsHazmat
	}

	if pg := value(r.PackingGroup); pg != "" {
		in.PackingGroup = freight.NormalizePackingGroup(pg)
		if in.PackingGroup != "I" && in.PackingGroup != "II" && in.PackingGroup != "III" {
			return in, &ValidationError{Field: "packingGroup", Message: "must be I, II, or III"}
		}
	}

	if un := value(r.UNNumber); un != "" {
		parsed, ok := freight.ParseUNNumber(un)
		if !ok {
			return in, &ValidationError{Field: "unNumber", Message: "must be a four-digit UN number"}
		}
		in.UNNumber = parsed
	}

	return in, nil
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
