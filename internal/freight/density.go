package freight

import "math"

// DensityNMFC is the base NMFC item used for every density-rated result.
const DensityNMFC = "156600"

const cubicInchesPerFoot = 1728.0

// Dimensions describes a shipment line for density rating.
// Weight is pounds per unit; Length, Width, and Height are inches per unit.
type Dimensions struct {
	Weight   float64 `json:"weight"`
	Length   float64 `json:"length"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Quantity int     `json:"quantity"`
}

// Missing returns the names of fields that are absent or not strictly positive,
// in the order weight, length, width, height, quantity.
func (d Dimensions) Missing() []string {
	var missing []string
	if !positive(d.Weight) {
		missing = append(missing, "weight")
	}
	if !positive(d.Length) {
		missing = append(missing, "length")
	}
	if !positive(d.Width) {
		missing = append(missing, "width")
	}
	if !positive(d.Height) {
		missing = append(missing, "height")
	}
	if d.Quantity < 1 {
		missing = append(missing, "quantity")
	}
	return missing
}

// Tier is one row of the density breakpoint table.
type Tier struct {
	MinDensity float64
	Class      Class
	Label      string
	Sub        string
}

// Evaluated top-down; the first MinDensity satisfied by density >= MinDensity wins.
// The zero-threshold row catches everything below 1 lb/ft³.
var tiers = [...]Tier{
	{35, Class50, "Very High Density", "01"},
	{30, Class55, "High Density", "02"},
	{22.5, Class60, "High Density", "02"},
	{15, Class70, "Moderate-High Density", "03"},
	{10.5, Class85, "Moderate Density", "04"},
	{9, Class92_5, "Moderate Density", "04"},
	{7, Class100, "Low-Moderate Density", "05"},
	{5, Class110, "Low Density", "05"},
	{4, Class125, "Low Density", "06"},
	{2, Class150, "Very Low Density", "06"},
	{1, Class175, "Extra Low Density", "07"},
	{math.Inf(-1), Class200, "Ultra Low Density", "07"},
}

// Tiers returns a copy of the breakpoint table in evaluation order.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers[:])
	return out
}

// TierForDensity returns the first tier whose threshold density meets.
func TierForDensity(density float64) Tier {
	for _, t := range tiers {
		if density >= t.MinDensity {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

// DensityResult is the outcome of rating a shipment line by density.
type DensityResult struct {
	CubicFeet float64 `json:"cubicFeet"`
	Density   float64 `json:"density"`
	Tier      Tier    `json:"-"`
	NMFC      string  `json:"nmfcCode"`
	Sub       string  `json:"nmfcSub"`
	Class     Class   `json:"freightClass"`
	Label     string  `json:"label"`
}

// CalculateDensity computes cubic feet and pounds per cubic foot for d.
// Any missing, zero, or negative input yields an *InsufficientDataError.
func CalculateDensity(d Dimensions) (cubicFeet, density float64, err error) {
	if missing := d.Missing(); len(missing) > 0 {
		return 0, 0, &InsufficientDataError{Missing: missing}
	}

	qty := float64(d.Quantity)
	cubicFeet = (d.Length * d.Width * d.Height * qty) / cubicInchesPerFoot
	if !positive(cubicFeet) {
		return 0, 0, &InsufficientDataError{Missing: []string{"length", "width", "height"}}
	}

	density = (d.Weight * qty) / cubicFeet
	return cubicFeet, density, nil
}

// RateByDensity computes density and maps it onto the breakpoint table.
func RateByDensity(d Dimensions) (DensityResult, error) {
	cubicFeet, density, err := CalculateDensity(d)
	if err != nil {
		return DensityResult{}, err
	}

	tier := TierForDensity(density)
	return DensityResult{
		CubicFeet: cubicFeet,
		Density:   density,
		Tier:      tier,
		NMFC:      DensityNMFC,
		Sub:       tier.Sub,
		Class:     tier.Class,
		Label:     tier.Label,
	}, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
