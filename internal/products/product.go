// Package products provides read access to the product catalog consumed by
// classification: lookup by id or SKU, filtered listing, and the cached view
// of active products that have no approved freight classification.
package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lading/internal/freight"
)

// Product is a catalog item. Dimensions are in pounds and inches and are nil
// when the catalog does not record them.
type Product struct {
	ID          uuid.UUID `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsHazardous bool      `json:"isHazardous"`
	UNNumber    *string   `json:"unNumber"`
	CASNumber   *string   `json:"casNumber"`
	Weight      *float64  `json:"weight"`
	Length      *float64  `json:"length"`
	Width       *float64  `json:"width"`
	Height      *float64  `json:"height"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Dimensions returns the product's recorded measurements for a single unit.
// Unrecorded values are left zero so density reports them missing.
func (p Product) Dimensions() freight.Dimensions {
	d := freight.Dimensions{Quantity: 1}
	if p.Weight != nil {
		d.Weight = *p.Weight
	}
	if p.Length != nil {
		d.Length = *p.Length
	}
	if p.Width != nil {
		d.Width = *p.Width
	}
	if p.Height != nil {
		d.Height = *p.Height
	}
	return d
}
