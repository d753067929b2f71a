// Package links persists product-to-classification links and enforces the
// approval workflow around them: one link per pair, hazardous products only
// link to hazmat classifications, and approval requires the hazmat flags of
// product and classification to agree.
package links

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lading/internal/classifications"
	"github.com/JaimeStill/lading/internal/freight"
)

// Source records how a link was produced.
type Source string

const (
	SourceManual    Source = "manual"
	SourceDensity   Source = "density-calculation"
	SourceHazmat    Source = "hazmat-classification"
	SourceSaved     Source = "saved-classification"
	SourceSuggested Source = "rag-suggestion"
)

// Valid reports whether s is a known link source.
func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceDensity, SourceHazmat, SourceSaved, SourceSuggested:
		return true
	}
	return false
}

// Link is a stored product-to-classification link.
type Link struct {
	ID                   uuid.UUID  `json:"id"`
	ProductID            uuid.UUID  `json:"productId"`
	ClassificationID     uuid.UUID  `json:"classificationId"`
	OverrideFreightClass *string    `json:"overrideFreightClass"`
	OverridePackaging    *string    `json:"overridePackaging"`
	ConfidenceScore      *float64   `json:"confidenceScore"`
	LinkSource           Source     `json:"linkSource"`
	IsApproved           bool       `json:"isApproved"`
	ApprovedBy           *string    `json:"approvedBy"`
	ApprovedAt           *time.Time `json:"approvedAt"`
	CreatedBy            *string    `json:"createdBy"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// Product is the subset of catalog fields carried on a joined row.
type Product struct {
	ID          uuid.UUID `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	IsHazardous bool      `json:"isHazardous"`
	UNNumber    *string   `json:"unNumber"`
}

// Row is a link joined with its product and classification.
type Row struct {
	Link
	Product        Product                        `json:"product"`
	Classification classifications.Classification `json:"classification"`
}

// CreateCommand carries the fields of a new link.
type CreateCommand struct {
	ProductID            uuid.UUID `json:"productId"`
	ClassificationID     uuid.UUID `json:"classificationId"`
	OverrideFreightClass *string   `json:"overrideFreightClass"`
	OverridePackaging    *string   `json:"overridePackaging"`
	ConfidenceScore      *float64  `json:"confidenceScore"`
	LinkSource           Source    `json:"linkSource"`
	IsApproved           bool      `json:"isApproved"`
	ApprovedBy           *string   `json:"approvedBy"`
	CreatedBy            *string   `json:"createdBy"`
}

// UpdateCommand is a partial update. Nil fields are left unchanged.
// Setting IsApproved true stamps approvedAt; setting it false clears the approval.
// ApprovedBy is ignored unless the link is approved once the update applies.
type UpdateCommand struct {
	ID                   uuid.UUID `json:"id"`
	OverrideFreightClass *string   `json:"overrideFreightClass"`
	OverridePackaging    *string   `json:"overridePackaging"`
	ConfidenceScore      *float64  `json:"confidenceScore"`
	IsApproved           *bool     `json:"isApproved"`
	ApprovedBy           *string   `json:"approvedBy"`
}

// DeleteCommand identifies the link to remove.
type DeleteCommand struct {
	ID uuid.UUID `json:"id"`
}

func (c *CreateCommand) validate() error {
	if c.ProductID == uuid.Nil {
		return fmt.Errorf("%w: productId required", ErrInvalid)
	}
	if c.ClassificationID == uuid.Nil {
		return fmt.Errorf("%w: classificationId required", ErrInvalid)
	}
	if c.LinkSource == "" {
		c.LinkSource = SourceManual
	}
	if !c.LinkSource.Valid() {
		return fmt.Errorf("%w: unknown linkSource %q", ErrInvalid, c.LinkSource)
	}
	return validateShared(&c.OverrideFreightClass, c.ConfidenceScore)
}

func (c *UpdateCommand) validate() error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("%w: id required", ErrInvalid)
	}
	return validateShared(&c.OverrideFreightClass, c.ConfidenceScore)
}

func validateShared(override **string, confidence *float64) error {
	if *override != nil {
		class, err := freight.ParseClass(**override)
		if err != nil {
			return fmt.Errorf("%w: overrideFreightClass: %w", ErrInvalid, err)
		}
		s := string(class)
		*override = &s
	}
	if confidence != nil && (*confidence < 0 || *confidence > 1) {
		return fmt.Errorf("%w: confidenceScore must be between 0 and 1", ErrInvalid)
	}
	return nil
}
