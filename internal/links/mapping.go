package links

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/lading/internal/freight"
	"github.com/JaimeStill/lading/pkg/query"
	"github.com/JaimeStill/lading/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "product_freight_links", "l").
	Project("id", "ID").
	Project("product_id", "ProductID").
	Project("classification_id", "ClassificationID").
	Project("override_freight_class", "OverrideFreightClass").
	Project("override_packaging", "OverridePackaging").
	Project("confidence_score", "ConfidenceScore").
	Project("link_source", "LinkSource").
	Project("is_approved", "IsApproved").
	Project("approved_by", "ApprovedBy").
	Project("approved_at", "ApprovedAt").
	Project("created_by", "CreatedBy").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "products", "p", "JOIN", "p.id = l.product_id").
	Project("sku", "ProductSKU").
	Project("name", "ProductName").
	Project("is_hazardous", "ProductIsHazardous").
	Project("un_number", "ProductUNNumber").
	Join("public", "freight_classifications", "fc", "JOIN", "fc.id = l.classification_id").
	Project("description", "Description").
	Project("nmfc_code", "NMFCCode").
	Project("nmfc_sub", "NMFCSub").
	Project("freight_class", "FreightClass").
	Project("is_hazmat", "IsHazmat").
	Project("hazmat_class", "HazmatClass").
	Project("packing_group", "PackingGroup").
	Project("min_density", "MinDensity").
	Project("max_density", "MaxDensity").
	Project("created_at", "ClassificationCreatedAt").
	Project("updated_at", "ClassificationUpdatedAt")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

// Filters contains optional filtering criteria for link queries.
type Filters struct {
	ProductID        *uuid.UUID `json:"productId,omitempty"`
	ClassificationID *uuid.UUID `json:"classificationId,omitempty"`
	Approved         *bool      `json:"approved,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("ProductID", f.ProductID).
		WhereEquals("ClassificationID", f.ClassificationID).
		WhereEquals("IsApproved", f.Approved)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Malformed values are rejected so a typo never widens a listing.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if v := values.Get("productId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, fmt.Errorf("%w: productId: %w", ErrInvalid, err)
		}
		f.ProductID = &id
	}

	if v := values.Get("classificationId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, fmt.Errorf("%w: classificationId: %w", ErrInvalid, err)
		}
		f.ClassificationID = &id
	}

	if v := values.Get("approved"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("%w: approved: %w", ErrInvalid, err)
		}
		f.Approved = &b
	}

	return f, nil
}

func (f Filters) key() string {
	approved := "*"
	if f.Approved != nil {
		approved = strconv.FormatBool(*f.Approved)
	}
	return idKey(f.ProductID) + ":" + idKey(f.ClassificationID) + ":" + approved
}

func idKey(id *uuid.UUID) string {
	if id == nil {
		return "*"
	}
	return id.String()
}

func scanRow(s repository.Scanner) (Row, error) {
	var r Row
	var source, class string

	err := s.Scan(
		&r.ID,
		&r.ProductID,
		&r.ClassificationID,
		&r.OverrideFreightClass,
		&r.OverridePackaging,
		&r.ConfidenceScore,
		&source,
		&r.IsApproved,
		&r.ApprovedBy,
		&r.ApprovedAt,
		&r.CreatedBy,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.Product.SKU,
		&r.Product.Name,
		&r.Product.IsHazardous,
		&r.Product.UNNumber,
		&r.Classification.Description,
		&r.Classification.NMFCCode,
		&r.Classification.NMFCSub,
		&class,
		&r.Classification.IsHazmat,
		&r.Classification.HazmatClass,
		&r.Classification.PackingGroup,
		&r.Classification.MinDensity,
		&r.Classification.MaxDensity,
		&r.Classification.CreatedAt,
		&r.Classification.UpdatedAt,
	)
	if err != nil {
		return r, err
	}

	r.LinkSource = Source(source)
	r.Product.ID = r.ProductID
	r.Classification.ID = r.ClassificationID
	r.Classification.FreightClass = freight.Class(class)
	return r, nil
}
