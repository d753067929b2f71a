package products

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/lading/pkg/query"
	"github.com/JaimeStill/lading/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "products", "p").
	Project("id", "ID").
	Project("sku", "SKU").
	Project("name", "Name").
	Project("description", "Description").
	Project("is_hazardous", "IsHazardous").
	Project("un_number", "UNNumber").
	Project("cas_number", "CASNumber").
	Project("weight", "Weight").
	Project("length", "Length").
	Project("width", "Width").
	Project("height", "Height").
	Project("is_active", "IsActive").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "SKU"}

const unclassifiedClause = `NOT EXISTS (
	SELECT 1 FROM public.product_freight_links l
	WHERE l.product_id = p.id AND l.is_approved
)`

// Filters contains optional filtering criteria for product queries.
type Filters struct {
	IsHazardous *bool   `json:"isHazardous,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
	UNNumber    *string `json:"unNumber,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("IsHazardous", f.IsHazardous).
		WhereEquals("IsActive", f.IsActive).
		WhereEquals("UNNumber", f.UNNumber)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unparseable booleans are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("isHazardous"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.IsHazardous = &b
		}
	}

	if v := values.Get("isActive"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.IsActive = &b
		}
	}

	if v := values.Get("unNumber"); v != "" {
		f.UNNumber = &v
	}

	return f
}

func scanProduct(s repository.Scanner) (Product, error) {
	var p Product
	err := s.Scan(
		&p.ID,
		&p.SKU,
		&p.Name,
		&p.Description,
		&p.IsHazardous,
		&p.UNNumber,
		&p.CASNumber,
		&p.Weight,
		&p.Length,
		&p.Width,
		&p.Height,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
