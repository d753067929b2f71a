package classifications

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/lading/internal/freight"
	"github.com/JaimeStill/lading/pkg/query"
	"github.com/JaimeStill/lading/pkg/repository"
)

const returning = `RETURNING id, description, nmfc_code, nmfc_sub, freight_class, is_hazmat,
		hazmat_class, packing_group, min_density, max_density, created_at, updated_at`

var projection = query.
	NewProjectionMap("public", "freight_classifications", "fc").
	Project("id", "ID").
	Project("description", "Description").
	Project("nmfc_code", "NMFCCode").
	Project("nmfc_sub", "NMFCSub").
	Project("freight_class", "FreightClass").
	Project("is_hazmat", "IsHazmat").
	Project("hazmat_class", "HazmatClass").
	Project("packing_group", "PackingGroup").
	Project("min_density", "MinDensity").
	Project("max_density", "MaxDensity").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "NMFCCode"}

// Filters contains optional filtering criteria for classification queries.
type Filters struct {
	IsHazmat     *bool   `json:"isHazmat,omitempty"`
	FreightClass *string `json:"freightClass,omitempty"`
	HazmatClass  *string `json:"hazmatClass,omitempty"`
	NMFCCode     *string `json:"nmfcCode,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("IsHazmat", f.IsHazmat).
		WhereEquals("FreightClass", f.FreightClass).
		WhereEquals("HazmatClass", f.HazmatClass).
		WhereEquals("NMFCCode", f.NMFCCode)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("isHazmat"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.IsHazmat = &b
		}
	}

	if v := values.Get("freightClass"); v != "" {
		if c, err := freight.ParseClass(v); err == nil {
			s := string(c)
			f.FreightClass = &s
		}
	}

	if v := values.Get("hazmatClass"); v != "" {
		hc := freight.NormalizeHazardClass(v)
		f.HazmatClass = &hc
	}

	if v := values.Get("nmfcCode"); v != "" {
		f.NMFCCode = &v
	}

	return f
}

func scanClassification(s repository.Scanner) (Classification, error) {
	var c Classification
	var class string

	err := s.Scan(
		&c.ID,
		&c.Description,
		&c.NMFCCode,
		&c.NMFCSub,
		&class,
		&c.IsHazmat,
		&c.HazmatClass,
		&c.PackingGroup,
		&c.MinDensity,
		&c.MaxDensity,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	c.FreightClass = freight.Class(class)
	return c, err
}
