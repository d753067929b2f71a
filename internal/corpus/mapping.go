package corpus

import (
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JaimeStill/lading/internal/freight"
	"github.com/JaimeStill/lading/pkg/query"
	"github.com/JaimeStill/lading/pkg/repository"
)

const columns = `id, title, category, content, un_number, hazard_class, packing_group,
		proper_shipping_name, part, source_key, page_count, embedding, embedding_strategy,
		created_at, updated_at`

var projection = query.
	NewProjectionMap("public", "reference_documents", "rd").
	Project("id", "ID").
	Project("title", "Title").
	Project("category", "Category").
	Project("content", "Content").
	Project("un_number", "UNNumber").
	Project("hazard_class", "HazardClass").
	Project("packing_group", "PackingGroup").
	Project("proper_shipping_name", "ProperShippingName").
	Project("part", "Part").
	Project("source_key", "SourceKey").
	Project("page_count", "PageCount").
	Project("embedding", "Embedding").
	Project("embedding_strategy", "EmbeddingStrategy").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "Title"}

// Filters contains optional filtering criteria for corpus listings.
type Filters struct {
	Category    *Category `json:"category,omitempty"`
	UNNumber    *string   `json:"unNumber,omitempty"`
	HazardClass *string   `json:"hazardClass,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	var category *string
	if f.Category != nil {
		c := string(*f.Category)
		category = &c
	}
	return b.
		WhereEquals("Category", category).
		WhereEquals("UNNumber", f.UNNumber).
		WhereEquals("HazardClass", f.HazardClass)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if v := values.Get("category"); v != "" {
		c := Category(v)
		if !c.Valid() {
			return f, fmt.Errorf("%w: unknown category %q", ErrInvalid, v)
		}
		f.Category = &c
	}

	if v := values.Get("unNumber"); v != "" {
		un, ok := freight.ParseUNNumber(v)
		if !ok {
			return f, fmt.Errorf("%w: malformed unNumber %q", ErrInvalid, v)
		}
		f.UNNumber = &un
	}

	if v := values.Get("hazardClass"); v != "" {
		hc := freight.NormalizeHazardClass(v)
		f.HazardClass = &hc
	}

	return f, nil
}

// entryScanner returns a ScanFunc that decodes embeddings through m. A
// pgtype.Map memoizes plans and must not be shared across goroutines.
func entryScanner(m *pgtype.Map) repository.ScanFunc[Entry] {
	return func(s repository.Scanner) (Entry, error) {
		var e Entry
		var category string

		err := s.Scan(
			&e.ID,
			&e.Title,
			&category,
			&e.Content,
			&e.Metadata.UNNumber,
			&e.Metadata.HazardClass,
			&e.Metadata.PackingGroup,
			&e.Metadata.ProperShippingName,
			&e.Metadata.Part,
			&e.SourceKey,
			&e.PageCount,
			m.SQLScanner(&e.Embedding),
			&e.EmbeddingStrategy,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		e.Category = Category(category)
		return e, err
	}
}

// encodeVector renders v as a float8[] text literal.
func encodeVector(m *pgtype.Map, v []float64) (string, error) {
	buf, err := m.Encode(pgtype.Float8ArrayOID, pgtype.TextFormatCode, v, nil)
	if err != nil {
		return "", fmt.Errorf("encode embedding: %w", err)
	}
	return string(buf), nil
}
