// Package corpus stores the reference documents used for similarity
// suggestions: hazard tables, regulation text, emergency guides, and
// catalog descriptions. Entries carry an embedding computed at write time;
// search ranks them against a query by UN number or cosine similarity.
package corpus

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lading/internal/freight"
)

// Category is the source category of a corpus entry.
type Category string

const (
	CategoryHazardTable Category = "hazard-table"
	CategoryRegulation  Category = "regulation-text"
	CategoryEmergency   Category = "emergency-guide"
	CategoryCatalog     Category = "product-catalog"
)

// Grouped results are emitted in this order.
var categories = [...]Category{
	CategoryHazardTable,
	CategoryRegulation,
	CategoryEmergency,
	CategoryCatalog,
}

// Categories returns the known categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories[:])
	return out
}

func (c Category) Valid() bool {
	for _, k := range categories {
		if c == k {
			return true
		}
	}
	return false
}

// Metadata holds the structured fields extracted from a reference source.
type Metadata struct {
	UNNumber           *string `json:"unNumber,omitempty"`
	HazardClass        *string `json:"hazardClass,omitempty"`
	PackingGroup       *string `json:"packingGroup,omitempty"`
	ProperShippingName *string `json:"properShippingName,omitempty"`
	// Part is the regulation part (e.g. "177" for highway carriage).
	Part *string `json:"part,omitempty"`
}

// Entry is a stored corpus document.
type Entry struct {
	ID                uuid.UUID `json:"id"`
	Title             string    `json:"title"`
	Category          Category  `json:"category"`
	Content           string    `json:"content"`
	Metadata          Metadata  `json:"metadata"`
	SourceKey         *string   `json:"sourceKey"`
	PageCount         *int      `json:"pageCount"`
	EmbeddingStrategy string    `json:"embeddingStrategy"`
	Embedding         []float64 `json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// CreateCommand carries a new entry. It is also the line format of a
// JSON-lines corpus snapshot.
type CreateCommand struct {
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

func (c *CreateCommand) validate() error {
	c.Title = strings.TrimSpace(c.Title)
	c.Content = strings.TrimSpace(c.Content)

	if c.Title == "" {
		return fmt.Errorf("%w: title required", ErrInvalid)
	}
	if c.Content == "" {
		return fmt.Errorf("%w: content required", ErrInvalid)
	}
	if !c.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalid, c.Category)
	}

	m := &c.Metadata
	if v := trimmed(m.UNNumber); v != nil {
		un, ok := freight.ParseUNNumber(*v)
		if !ok {
			return fmt.Errorf("%w: malformed unNumber %q", ErrInvalid, *v)
		}
		m.UNNumber = &un
	} else {
		m.UNNumber = nil
	}
	if v := trimmed(m.HazardClass); v != nil {
		hc := freight.NormalizeHazardClass(*v)
		m.HazardClass = &hc
	} else {
		m.HazardClass = nil
	}
	if v := trimmed(m.PackingGroup); v != nil {
		pg := freight.NormalizePackingGroup(*v)
		if pg != "I" && pg != "II" && pg != "III" {
			return fmt.Errorf("%w: packingGroup must be I, II, or III", ErrInvalid)
		}
		m.PackingGroup = &pg
	} else {
		m.PackingGroup = nil
	}
	m.ProperShippingName = trimmed(m.ProperShippingName)
	m.Part = trimmed(m.Part)

	return nil
}

// indexText is the text embedded for an entry.
func (c CreateCommand) indexText() string {
	return indexText(c.Title, c.Metadata.ProperShippingName, c.Content)
}

func (e Entry) indexText() string {
	return indexText(e.Title, e.Metadata.ProperShippingName, e.Content)
}

func indexText(title string, properShippingName *string, content string) string {
	parts := []string{title}
	if properShippingName != nil {
		parts = append(parts, *properShippingName)
	}
	parts = append(parts, content)
	return strings.Join(parts, "\n")
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
