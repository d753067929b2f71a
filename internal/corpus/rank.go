package corpus

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/JaimeStill/lading/internal/freight"
	"github.com/JaimeStill/lading/pkg/embedding"
)

const (
	// UNBoost multiplies the score of an entry whose metadata UN number
	// equals the queried one.
	UNBoost = 1.5
	// TransportBoost multiplies the score of regulation text whose part
	// governs the requested transport mode.
	TransportBoost = 1.3
)

const snippetLen = 200

// TransportMode narrows regulation text to the part governing a carrier type.
type TransportMode string

const (
	TransportHighway TransportMode = "highway"
	TransportRail    TransportMode = "rail"
	TransportAir     TransportMode = "air"
	TransportVessel  TransportMode = "vessel"
)

var transportParts = map[TransportMode]string{
	TransportHighway: "177",
	TransportRail:    "174",
	TransportAir:     "175",
	TransportVessel:  "176",
}

// Part returns the regulation part for m.
func (m TransportMode) Part() (string, bool) {
	p, ok := transportParts[m]
	return p, ok
}

// Match records how a result was scored.
type Match string

const (
	MatchUNMetadata Match = "un-metadata"
	MatchUNText     Match = "un-text"
	MatchSimilarity Match = "similarity"
	// MatchLexical scores an entry embedded by a different strategy than
	// the query, comparing hash vectors of both texts.
	MatchLexical Match = "lexical"
)

// Query is the input to Rank. When UNNumber is set entries are scored by
// UN number; otherwise by cosine similarity against Vector. Strategy names
// the embedding strategy that produced Vector; entries embedded by another
// strategy are compared through hash vectors of their text instead.
type Query struct {
	Text      string
	UNNumber  string
	Vector    []float64
	Strategy  string
	Threshold float64
	Transport TransportMode
	Limit     int
}

// Result is a ranked entry.
type Result struct {
	Entry Entry `json:"entry"`
	// Score is Similarity after boosts.
	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
	Match      Match   `json:"match"`
	Boosted    bool    `json:"boosted"`
	Snippet    string  `json:"snippet"`
}

// Group is the ranked results of one category.
type Group struct {
	Category Category `json:"category"`
	Results  []Result `json:"results"`
}

// Derived carries the hazmat fields read from the top result's metadata.
type Derived struct {
	UNNumber           *string `json:"unNumber,omitempty"`
	HazardClass        *string `json:"hazardClass,omitempty"`
	PackingGroup       *string `json:"packingGroup,omitempty"`
	ProperShippingName *string `json:"properShippingName,omitempty"`
}

// Rank scores entries against q and returns at most q.Limit results,
// highest score first. Similarity results below q.Threshold are dropped
// before boosts apply. Entries are not modified.
func Rank(q Query, entries []Entry) []Result {
	part, transport := q.Transport.Part()
	terms := snippetTerms(q)
	lex := &lexical{hash: embedding.NewHash(len(q.Vector)), text: q.Text}
	unText, _ := freight.UNNumberMatcher(q.UNNumber)

	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		r, ok := score(q, e, lex, unText)
		if !ok {
			continue
		}

		if transport && e.Category == CategoryRegulation &&
			e.Metadata.Part != nil && *e.Metadata.Part == part {
			r.Score *= TransportBoost
			r.Boosted = true
		}

		r.Snippet = snippet(e.Content, terms)
		results = append(results, r)
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.Entry.Title, b.Entry.Title)
	})

	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results
}

func score(q Query, e Entry, lex *lexical, unText *regexp.Regexp) (Result, bool) {
	if q.UNNumber != "" {
		if e.Metadata.UNNumber != nil && *e.Metadata.UNNumber == q.UNNumber {
			return Result{Entry: e, Similarity: 1, Score: UNBoost, Match: MatchUNMetadata}, true
		}
		if unText != nil && (unText.MatchString(e.Content) || unText.MatchString(e.Title)) {
			return Result{Entry: e, Similarity: 1, Score: 1, Match: MatchUNText}, true
		}
		return Result{}, false
	}

	sim, match := embedding.Cosine(q.Vector, e.Embedding), MatchSimilarity
	if q.Strategy != "" && e.EmbeddingStrategy != q.Strategy {
		sim, match = lex.cosine(e), MatchLexical
	}
	if sim < q.Threshold {
		return Result{}, false
	}
	return Result{Entry: e, Similarity: sim, Score: sim, Match: match}, true
}

// lexical hashes the query text once per Rank call.
type lexical struct {
	hash  *embedding.Hash
	text  string
	query []float64
}

func (l *lexical) cosine(e Entry) float64 {
	if l.query == nil {
		l.query = l.hash.Vector(l.text)
	}
	return embedding.Cosine(l.query, l.hash.Vector(e.indexText()))
}

// GroupResults partitions ranked results by category, keeping rank order
// within each group. Empty categories are omitted.
func GroupResults(results []Result) []Group {
	groups := make([]Group, 0, len(categories))
	for _, c := range categories {
		var g []Result
		for _, r := range results {
			if r.Entry.Category == c {
				g = append(g, r)
			}
		}
		if len(g) > 0 {
			groups = append(groups, Group{Category: c, Results: g})
		}
	}
	return groups
}

// Derive reads hazmat fields from the top result. It returns nil when there
// are no results or the top result carries none of the fields.
func Derive(results []Result) *Derived {
	if len(results) == 0 {
		return nil
	}
	m := results[0].Entry.Metadata
	if m.UNNumber == nil && m.HazardClass == nil && m.PackingGroup == nil && m.ProperShippingName == nil {
		return nil
	}
	return &Derived{
		UNNumber:           m.UNNumber,
		HazardClass:        m.HazardClass,
		PackingGroup:       m.PackingGroup,
		ProperShippingName: m.ProperShippingName,
	}
}

func snippetTerms(q Query) []string {
	if q.UNNumber != "" {
		return []string{strings.TrimPrefix(q.UNNumber, "UN")}
	}
	var terms []string
	for _, f := range strings.Fields(q.Text) {
		if len(f) >= 3 {
			terms = append(terms, f)
		}
	}
	return terms
}

// snippet returns up to snippetLen bytes of content, starting shortly
// before the first term found.
func snippet(content string, terms []string) string {
	content = strings.Join(strings.Fields(content), " ")
	if len(content) <= snippetLen {
		return content
	}

	lower := strings.ToLower(content)
	start := 0
	for _, t := range terms {
		if i := strings.Index(lower, strings.ToLower(t)); i >= 0 {
			start = max(0, i-snippetLen/4)
			break
		}
	}
	start = min(start, len(content)-snippetLen)
	end := start + snippetLen

	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}

	s := content[start:end]
	if start > 0 {
		s = "..." + s
	}
	if end < len(content) {
		s += "..."
	}
	return s
}
