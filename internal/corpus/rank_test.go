package corpus_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/lading/internal/corpus"
	"github.com/JaimeStill/lading/pkg/embedding"
)

func ptr[T any](v T) *T { return &v }

func entry(title string, category corpus.Category, vec ...float64) corpus.Entry {
	return corpus.Entry{Title: title, Category: category, Content: title, Embedding: vec}
}

func TestRankUNMetadataBoost(t *testing.T) {
	gasoline := entry("Gasoline", corpus.CategoryHazardTable)
	gasoline.Metadata.UNNumber = ptr("UN1203")
	gasoline.Metadata.HazardClass = ptr("3")

	guide := entry("Guide 128", corpus.CategoryEmergency)
	guide.Content = "Flammable liquids such as UN1203 and UN1993"

	unrelated := entry("Batteries", corpus.CategoryCatalog)

	results := corpus.Rank(corpus.Query{UNNumber: "UN1203"}, []corpus.Entry{guide, unrelated, gasoline})

	require.Len(t, results, 2)
	assert.Equal(t, "Gasoline", results[0].Entry.Title)
	assert.Equal(t, corpus.MatchUNMetadata, results[0].Match)
	assert.InDelta(t, corpus.UNBoost, results[0].Score, 1e-9)
	assert.Equal(t, "Guide 128", results[1].Entry.Title)
	assert.Equal(t, corpus.MatchUNText, results[1].Match)
	assert.InDelta(t, 1.0, results[1].Score, 1e-9)
}

func TestRankUNTextNeedsPrefixedToken(t *testing.T) {
	amendment := entry("Part 173 history", corpus.CategoryRegulation)
	amendment.Content = "Amended at 58 FR 11993, effective 1993."
	amendment.Metadata.HazardClass = ptr("8")

	diesel := entry("Combustible liquids", corpus.CategoryRegulation)
	diesel.Content = "Diesel fuel, UN 1993, may be reclassed as a combustible liquid."

	results := corpus.Rank(corpus.Query{UNNumber: "UN1993"}, []corpus.Entry{amendment})
	assert.Empty(t, results)
	assert.Nil(t, corpus.Derive(results))

	results = corpus.Rank(corpus.Query{UNNumber: "UN1993"}, []corpus.Entry{amendment, diesel})
	require.Len(t, results, 1)
	assert.Equal(t, "Combustible liquids", results[0].Entry.Title)
	assert.Equal(t, corpus.MatchUNText, results[0].Match)
}

func TestRankMixedStrategies(t *testing.T) {
	hash := embedding.NewHash(1024)
	text := "diesel fuel"

	provider := entry("Diesel fuel", corpus.CategoryHazardTable, make([]float64, 1024)...)
	provider.Embedding[0] = 1
	provider.EmbeddingStrategy = embedding.ProviderStrategyName

	same := entry("Lithium batteries", corpus.CategoryCatalog, hash.Vector(text)...)
	same.EmbeddingStrategy = embedding.HashStrategyName

	q := corpus.Query{
		Text:      text,
		Vector:    hash.Vector(text),
		Strategy:  embedding.HashStrategyName,
		Threshold: corpus.DefaultSearchThreshold,
	}
	results := corpus.Rank(q, []corpus.Entry{provider, same})

	require.Len(t, results, 2)
	assert.Equal(t, "Lithium batteries", results[0].Entry.Title)
	assert.Equal(t, corpus.MatchSimilarity, results[0].Match)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)

	assert.Equal(t, "Diesel fuel", results[1].Entry.Title)
	assert.Equal(t, corpus.MatchLexical, results[1].Match)
	assert.Greater(t, results[1].Similarity, 0.8)
}

func TestRankThresholds(t *testing.T) {
	entries := []corpus.Entry{
		entry("exact", corpus.CategoryCatalog, 1, 0),
		entry("weak", corpus.CategoryCatalog, 0.35, 0.9367496997597597),
		entry("orthogonal", corpus.CategoryCatalog, 0, 1),
	}

	tests := []struct {
		name      string
		threshold float64
		want      []string
	}{
		{"general search", corpus.DefaultSearchThreshold, []string{"exact", "weak"}},
		{"chat assisted", corpus.DefaultDescribeThreshold, []string{"exact"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := corpus.Rank(corpus.Query{Vector: []float64{1, 0}, Threshold: tt.threshold}, entries)

			var titles []string
			for _, r := range results {
				titles = append(titles, r.Entry.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestRankTransportBoost(t *testing.T) {
	highway := entry("Part 177", corpus.CategoryRegulation, 1, 1.7320508075688772)
	highway.Metadata.Part = ptr("177")

	air := entry("Part 175", corpus.CategoryRegulation, 3, 4)
	air.Metadata.Part = ptr("175")

	catalog := entry("Catalog", corpus.CategoryCatalog, 1, 1.7320508075688772)
	catalog.Metadata.Part = ptr("177")

	q := corpus.Query{Vector: []float64{1, 0}, Threshold: 0.3, Transport: corpus.TransportHighway}
	results := corpus.Rank(q, []corpus.Entry{air, catalog, highway})

	require.Len(t, results, 3)
	assert.Equal(t, "Part 177", results[0].Entry.Title)
	assert.True(t, results[0].Boosted)
	assert.InDelta(t, 0.65, results[0].Score, 1e-9)
	assert.InDelta(t, 0.5, results[0].Similarity, 1e-9)

	assert.Equal(t, "Part 175", results[1].Entry.Title)
	assert.False(t, results[1].Boosted)

	assert.Equal(t, "Catalog", results[2].Entry.Title)
	assert.False(t, results[2].Boosted)
}

func TestRankLimitAndTieOrder(t *testing.T) {
	entries := []corpus.Entry{
		entry("b", corpus.CategoryCatalog, 1, 0),
		entry("a", corpus.CategoryCatalog, 1, 0),
		entry("c", corpus.CategoryCatalog, 1, 0),
	}

	results := corpus.Rank(corpus.Query{Vector: []float64{1, 0}, Threshold: 0.3, Limit: 2}, entries)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Entry.Title)
	assert.Equal(t, "b", results[1].Entry.Title)
}

func TestRankDoesNotModifyEntries(t *testing.T) {
	e := entry("Part 177", corpus.CategoryRegulation, 1, 0)
	e.Metadata.Part = ptr("177")
	entries := []corpus.Entry{e}

	corpus.Rank(corpus.Query{Vector: []float64{1, 0}, Transport: corpus.TransportHighway}, entries)
	assert.Equal(t, []float64{1, 0}, entries[0].Embedding)
	assert.Equal(t, "Part 177", entries[0].Content)
}

func TestGroupResultsAndDerive(t *testing.T) {
	top := entry("Gasoline", corpus.CategoryHazardTable, 1, 0)
	top.Metadata = corpus.Metadata{
		UNNumber:           ptr("UN1203"),
		HazardClass:        ptr("3"),
		PackingGroup:       ptr("II"),
		ProperShippingName: ptr("Gasoline"),
	}

	results := corpus.Rank(corpus.Query{Vector: []float64{1, 0}, Threshold: 0.3}, []corpus.Entry{
		entry("Catalog", corpus.CategoryCatalog, 0.9, 0.1),
		entry("Guide", corpus.CategoryEmergency, 0.8, 0.2),
		top,
	})

	groups := corpus.GroupResults(results)
	require.Len(t, groups, 3)
	assert.Equal(t, corpus.CategoryHazardTable, groups[0].Category)
	assert.Equal(t, corpus.CategoryEmergency, groups[1].Category)
	assert.Equal(t, corpus.CategoryCatalog, groups[2].Category)

	d := corpus.Derive(results)
	require.NotNil(t, d)
	assert.Equal(t, "UN1203", *d.UNNumber)
	assert.Equal(t, "3", *d.HazardClass)
	assert.Equal(t, "II", *d.PackingGroup)

	assert.Nil(t, corpus.Derive(nil))
	assert.Nil(t, corpus.Derive(results[1:]))
}

func TestSnippetCentersOnTerm(t *testing.T) {
	content := strings.Repeat("filler text ", 40) + "acetone solvent " + strings.Repeat("more words ", 40)
	e := entry("Acetone", corpus.CategoryCatalog, 1, 0)
	e.Content = content

	results := corpus.Rank(corpus.Query{Text: "acetone", Vector: []float64{1, 0}}, []corpus.Entry{e})
	require.Len(t, results, 1)

	s := results[0].Snippet
	assert.True(t, strings.HasPrefix(s, "..."))
	assert.True(t, strings.HasSuffix(s, "..."))
	assert.Contains(t, s, "acetone solvent")
}

func TestTransportModeParts(t *testing.T) {
	tests := map[corpus.TransportMode]string{
		corpus.TransportHighway: "177",
		corpus.TransportRail:    "174",
		corpus.TransportAir:     "175",
		corpus.TransportVessel:  "176",
	}
	for mode, want := range tests {
		got, ok := mode.Part()
		assert.True(t, ok)
		assert.Equal(t, want, got, mode)
	}

	_, ok := corpus.TransportMode("pipeline").Part()
	assert.False(t, ok)
}
