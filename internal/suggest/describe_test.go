package suggest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/lading/internal/corpus"
	"github.com/JaimeStill/lading/internal/freight"
	"github.com/JaimeStill/lading/internal/links"
	"github.com/JaimeStill/lading/internal/suggest"
)

func searchResponse(similarity float64, derived *corpus.Derived) *corpus.SearchResponse {
	results := []corpus.Result{{
		Entry:      corpus.Entry{Title: "Gasoline", Category: corpus.CategoryHazardTable},
		Score:      similarity,
		Similarity: similarity,
		Match:      corpus.MatchSimilarity,
	}}
	return &corpus.SearchResponse{
		Strategy: "hash",
		Results:  results,
		Groups:   corpus.GroupResults(results),
		Derived:  derived,
	}
}

func TestDescribeUsesDescribeThreshold(t *testing.T) {
	c := &stubCorpus{search: searchResponse(0.5, nil)}
	sys := suggest.New(&stubLinks{}, c, corpus.DefaultDescribeThreshold, discardLogger())

	resp, err := sys.Describe(context.Background(), suggest.DescribeRequest{
		Text:          "  boxed office paper ",
		TransportMode: corpus.TransportHighway,
		Limit:         3,
	})
	require.NoError(t, err)

	require.NotNil(t, c.lastSearch.Threshold)
	assert.Equal(t, corpus.DefaultDescribeThreshold, *c.lastSearch.Threshold)
	assert.Equal(t, "boxed office paper", c.lastSearch.Query)
	assert.Equal(t, corpus.TransportHighway, c.lastSearch.TransportMode)
	assert.Equal(t, 3, c.lastSearch.Limit)

	assert.True(t, resp.Success)
	assert.False(t, resp.IsHazmat)
	assert.Nil(t, resp.Suggestion)
	assert.Len(t, resp.Search.Results, 1)
}

func TestDescribeDerivesHazmatSuggestion(t *testing.T) {
	c := &stubCorpus{search: searchResponse(0.8, &corpus.Derived{
		UNNumber:           ptr("UN1203"),
		HazardClass:        ptr("3"),
		PackingGroup:       ptr("II"),
		ProperShippingName: ptr("Gasoline"),
	})}
	sys := suggest.New(&stubLinks{}, c, corpus.DefaultDescribeThreshold, discardLogger())

	resp, err := sys.Describe(context.Background(), suggest.DescribeRequest{Text: "unleaded petrol"})
	require.NoError(t, err)

	assert.Equal(t, links.SourceSuggested, resp.Source)
	assert.True(t, resp.IsHazmat)
	assert.True(t, resp.RequiresDOT)
	require.NotNil(t, resp.Suggestion)
	assert.Equal(t, "48635", resp.Suggestion.NMFCCode)
	assert.Equal(t, freight.Class92_5, resp.Suggestion.FreightClass)
	assert.Equal(t, "Gasoline", *resp.Suggestion.ProperShippingName)
	assert.InDelta(t, 0.72, resp.Suggestion.Confidence, 1e-9)
	assert.Equal(t, 0, c.hazardCalls)
}

func TestDescribeResolvesHazardClassFromUNNumber(t *testing.T) {
	c := &stubCorpus{
		hazard: "8",
		search: searchResponse(1, &corpus.Derived{UNNumber: ptr("UN1789")}),
	}
	sys := suggest.New(&stubLinks{}, c, corpus.DefaultDescribeThreshold, discardLogger())

	resp, err := sys.Describe(context.Background(), suggest.DescribeRequest{Text: "UN1789 hydrochloric acid"})
	require.NoError(t, err)

	require.NotNil(t, resp.Suggestion)
	assert.Equal(t, "48685", resp.Suggestion.NMFCCode)
	assert.Equal(t, "8", *resp.Suggestion.HazardClass)
	assert.Equal(t, 0.9, resp.Suggestion.Confidence)
	assert.Equal(t, 1, c.hazardCalls)
}

func TestDescribeRequiresText(t *testing.T) {
	sys := suggest.New(&stubLinks{}, &stubCorpus{}, corpus.DefaultDescribeThreshold, discardLogger())

	_, err := sys.Describe(context.Background(), suggest.DescribeRequest{Text: "   "})
	require.ErrorIs(t, err, suggest.ErrValidation)
}

func TestSuggestValidatesBeforeResolving(t *testing.T) {
	l := &stubLinks{}
	sys := suggest.New(l, &stubCorpus{}, corpus.DefaultDescribeThreshold, discardLogger())

	_, err := sys.Suggest(context.Background(), suggest.Request{
		SKU:          ptr("BOLT-100"),
		PackingGroup: ptr("IV"),
	})
	require.ErrorIs(t, err, suggest.ErrValidation)
	assert.Equal(t, 0, l.skuCalls)
}
