package suggest_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/lading/internal/classifications"
	"github.com/JaimeStill/lading/internal/corpus"
	"github.com/JaimeStill/lading/internal/freight"
	"github.com/JaimeStill/lading/internal/links"
	"github.com/JaimeStill/lading/internal/suggest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

type stubLinks struct {
	row       *links.Row
	rowErr    error
	hazard    string
	hazardErr error

	skuCalls    int
	hazardCalls int
}

func (s *stubLinks) FindApprovedBySKU(context.Context, string) (*links.Row, error) {
	s.skuCalls++
	if s.rowErr != nil {
		return nil, s.rowErr
	}
	if s.row == nil {
		return nil, links.ErrNotFound
	}
	return s.row, nil
}

func (s *stubLinks) HazardClassForUN(context.Context, string) (string, error) {
	s.hazardCalls++
	if s.hazardErr != nil {
		return "", s.hazardErr
	}
	if s.hazard == "" {
		return "", links.ErrNotFound
	}
	return s.hazard, nil
}

type stubCorpus struct {
	hazard    string
	hazardErr error
	search    *corpus.SearchResponse
	searchErr error

	hazardCalls int
	lastSearch  corpus.SearchRequest
}

func (s *stubCorpus) LookupHazardClass(context.Context, string) (string, error) {
	s.hazardCalls++
	if s.hazardErr != nil {
		return "", s.hazardErr
	}
	if s.hazard == "" {
		return "", corpus.ErrNotFound
	}
	return s.hazard, nil
}

func (s *stubCorpus) Search(_ context.Context, req corpus.SearchRequest) (*corpus.SearchResponse, error) {
	s.lastSearch = req
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.search, nil
}

func approvedRow(confidence *float64) *links.Row {
	return &links.Row{
		Link: links.Link{
			ID:              uuid.New(),
			IsApproved:      true,
			LinkSource:      links.SourceManual,
			ConfidenceScore: confidence,
		},
		Product: links.Product{ID: uuid.New(), SKU: "BOLT-100", Name: "Boxed fasteners"},
		Classification: classifications.Classification{
			ID:           uuid.New(),
			Description:  "Bolts, steel, boxed",
			NMFCCode:     "51300",
			NMFCSub:      ptr("02"),
			FreightClass: freight.Class55,
		},
	}
}

func resolve(t *testing.T, l *stubLinks, c *stubCorpus, req suggest.Request) (*suggest.Response, error) {
	t.Helper()
	in, err := req.Validate()
	require.NoError(t, err)
	return suggest.NewResolver(l, c, discardLogger()).Resolve(context.Background(), in)
}

func TestResolveDensity(t *testing.T) {
	resp, err := resolve(t, &stubLinks{}, &stubCorpus{}, suggest.Request{
		Weight: ptr(10.0),
		Length: ptr(12.0),
		Width:  ptr(12.0),
		Height: ptr(12.0),
	})
	require.NoError(t, err)

	assert.Equal(t, links.SourceDensity, resp.Source)
	assert.False(t, resp.IsHazmat)
	assert.False(t, resp.RequiresDOT)
	assert.Equal(t, freight.Class92_5, resp.Suggestion.FreightClass)
	assert.Equal(t, freight.DensityNMFC, resp.Suggestion.NMFCCode)
	assert.Equal(t, "04", *resp.Suggestion.NMFCSub)
	assert.InDelta(t, 10.0, *resp.Suggestion.Density, 1e-9)
	assert.InDelta(t, 1.0, *resp.Suggestion.CubicFeet, 1e-9)
	assert.Equal(t, suggest.DensityConfidence, resp.Suggestion.Confidence)
}

func TestResolveHazardClass(t *testing.T) {
	resp, err := resolve(t, &stubLinks{}, &stubCorpus{}, suggest.Request{HazardClass: ptr("3")})
	require.NoError(t, err)

	assert.Equal(t, links.SourceHazmat, resp.Source)
	assert.True(t, resp.IsHazmat)
	assert.True(t, resp.RequiresDOT)
	assert.True(t, resp.RequiresPlacards)
	assert.Equal(t, "48635", resp.Suggestion.NMFCCode)
	assert.Equal(t, freight.Class92_5, resp.Suggestion.FreightClass)
	assert.Equal(t, suggest.HazmatConfidence, resp.Suggestion.Confidence)
	assert.Empty(t, resp.Suggestion.Note)
}

func TestResolveHazmatBeatsDensity(t *testing.T) {
	resp, err := resolve(t, &stubLinks{}, &stubCorpus{}, suggest.Request{
		Weight:      ptr(10.0),
		Length:      ptr(12.0),
		Width:       ptr(12.0),
		Height:      ptr(12.0),
		HazardClass: ptr("8"),
	})
	require.NoError(t, err)

	assert.Equal(t, links.SourceHazmat, resp.Source)
	assert.Equal(t, "48685", resp.Suggestion.NMFCCode)
	assert.Equal(t, freight.Class85, resp.Suggestion.FreightClass)
	assert.Nil(t, resp.Suggestion.Density)
	assert.Contains(t, resp.Suggestion.Note, "dimensions ignored")
}

func TestResolveUnknownDivisionUsesMainClass(t *testing.T) {
	resp, err := resolve(t, &stubLinks{}, &stubCorpus{}, suggest.Request{HazardClass: ptr("3.9")})
	require.NoError(t, err)

	assert.Equal(t, "48635", resp.Suggestion.NMFCCode)
	assert.Equal(t, "3.9", *resp.Suggestion.HazardClass)
	assert.Contains(t, resp.Suggestion.Note, "division 3.9")
}

func TestResolveIsHazmatWithoutClassUsesDefault(t *testing.T) {
	resp, err := resolve(t, &stubLinks{}, &stubCorpus{}, suggest.Request{IsHazmat: ptr(true)})
	require.NoError(t, err)

	assert.Equal(t, freight.MiscDangerousGoodsNMFC, resp.Suggestion.NMFCCode)
	assert.Equal(t, freight.Class85, resp.Suggestion.FreightClass)
	assert.Nil(t, resp.Suggestion.HazardClass)
	assert.Contains(t, resp.Suggestion.Note, "miscellaneous")
}

func TestResolveSavedIgnoresOtherInputs(t *testing.T) {
	row := approvedRow(nil)
	l := &stubLinks{row: row}

	resp, err := resolve(t, l, &stubCorpus{}, suggest.Request{
		SKU:         ptr("BOLT-100"),
		Weight:      ptr(10.0),
		Length:      ptr(12.0),
		Width:       ptr(12.0),
		Height:      ptr(12.0),
		HazardClass: ptr("3"),
	})
	require.NoError(t, err)

	assert.Equal(t, links.SourceSaved, resp.Source)
	assert.Equal(t, suggest.SavedConfidence, resp.Suggestion.Confidence)
	assert.Equal(t, "51300", resp.Suggestion.NMFCCode)
	assert.Equal(t, freight.Class55, resp.Suggestion.FreightClass)
	assert.Equal(t, row.ID, *resp.Suggestion.LinkID)
	assert.Equal(t, row.Classification.ID, *resp.Suggestion.ClassificationID)
	assert.False(t, resp.IsHazmat)
}

func TestResolveSavedUsesLinkConfidenceAndOverride(t *testing.T) {
	row := approvedRow(ptr(0.7))
	row.OverrideFreightClass = ptr("65")

	resp, err := resolve(t, &stubLinks{row: row}, &stubCorpus{}, suggest.Request{SKU: ptr("BOLT-100")})
	require.NoError(t, err)

	assert.Equal(t, 0.7, resp.Suggestion.Confidence)
	assert.Equal(t, freight.Class65, resp.Suggestion.FreightClass)
}

func TestResolveSKUWithoutApprovedLinkFallsThrough(t *testing.T) {
	l := &stubLinks{}
	resp, err := resolve(t, l, &stubCorpus{}, suggest.Request{SKU: ptr("NEW-1"), HazardClass: ptr("9")})
	require.NoError(t, err)

	assert.Equal(t, 1, l.skuCalls)
	assert.Equal(t, links.SourceHazmat, resp.Source)
}

func TestResolveSavedLookupFailure(t *testing.T) {
	_, err := resolve(t, &stubLinks{rowErr: errors.New("connection reset")}, &stubCorpus{}, suggest.Request{SKU: ptr("BOLT-100")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestResolveUNNumberLookupOrder(t *testing.T) {
	tests := []struct {
		name       string
		corpus     *stubCorpus
		links      *stubLinks
		nmfc       string
		linkCalls  int
		noteSubstr string
	}{
		{
			name:      "hazard table wins",
			corpus:    &stubCorpus{hazard: "3"},
			links:     &stubLinks{hazard: "8"},
			nmfc:      "48635",
			linkCalls: 0,
		},
		{
			name:      "approved product when table misses",
			corpus:    &stubCorpus{},
			links:     &stubLinks{hazard: "2.1"},
			nmfc:      "48590",
			linkCalls: 1,
		},
		{
			name:       "default when neither knows",
			corpus:     &stubCorpus{},
			links:      &stubLinks{},
			nmfc:       freight.MiscDangerousGoodsNMFC,
			linkCalls:  1,
			noteSubstr: "no hazard class on record for UN1203",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := resolve(t, tt.links, tt.corpus, suggest.Request{UNNumber: ptr("un 1203")})
			require.NoError(t, err)

			assert.Equal(t, tt.nmfc, resp.Suggestion.NMFCCode)
			assert.Equal(t, "UN1203", *resp.Suggestion.UNNumber)
			assert.Equal(t, 1, tt.corpus.hazardCalls)
			assert.Equal(t, tt.linkCalls, tt.links.hazardCalls)
			if tt.noteSubstr != "" {
				assert.Contains(t, resp.Suggestion.Note, tt.noteSubstr)
			}
		})
	}
}

func TestResolveUNNumberLookupFailure(t *testing.T) {
	c := &stubCorpus{hazardErr: errors.New("timeout")}
	l := &stubLinks{hazard: "3"}

	_, err := resolve(t, l, c, suggest.Request{UNNumber: ptr("1203")})
	require.Error(t, err)
	assert.Equal(t, 0, l.hazardCalls)
}

func TestResolveInsufficientData(t *testing.T) {
	_, err := resolve(t, &stubLinks{}, &stubCorpus{}, suggest.Request{
		Weight: ptr(10.0),
		Length: ptr(12.0),
		Width:  ptr(12.0),
	})
	require.ErrorIs(t, err, suggest.ErrInsufficientData)

	var insufficient *suggest.InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, []string{"height"}, insufficient.MissingFields.ForDensity)
	assert.Equal(t, []string{"hazardClass or unNumber"}, insufficient.MissingFields.ForHazmat)
}

func TestResolveZeroDimensionIsInsufficient(t *testing.T) {
	_, err := resolve(t, &stubLinks{}, &stubCorpus{}, suggest.Request{
		Weight:   ptr(10.0),
		Length:   ptr(0.0),
		Width:    ptr(12.0),
		Height:   ptr(-1.0),
		Quantity: ptr(0),
	})

	var insufficient *suggest.InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, []string{"length", "height", "quantity"}, insufficient.MissingFields.ForDensity)
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name  string
		req   suggest.Request
		field string
	}{
		{"nan weight", suggest.Request{Weight: ptr(math.NaN())}, "weight"},
		{"infinite height", suggest.Request{Height: ptr(math.Inf(1))}, "height"},
		{"packing group", suggest.Request{PackingGroup: ptr("IV")}, "packingGroup"},
		{"un number", suggest.Request{UNNumber: ptr("12")}, "unNumber"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Validate()
			require.ErrorIs(t, err, suggest.ErrValidation)

			var verr *suggest.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRequestValidateNormalizes(t *testing.T) {
	in, err := suggest.Request{
		SKU:          ptr("  BOLT-100 "),
		HazardClass:  ptr("Class 3"),
		PackingGroup: ptr("pg 2"),
		UNNumber:     ptr("1203"),
	}.Validate()
	require.NoError(t, err)

	assert.Equal(t, "BOLT-100", in.SKU)
	assert.Equal(t, "3", in.HazardClass)
	assert.Equal(t, "II", in.PackingGroup)
	assert.Equal(t, "UN1203", in.UNNumber)
	assert.Equal(t, 1, in.Dimensions.Quantity)
	assert.True(t, in.HasHazmatIndicator())
}
