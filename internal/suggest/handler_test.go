package suggest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/lading/internal/corpus"
	"github.com/JaimeStill/lading/internal/freight"
	"github.com/JaimeStill/lading/internal/links"
	"github.com/JaimeStill/lading/internal/suggest"
	"github.com/JaimeStill/lading/pkg/handlers"
	"github.com/JaimeStill/lading/pkg/routes"
)

type mockSystem struct {
	suggestFn  func(context.Context, suggest.Request) (*suggest.Response, error)
	describeFn func(context.Context, suggest.DescribeRequest) (*suggest.DescribeResponse, error)
}

func (m *mockSystem) Handler() *suggest.Handler {
	return suggest.NewHandler(m, discardLogger())
}

func (m *mockSystem) Suggest(ctx context.Context, req suggest.Request) (*suggest.Response, error) {
	return m.suggestFn(ctx, req)
}

func (m *mockSystem) Describe(ctx context.Context, req suggest.DescribeRequest) (*suggest.DescribeResponse, error) {
	return m.describeFn(ctx, req)
}

func serve(sys suggest.System, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, target, strings.NewReader(body)))
	return rec
}

func TestHandlerSuggest(t *testing.T) {
	var got suggest.Request
	sys := &mockSystem{
		suggestFn: func(_ context.Context, req suggest.Request) (*suggest.Response, error) {
			got = req
			return &suggest.Response{
				Success:  true,
				Source:   links.SourceDensity,
				IsHazmat: false,
				Suggestion: suggest.Suggestion{
					NMFCCode:     freight.DensityNMFC,
					FreightClass: freight.Class92_5,
					Confidence:   suggest.DensityConfidence,
				},
			}, nil
		},
	}

	rec := serve(sys, "/classify/suggest", `{"weight":10,"length":12,"width":12,"height":12}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, got.Weight)
	assert.Equal(t, 10.0, *got.Weight)
	assert.Nil(t, got.Quantity)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "density-calculation", body["source"])
	assert.NotContains(t, body, "requiresDOT")

	s := body["suggestion"].(map[string]any)
	assert.Equal(t, "92.5", s["freightClass"])
}

func TestHandlerSuggestInsufficientData(t *testing.T) {
	sys := &mockSystem{
		suggestFn: func(context.Context, suggest.Request) (*suggest.Response, error) {
			return nil, &suggest.InsufficientDataError{MissingFields: suggest.MissingFields{
				ForDensity: []string{"height"},
				ForHazmat:  []string{"hazardClass or unNumber"},
			}}
		},
	}

	rec := serve(sys, "/classify/suggest", `{"weight":10,"length":12,"width":12}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp suggest.FailureResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Insufficient data for classification", resp.Error)
	require.NotNil(t, resp.MissingFields)
	assert.Equal(t, []string{"height"}, resp.MissingFields.ForDensity)
	assert.Equal(t, []string{"hazardClass or unNumber"}, resp.MissingFields.ForHazmat)
}

func TestHandlerSuggestErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		msg    string
	}{
		{"malformed body", `{"weight":`, nil, http.StatusBadRequest, "decode request body"},
		{"validation", `{}`, &suggest.ValidationError{Field: "unNumber", Message: "must be a four-digit UN number"}, http.StatusBadRequest, "unNumber"},
		{"internal", `{}`, errors.New("pq: connection refused"), http.StatusInternalServerError, handlers.InternalErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				suggestFn: func(context.Context, suggest.Request) (*suggest.Response, error) {
					return nil, tt.err
				},
			}

			rec := serve(sys, "/classify/suggest", tt.body)
			require.Equal(t, tt.status, rec.Code)

			var resp suggest.FailureResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tt.msg)
			assert.Nil(t, resp.MissingFields)
		})
	}
}

func TestHandlerDescribeInvalidSearch(t *testing.T) {
	sys := &mockSystem{
		describeFn: func(context.Context, suggest.DescribeRequest) (*suggest.DescribeResponse, error) {
			return nil, corpus.ErrInvalid
		},
	}

	rec := serve(sys, "/classify/describe", `{"text":"acid","transportMode":"teleport"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerDescribe(t *testing.T) {
	var got suggest.DescribeRequest
	sys := &mockSystem{
		describeFn: func(_ context.Context, req suggest.DescribeRequest) (*suggest.DescribeResponse, error) {
			got = req
			return &suggest.DescribeResponse{Success: true, Search: &corpus.SearchResponse{Query: req.Text}}, nil
		},
	}

	rec := serve(sys, "/classify/describe", `{"text":"gasoline","transportMode":"rail"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, corpus.TransportRail, got.TransportMode)

	var resp suggest.DescribeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "gasoline", resp.Search.Query)
}
