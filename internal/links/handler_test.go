package links_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/lading/internal/links"
	"github.com/JaimeStill/lading/pkg/pagination"
	"github.com/JaimeStill/lading/pkg/routes"
)

type mockSystem struct {
	listFn   func(context.Context, pagination.PageRequest, links.Filters) (*pagination.PageResult[links.Row], error)
	createFn func(context.Context, links.CreateCommand) (*links.Row, error)
	updateFn func(context.Context, links.UpdateCommand) (*links.Row, error)
	deleteFn func(context.Context, uuid.UUID) (*links.Row, error)
}

func (m *mockSystem) Handler() *links.Handler {
	return links.NewHandler(m, discardLogger(), paginationConfig())
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, f links.Filters) (*pagination.PageResult[links.Row], error) {
	return m.listFn(ctx, page, f)
}

func (m *mockSystem) Find(context.Context, uuid.UUID) (*links.Row, error) {
	return nil, links.ErrNotFound
}

func (m *mockSystem) FindApprovedBySKU(context.Context, string) (*links.Row, error) {
	return nil, links.ErrNotFound
}

func (m *mockSystem) HazardClassForUN(context.Context, string) (string, error) {
	return "", links.ErrNotFound
}

func (m *mockSystem) Create(ctx context.Context, cmd links.CreateCommand) (*links.Row, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Update(ctx context.Context, cmd links.UpdateCommand) (*links.Row, error) {
	return m.updateFn(ctx, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) (*links.Row, error) {
	return m.deleteFn(ctx, id)
}

func serve(sys links.System, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestHandlerCreateSafetyViolation(t *testing.T) {
	sys := &mockSystem{
		createFn: func(context.Context, links.CreateCommand) (*links.Row, error) {
			return nil, &links.SafetyViolationError{ProductSKU: "GAS-01", ProductIsHazardous: true}
		},
	}

	body := `{"productId":"` + uuid.NewString() + `","classificationId":"` + uuid.NewString() + `"}`
	rec := serve(sys, http.MethodPost, "/links", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp links.SafetyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "GAS-01")
	require.NotNil(t, resp.Details)
	assert.True(t, resp.Details.ProductIsHazardous)
	assert.False(t, resp.Details.ClassificationIsHazmat)
}

func TestHandlerCreate(t *testing.T) {
	id := uuid.New()
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd links.CreateCommand) (*links.Row, error) {
			return &links.Row{Link: links.Link{ID: id, ProductID: cmd.ProductID, LinkSource: links.SourceManual}}, nil
		},
	}

	body := `{"productId":"` + uuid.NewString() + `","classificationId":"` + uuid.NewString() + `"}`
	rec := serve(sys, http.MethodPost, "/links", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), id.String())
}

func TestHandlerUpdateCarriesIDInBody(t *testing.T) {
	id := uuid.New()
	var got links.UpdateCommand
	sys := &mockSystem{
		updateFn: func(_ context.Context, cmd links.UpdateCommand) (*links.Row, error) {
			got = cmd
			return &links.Row{Link: links.Link{ID: cmd.ID, IsApproved: true}}, nil
		},
	}

	rec := serve(sys, http.MethodPut, "/links", `{"id":"`+id.String()+`","isApproved":true,"approvedBy":"ops"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, got.ID)
	require.NotNil(t, got.IsApproved)
	assert.True(t, *got.IsApproved)
	assert.Nil(t, got.ConfidenceScore)
}

func TestHandlerDelete(t *testing.T) {
	missing := uuid.New()
	sys := &mockSystem{
		deleteFn: func(_ context.Context, id uuid.UUID) (*links.Row, error) {
			if id == missing {
				return nil, links.ErrNotFound
			}
			return &links.Row{Link: links.Link{ID: id}}, nil
		},
	}

	rec := serve(sys, http.MethodDelete, "/links", `{"id":"`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(sys, http.MethodDelete, "/links", `{"id":"`+missing.String()+`"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(sys, http.MethodDelete, "/links", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerListFilters(t *testing.T) {
	productID := uuid.New()
	var got links.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, f links.Filters) (*pagination.PageResult[links.Row], error) {
			got = f
			r := pagination.NewPageResult[links.Row](nil, 0, page.Limit, page.Offset)
			return &r, nil
		},
	}

	rec := serve(sys, http.MethodGet, "/links?approved=true&productId="+productID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.ProductID)
	assert.Equal(t, productID, *got.ProductID)
	require.NotNil(t, got.Approved)
	assert.True(t, *got.Approved)
	assert.Nil(t, got.ClassificationID)

	rec = serve(sys, http.MethodGet, "/links?approved=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
