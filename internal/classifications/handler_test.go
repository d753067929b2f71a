package classifications_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/JaimeStill/lading/internal/classifications"
	"github.com/JaimeStill/lading/pkg/pagination"
	"github.com/JaimeStill/lading/pkg/routes"
)

type mockSystem struct {
	createFn func(context.Context, classifications.Command) (*classifications.Classification, error)
	deleteFn func(context.Context, uuid.UUID) error
}

func (m *mockSystem) Handler() *classifications.Handler {
	return classifications.NewHandler(m, discardLogger(), paginationConfig())
}

func (m *mockSystem) List(context.Context, pagination.PageRequest, classifications.Filters) (*pagination.PageResult[classifications.Classification], error) {
	r := pagination.NewPageResult[classifications.Classification](nil, 0, 50, 0)
	return &r, nil
}

func (m *mockSystem) Find(context.Context, uuid.UUID) (*classifications.Classification, error) {
	return nil, classifications.ErrNotFound
}

func (m *mockSystem) Create(ctx context.Context, cmd classifications.Command) (*classifications.Classification, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Update(context.Context, uuid.UUID, classifications.Command) (*classifications.Classification, error) {
	return nil, classifications.ErrNotFound
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func serve(sys classifications.System, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestHandlerCreate(t *testing.T) {
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd classifications.Command) (*classifications.Classification, error) {
			if cmd.FreightClass == "95" {
				return nil, classifications.ErrInvalid
			}
			return &classifications.Classification{ID: uuid.New(), NMFCCode: cmd.NMFCCode}, nil
		},
	}

	rec := serve(sys, http.MethodPost, "/classifications", `{"description":"Boxes","nmfcCode":"156600","freightClass":"85"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"nmfcCode":"156600"`)

	rec = serve(sys, http.MethodPost, "/classifications", `{"freightClass":"95"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(sys, http.MethodPost, "/classifications", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerDelete(t *testing.T) {
	referenced := uuid.New()
	sys := &mockSystem{
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			if id == referenced {
				return classifications.ErrInUse
			}
			return nil
		},
	}

	assert.Equal(t, http.StatusNoContent, serve(sys, http.MethodDelete, "/classifications/"+uuid.NewString(), "").Code)
	assert.Equal(t, http.StatusConflict, serve(sys, http.MethodDelete, "/classifications/"+referenced.String(), "").Code)
}

func TestHandlerFindNotFound(t *testing.T) {
	rec := serve(&mockSystem{}, http.MethodGet, "/classifications/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "classification not found")
}
