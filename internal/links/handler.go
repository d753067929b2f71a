package links

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/lading/pkg/handlers"
	"github.com/JaimeStill/lading/pkg/pagination"
	"github.com/JaimeStill/lading/pkg/routes"
)

// SafetyResponse is the 400 body written for a safety violation.
type SafetyResponse struct {
	Error   string                `json:"error"`
	Details *SafetyViolationError `json:"details"`
}

// Handler provides HTTP endpoints for link management.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "links"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for link endpoints.
// Update and delete carry the link id in the request body.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/links",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "PUT", Pattern: "", Handler: h.Update},
			{Method: "DELETE", Pattern: "", Handler: h.Delete},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// List returns joined link rows filtered by productId, classificationId, and approved.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	row, err := h.sys.Find(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, row)
}

// Create stores a new link. Returns 201 with the joined row.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := handlers.DecodeJSON(w, r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	row, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, row)
}

// Update applies a partial update, including approval changes.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var cmd UpdateCommand
	if err := handlers.DecodeJSON(w, r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	row, err := h.sys.Update(r.Context(), cmd)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, row)
}

// Delete removes a link and returns the deleted row.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var cmd DeleteCommand
	if err := handlers.DecodeJSON(w, r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if cmd.ID == uuid.Nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalid)
		return
	}

	row, err := h.sys.Delete(r.Context(), cmd.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, row)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var safety *SafetyViolationError
	if errors.As(err, &safety) {
		h.logger.Warn("link rejected", "sku", safety.ProductSKU, "error", err)
		handlers.RespondJSON(w, http.StatusBadRequest, SafetyResponse{
			Error:   safety.Error(),
			Details: safety,
		})
		return
	}
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}
