package suggest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/lading/pkg/handlers"
	"github.com/JaimeStill/lading/pkg/routes"
)

// FailureResponse is the body of every rejected suggestion request.
type FailureResponse struct {
	Success       bool           `json:"success"`
	Error         string         `json:"error"`
	MissingFields *MissingFields `json:"missingFields,omitempty"`
}

// Handler provides HTTP endpoints for classification suggestions.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "suggest"),
	}
}

// Routes returns the route group definition for suggestion endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/classify",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/suggest", Handler: h.Suggest},
			{Method: "POST", Pattern: "/describe", Handler: h.Describe},
		},
	}
}

func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}

	resp, err := h.sys.Suggest(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) Describe(w http.ResponseWriter, r *http.Request) {
	var req DescribeRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}

	resp, err := h.sys.Describe(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var insufficient *InsufficientDataError
	if errors.As(err, &insufficient) {
		h.logger.Debug("insufficient data", "missing", insufficient.MissingFields)
		missing := insufficient.MissingFields
		handlers.RespondJSON(w, http.StatusBadRequest, FailureResponse{
			Error:         InsufficientDataMessage,
			MissingFields: &missing,
		})
		return
	}

	h.fail(w, MapHTTPStatus(err), err)
}

func (h *Handler) fail(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", err)
		msg = handlers.InternalErrorMessage
	} else {
		h.logger.Debug("request rejected", "status", status, "error", err)
	}
	handlers.RespondJSON(w, status, FailureResponse{Error: msg})
}
