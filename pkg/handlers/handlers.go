// Package handlers provides JSON response and request helpers shared by domain handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// MaxBodyBytes bounds JSON request bodies decoded by DecodeJSON.
const MaxBodyBytes = 1 << 20

// InternalErrorMessage is the only detail a client sees for 5xx responses.
const InternalErrorMessage = "internal server error"

// ErrorResponse is the body written by RespondError.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondJSON writes data as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes an ErrorResponse. Statuses >= 500 are
// logged at Error level and reported with InternalErrorMessage only.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
		RespondJSON(w, status, ErrorResponse{Error: InternalErrorMessage})
		return
	}

	logger.Debug("request rejected", "status", status, "error", err)
	RespondJSON(w, status, ErrorResponse{Error: err.Error()})
}

// DecodeJSON decodes a single JSON value from the request body into dst.
// Bodies larger than MaxBodyBytes or holding trailing values are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}

	return nil
}
