package corpus

import (
	"errors"
	"net/http"
)

// Domain errors for corpus operations.
var (
	ErrNotFound         = errors.New("corpus entry not found")
	ErrDuplicate        = errors.New("corpus entry already exists")
	ErrInvalid          = errors.New("invalid corpus request")
	ErrSnapshotNotFound = errors.New("corpus snapshot not found")
	ErrFileTooLarge     = errors.New("file exceeds maximum upload size")
)

// MapHTTPStatus maps corpus domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrSnapshotNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalid) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
