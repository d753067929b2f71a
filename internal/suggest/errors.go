package suggest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/lading/internal/corpus"
)

// InsufficientDataMessage is the error text of a failed resolution.
const InsufficientDataMessage = "Insufficient data for classification"

var (
	ErrValidation       = errors.New("invalid classification request")
	ErrInsufficientData = errors.New("insufficient data for classification")
)

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// MissingFields lists, per resolution path, the inputs that would have
// allowed the path to apply.
type MissingFields struct {
	ForDensity []string `json:"forDensity"`
	ForHazmat  []string `json:"forHazmat"`
}

// InsufficientDataError is returned when no resolution path applies.
type InsufficientDataError struct {
	MissingFields MissingFields
}

func (e *InsufficientDataError) Error() string {
	return ErrInsufficientData.Error()
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// MapHTTPStatus maps suggestion errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInsufficientData),
		errors.Is(err, corpus.ErrInvalid):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
