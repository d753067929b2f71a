package links

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for link operations.
var (
	ErrNotFound               = errors.New("link not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrClassificationNotFound = errors.New("classification not found")
	ErrDuplicate              = errors.New("link already exists for this product and classification")
	ErrInvalid                = errors.New("invalid link")
	ErrSafetyViolation        = errors.New("hazmat safety violation")
)

// SafetyViolationError reports a link whose hazmat flags would break the
// safety rule. No row is written when it is returned.
type SafetyViolationError struct {
	ProductSKU             string `json:"productSku"`
	ProductIsHazardous     bool   `json:"productIsHazardous"`
	ClassificationIsHazmat bool   `json:"classificationIsHazmat"`
}

func (e *SafetyViolationError) Error() string {
	if e.ProductIsHazardous && !e.ClassificationIsHazmat {
		return fmt.Sprintf("hazardous product %s cannot be linked to a non-hazmat classification", e.ProductSKU)
	}
	return fmt.Sprintf(
		"cannot approve link for product %s: product hazardous=%t, classification hazmat=%t",
		e.ProductSKU, e.ProductIsHazardous, e.ClassificationIsHazmat,
	)
}

func (e *SafetyViolationError) Is(target error) bool {
	return target == ErrSafetyViolation
}

// MapHTTPStatus maps link domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrClassificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrSafetyViolation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// checkSafety enforces the hazmat rules. A hazardous product always needs a
// hazmat classification; an approved link needs the two flags to match.
func checkSafety(sku string, productHazardous, classificationHazmat, approved bool) error {
	violation := productHazardous && !classificationHazmat
	if approved && productHazardous != classificationHazmat {
		violation = true
	}
	if !violation {
		return nil
	}
	return &SafetyViolationError{
		ProductSKU:             sku,
		ProductIsHazardous:     productHazardous,
		ClassificationIsHazmat: classificationHazmat,
	}
}
