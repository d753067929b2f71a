package freight

import (
	"errors"
	"strings"
)

var (
	ErrInsufficientData = errors.New("insufficient data for density calculation")
	ErrInvalidClass     = errors.New("invalid freight class")
)

// InsufficientDataError lists the density inputs that are missing, zero,
// or negative. It matches ErrInsufficientData with errors.Is.
type InsufficientDataError struct {
	Missing []string
}

func (e *InsufficientDataError) Error() string {
	return ErrInsufficientData.Error() + ": " + strings.Join(e.Missing, ", ")
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}
