package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrBusinessUnknown = fmt.Errorf("%w: kind of business", ErrNotFound)

	// Validation errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptySample      = fmt.Errorf("%w: empty sample", ErrInvalidInput)
	ErrTooFewSamples    = fmt.Errorf("%w: at least two samples are required", ErrInvalidInput)
	ErrNonFiniteValue   = fmt.Errorf("%w: non-finite value", ErrInvalidInput)
	ErrInvalidTrials    = fmt.Errorf("%w: trial count out of range", ErrInvalidInput)
	ErrNilStatistic     = fmt.Errorf("%w: statistic function is nil", ErrInvalidInput)
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Computation errors
	ErrStatistic = errors.New("statistic computation failed")
)

// NewValidationError reports which precondition a field violated
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

// NewStatisticError wraps a failure raised by a statistic function
func NewStatisticError(stage string, err error) error {
	return fmt.Errorf("%w during %s: %w", ErrStatistic, stage, err)
}

// IsNotFoundError checks whether err is a not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInputError checks whether err is a precondition violation
func IsInvalidInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsStatisticError checks whether err came from a statistic function
func IsStatisticError(err error) bool {
	return errors.Is(err, ErrStatistic)
}
