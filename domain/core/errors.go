package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Contract errors
	ErrSchemaMismatch = errors.New("importance vector references unknown feature")
	ErrEmptyRegistry  = errors.New("feature registry is empty")
	ErrDuplicateKey   = errors.New("duplicate feature key in registry")

	// Importance errors
	ErrUnsupportedImportance = errors.New("model family cannot report native importance")
	ErrNegativeImportance    = errors.New("importance score is negative")

	// Data errors
	ErrInsufficientData  = errors.New("insufficient data for analysis")
	ErrDimensionMismatch = errors.New("matrix dimensions do not match")

	// Stability errors
	ErrIterationFitFailure = errors.New("model fit failed for iteration")
	ErrRunCancelled        = errors.New("pipeline run cancelled")

	// Not found errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)
)

// Error constructors with context
func NewSchemaMismatchError(feature string) error {
	return fmt.Errorf("%w: %q", ErrSchemaMismatch, feature)
}

func NewUnsupportedImportanceError(model string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedImportance, model)
}

func NewIterationFitError(model string, iteration int, cause error) error {
	return fmt.Errorf("%w: model %s iteration %d: %v", ErrIterationFitFailure, model, iteration, cause)
}

// Error checking helpers
func IsSchemaMismatch(err error) bool {
	return errors.Is(err, ErrSchemaMismatch)
}

func IsUnsupportedImportance(err error) bool {
	return errors.Is(err, ErrUnsupportedImportance)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
