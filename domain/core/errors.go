package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrStudyNotFound   = fmt.Errorf("%w: study", ErrNotFound)
	ErrMethodNotFound  = fmt.Errorf("%w: imputation method", ErrNotFound)
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)

	// Validation errors
	ErrInvalidCondition   = errors.New("invalid study condition")
	ErrInvalidGrid        = errors.New("invalid study grid")
	ErrDatasetShape       = errors.New("dataset shape mismatch")
	ErrInfeasibleRate     = errors.New("missingness rate infeasible for pattern catalog")
	ErrIncompleteData     = errors.New("dataset still contains missing cells")
	ErrInsufficientData   = errors.New("insufficient data for analysis")
	ErrLabelingMismatch   = errors.New("labelings cover different row counts")
	ErrCutpointDegenerate = errors.New("cutpoint produces an empty subgroup")

	// Estimation errors
	ErrNonConvergence     = errors.New("optimizer failed to converge")
	ErrSingularCovariance = errors.New("singular covariance matrix")
	ErrNonFiniteDeviance  = errors.New("deviance is not finite")

	// Determinism errors
	ErrNonDeterministic = errors.New("non-deterministic result")
	ErrSeedMismatch     = errors.New("seed mismatch")
	ErrHashMismatch     = errors.New("hash mismatch")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewInfeasibleRateError(rate, limit float64) error {
	return fmt.Errorf("%w: rate %.2f exceeds catalog maximum %.2f", ErrInfeasibleRate, rate, limit)
}

func NewShapeError(wantRows, wantCols, gotRows, gotCols int) error {
	return fmt.Errorf("%w: want %dx%d, got %dx%d", ErrDatasetShape, wantRows, wantCols, gotRows, gotCols)
}

func NewEstimationError(stage string, err error) error {
	return fmt.Errorf("%w during %s: %v", ErrNonConvergence, stage, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidCondition) ||
		errors.Is(err, ErrInvalidGrid) ||
		errors.Is(err, ErrDatasetShape) ||
		errors.Is(err, ErrInfeasibleRate)
}

func IsEstimationError(err error) bool {
	return errors.Is(err, ErrNonConvergence) ||
		errors.Is(err, ErrSingularCovariance) ||
		errors.Is(err, ErrNonFiniteDeviance)
}

func IsDeterminismError(err error) bool {
	return errors.Is(err, ErrNonDeterministic) ||
		errors.Is(err, ErrSeedMismatch) ||
		errors.Is(err, ErrHashMismatch)
}
