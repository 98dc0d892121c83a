package nn

import (
	"errors"

	"github.com/born-ml/feedforward/internal/matrix"
)

// Common errors.
var (
	ErrInvalidConfiguration = errors.New("invalid layer configuration")
	ErrNoForwardPass        = errors.New("backward called before forward")
	ErrIO                   = errors.New("i/o failure")
	ErrDimensionMismatch    = errors.New("persisted size does not match layer shape")

	// Re-exported from matrix so callers of this package need a single import.
	ErrInvalidDimension = matrix.ErrInvalidDimension
	ErrShapeMismatch    = matrix.ErrShapeMismatch
	ErrInvalidArgument  = matrix.ErrInvalidArgument
)
