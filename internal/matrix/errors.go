package matrix

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidDimension = errors.New("invalid matrix dimension")
	ErrShapeMismatch    = errors.New("matrix shape mismatch")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// ShapeError reports the operation and operand shapes of a failed binary operation.
//
// It unwraps to ErrShapeMismatch, so callers can test with errors.Is.
type ShapeError struct {
	Op    string // Operation name (e.g., "add", "matmul")
	Left  [2]int // Shape of the receiver
	Right [2]int // Shape of the argument
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: shape mismatch [%d,%d] vs [%d,%d]",
		e.Op, e.Left[0], e.Left[1], e.Right[0], e.Right[1])
}

// Unwrap returns ErrShapeMismatch.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

func shapeError(op string, a, b *Matrix) error {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return &ShapeError{Op: op, Left: [2]int{ar, ac}, Right: [2]int{br, bc}}
}
