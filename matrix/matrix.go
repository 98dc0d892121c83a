// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package matrix

import (
	"github.com/born-ml/feedforward/internal/matrix"
)

// Matrix is a dense row-major float64 matrix.
type Matrix = matrix.Matrix

// ShapeError reports the operand shapes of a failed operation.
type ShapeError = matrix.ShapeError

// Errors.
var (
	ErrInvalidDimension = matrix.ErrInvalidDimension
	ErrShapeMismatch    = matrix.ErrShapeMismatch
	ErrInvalidArgument  = matrix.ErrInvalidArgument
)

// New creates a zero-filled rows×cols matrix.
func New(rows, cols int) (*Matrix, error) {
	return matrix.New(rows, cols)
}

// FromSlice creates a rows×cols matrix from a copy of row-major data.
//
// Example:
//
//	m, err := matrix.FromSlice(2, 2, []float64{1, 2, 3, 4})
func FromSlice(rows, cols int, data []float64) (*Matrix, error) {
	return matrix.FromSlice(rows, cols, data)
}

// FromRows creates a matrix from equal-length rows.
func FromRows(rows [][]float64) (*Matrix, error) {
	return matrix.FromRows(rows)
}
