// Package matrix implements the dense 2D float64 buffer used by the
// feedforward engine.
//
// A Matrix owns a single contiguous row-major allocation (a gonum
// mat.Dense). Every operation returns a fresh Matrix, so two matrices never
// share storage; the only in-place mutations are Set, Fill, Randomize and
// ReadFrom.
//
// Binary operations never broadcast. Operand shapes are checked and a
// *ShapeError naming the operation and both shapes is returned on mismatch.
package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense rows x cols buffer of float64 values.
type Matrix struct {
	dense *mat.Dense
}

// New creates a zero-filled matrix with the given dimensions.
//
// Returns ErrInvalidDimension if rows or cols is not positive.
func New(rows, cols int) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("new %dx%d: %w (must be > 0)", rows, cols, ErrInvalidDimension)
	}
	return &Matrix{dense: mat.NewDense(rows, cols, nil)}, nil
}

// FromSlice creates a matrix from row-major data.
//
// The data is copied; the caller keeps ownership of the slice.
func FromSlice(rows, cols int, data []float64) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("from slice %dx%d: %w (must be > 0)", rows, cols, ErrInvalidDimension)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("from slice %dx%d: %w: got %d values, want %d",
			rows, cols, ErrInvalidArgument, len(data), rows*cols)
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return &Matrix{dense: mat.NewDense(rows, cols, buf)}, nil
}

// FromRows creates a matrix from a slice of equal-length rows.
//
// Example:
//
//	m, err := matrix.FromRows([][]float64{
//	    {1, 2, 3},
//	    {4, 5, 6},
//	})
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("from rows: %w: empty input", ErrInvalidDimension)
	}
	cols := len(rows[0])
	buf := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("from rows: %w: row %d has %d values, want %d",
				ErrInvalidArgument, i, len(row), cols)
		}
		buf = append(buf, row...)
	}
	return &Matrix{dense: mat.NewDense(len(rows), cols, buf)}, nil
}

// wrap takes ownership of d.
func wrap(d *mat.Dense) *Matrix {
	return &Matrix{dense: d}
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (rows, cols int) {
	if m == nil || m.dense == nil {
		return 0, 0
	}
	return m.dense.Dims()
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int {
	r, _ := m.Dims()
	return r
}

// Cols returns the number of columns.
func (m *Matrix) Cols() int {
	_, c := m.Dims()
	return c
}

// IsEmpty reports whether m holds no storage (a nil or zero-value Matrix).
func (m *Matrix) IsEmpty() bool {
	return m == nil || m.dense == nil
}

// At returns the element at row i, column j.
//
// Panics if the indices are out of range.
func (m *Matrix) At(i, j int) float64 {
	return m.dense.At(i, j)
}

// Set stores v at row i, column j.
//
// Panics if the indices are out of range.
func (m *Matrix) Set(i, j int, v float64) {
	m.dense.Set(i, j, v)
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	return mat.Row(nil, i, m.dense)
}

// RawData returns a row-major copy of all elements.
func (m *Matrix) RawData() []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, m.dense.RawRowView(i)...)
	}
	return out
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	return wrap(mat.DenseCopyOf(m.dense))
}

// Equal reports whether m and other have the same dimensions and exactly the
// same values. It is not a tolerance comparison.
func (m *Matrix) Equal(other *Matrix) bool {
	if m.IsEmpty() || other.IsEmpty() {
		return m.IsEmpty() && other.IsEmpty()
	}
	return mat.Equal(m.dense, other.dense)
}

// Fill sets every element to v.
func (m *Matrix) Fill(v float64) {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		row := m.dense.RawRowView(i)
		for j := range row {
			row[j] = v
		}
	}
}

// Argmax returns, for every row, the column index of its largest element.
// Ties resolve to the lowest index.
func (m *Matrix) Argmax() []int {
	r, _ := m.Dims()
	idx := make([]int, r)
	for i := 0; i < r; i++ {
		idx[i] = floats.MaxIdx(m.dense.RawRowView(i))
	}
	return idx
}

// String formats the matrix for debugging output.
func (m *Matrix) String() string {
	if m.IsEmpty() {
		return "Matrix(empty)"
	}
	r, c := m.Dims()
	return fmt.Sprintf("Matrix (%dx%d):\n%v", r, c, mat.Formatted(m.dense, mat.Prefix(""), mat.Squeeze()))
}
