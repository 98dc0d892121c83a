package matrix

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/feedforward/internal/parallel"
)

func sameShape(a, b *Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return ar == br && ac == bc
}

// Add returns m + other elementwise.
func (m *Matrix) Add(other *Matrix) (*Matrix, error) {
	if m.IsEmpty() || !sameShape(m, other) {
		return nil, shapeError("add", m, other)
	}
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Add(m.dense, other.dense)
	return wrap(out), nil
}

// Sub returns m - other elementwise.
func (m *Matrix) Sub(other *Matrix) (*Matrix, error) {
	if m.IsEmpty() || !sameShape(m, other) {
		return nil, shapeError("sub", m, other)
	}
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Sub(m.dense, other.dense)
	return wrap(out), nil
}

// MulElem returns the elementwise (Hadamard) product of m and other.
func (m *Matrix) MulElem(other *Matrix) (*Matrix, error) {
	if m.IsEmpty() || !sameShape(m, other) {
		return nil, shapeError("elementwise multiply", m, other)
	}
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.MulElem(m.dense, other.dense)
	return wrap(out), nil
}

// MatMul returns the matrix product m · other.
//
// (M, K) · (K, N) -> (M, N). Requires m.Cols() == other.Rows().
func (m *Matrix) MatMul(other *Matrix) (*Matrix, error) {
	mr, mc := m.Dims()
	or, oc := other.Dims()
	if m.IsEmpty() || other.IsEmpty() || mc != or {
		return nil, shapeError("matmul", m, other)
	}
	out := mat.NewDense(mr, oc, nil)
	out.Mul(m.dense, other.dense)
	return wrap(out), nil
}

// Scale returns m with every element multiplied by s.
func (m *Matrix) Scale(s float64) *Matrix {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Scale(s, m.dense)
	return wrap(out)
}

// Transpose returns a new matrix t with t[j][i] = m[i][j].
func (m *Matrix) Transpose() *Matrix {
	return wrap(mat.DenseCopyOf(m.dense.T()))
}

// SumRows collapses m to shape (1, cols), where column j holds the sum of
// column j over all rows.
func (m *Matrix) SumRows() *Matrix {
	r, c := m.Dims()
	sums := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		sums[j] = floats.Sum(mat.Col(col, j, m.dense))
	}
	return wrap(mat.NewDense(1, c, sums))
}

// AddRowVector adds the (1, cols) row vector v to every row of m.
//
// This is the only broadcasting operation; it exists for bias addition.
func (m *Matrix) AddRowVector(v *Matrix) (*Matrix, error) {
	mr, mc := m.Dims()
	vr, vc := v.Dims()
	if m.IsEmpty() || vr != 1 || vc != mc {
		return nil, shapeError("add row vector", m, v)
	}
	out := mat.DenseCopyOf(m.dense)
	bias := v.dense.RawRowView(0)
	for i := 0; i < mr; i++ {
		floats.Add(out.RawRowView(i), bias)
	}
	return wrap(out), nil
}

// ApplyRows applies f independently to a copy of each row of m and returns
// the results as a matrix of the same shape.
//
// Large matrices are split across goroutines by row, so f must be safe for
// concurrent use. A panic in f is re-raised on the calling goroutine. f must
// preserve row length; a row of any other length is reported as a shape
// mismatch.
func (m *Matrix) ApplyRows(f func(row []float64) []float64) (*Matrix, error) {
	r, c := m.Dims()
	if m.IsEmpty() {
		return nil, fmt.Errorf("apply rows: %w: empty matrix", ErrInvalidDimension)
	}
	out := mat.NewDense(r, c, nil)
	lengths := make([]int, r)
	parallel.For(r, parallel.DefaultConfig(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			res := f(m.Row(i))
			lengths[i] = len(res)
			if len(res) == c {
				out.SetRow(i, res)
			}
		}
	})
	for _, n := range lengths {
		if n != c {
			return nil, &ShapeError{Op: "apply rows", Left: [2]int{r, c}, Right: [2]int{1, n}}
		}
	}
	return wrap(out), nil
}

// Randomize fills m with values drawn uniformly from [low, high).
//
// A nil src draws from the global math/rand/v2 source. Returns
// ErrInvalidArgument unless low < high.
func (m *Matrix) Randomize(low, high float64, src rand.Source) error {
	if !(low < high) {
		return fmt.Errorf("randomize [%g, %g): %w: low must be < high", low, high, ErrInvalidArgument)
	}
	dist := distuv.Uniform{Min: low, Max: high, Src: src}
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		row := m.dense.RawRowView(i)
		for j := range row {
			row[j] = dist.Rand()
		}
	}
	return nil
}
