package matrix

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	m1 := mustRows(t, [][]float64{{1, 2}, {3, 4}})
	m2 := mustRows(t, [][]float64{{5, 6}, {7, 8}})

	sum, err := m1.Add(m2)
	require.NoError(t, err)
	assert.True(t, sum.Equal(mustRows(t, [][]float64{{6, 8}, {10, 12}})))
}

func TestSub(t *testing.T) {
	m1 := mustRows(t, [][]float64{{5, 6}, {7, 8}})
	m2 := mustRows(t, [][]float64{{1, 2}, {3, 4}})

	diff, err := m1.Sub(m2)
	require.NoError(t, err)
	assert.True(t, diff.Equal(mustRows(t, [][]float64{{4, 4}, {4, 4}})))
}

func TestAddSub_RoundTrip(t *testing.T) {
	src := rand.NewPCG(3, 4)
	for _, shape := range [][2]int{{1, 1}, {2, 3}, {5, 4}, {16, 10}} {
		a, _ := New(shape[0], shape[1])
		b, _ := New(shape[0], shape[1])
		require.NoError(t, a.Randomize(-1, 1, src))
		require.NoError(t, b.Randomize(-1, 1, src))

		sum, err := a.Add(b)
		require.NoError(t, err)
		back, err := sum.Sub(b)
		require.NoError(t, err)

		// (a+b)-b is not always exactly a in floating point; with values
		// of the same magnitude the rounding error stays below one ulp of b.
		for i, v := range back.RawData() {
			assert.InDelta(t, a.RawData()[i], v, 1e-15)
		}
	}
}

func TestAddSub_ExactForRepresentableValues(t *testing.T) {
	a := mustRows(t, [][]float64{{1.5, -2.25}, {8, 0.125}})
	b := mustRows(t, [][]float64{{0.5, 4}, {-3, 1024}})

	sum, err := a.Add(b)
	require.NoError(t, err)
	back, err := sum.Sub(b)
	require.NoError(t, err)
	assert.True(t, back.Equal(a))
}

func TestBinaryOps_ShapeMismatch(t *testing.T) {
	a := mustRows(t, [][]float64{{1, 2}, {3, 4}})
	b := mustRows(t, [][]float64{{1, 2, 3}})

	_, err := a.Add(b)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = a.Sub(b)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = a.MulElem(b)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	// (1,2) vs (2,1): same element count, still a mismatch.
	c := mustRows(t, [][]float64{{1, 2}})
	d := mustRows(t, [][]float64{{1}, {2}})
	_, err = c.Add(d)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestMulElem(t *testing.T) {
	a := mustRows(t, [][]float64{{1, 2}, {3, 4}})
	b := mustRows(t, [][]float64{{2, 0.5}, {-1, 0}})

	p, err := a.MulElem(b)
	require.NoError(t, err)
	assert.True(t, p.Equal(mustRows(t, [][]float64{{2, 1}, {-3, 0}})))
}

func TestMatMul(t *testing.T) {
	m1 := mustRows(t, [][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})
	m2 := mustRows(t, [][]float64{
		{7, 8},
		{9, 10},
		{11, 12},
	})

	product, err := m1.MatMul(m2)
	require.NoError(t, err)
	assert.True(t, product.Equal(mustRows(t, [][]float64{
		{58, 64},
		{139, 154},
	})), "got %v", product)
}

func TestMatMul_Shapes(t *testing.T) {
	for _, dims := range [][3]int{{1, 1, 1}, {2, 3, 4}, {5, 1, 7}, {3, 8, 2}} {
		a, _ := New(dims[0], dims[1])
		b, _ := New(dims[1], dims[2])
		p, err := a.MatMul(b)
		require.NoError(t, err)
		assert.Equal(t, dims[0], p.Rows())
		assert.Equal(t, dims[2], p.Cols())
	}

	a, _ := New(2, 3)
	b, _ := New(2, 3)
	_, err := a.MatMul(b)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestMatMul_MatchesTripleLoop(t *testing.T) {
	a, _ := New(4, 6)
	b, _ := New(6, 3)
	require.NoError(t, a.Randomize(-1, 1, rand.NewPCG(9, 9)))
	require.NoError(t, b.Randomize(-1, 1, rand.NewPCG(10, 10)))

	p, err := a.MatMul(b)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.0
			for k := 0; k < 6; k++ {
				sum += a.At(i, k) * b.At(k, j)
			}
			assert.InDelta(t, sum, p.At(i, j), 1e-12)
		}
	}
}

func TestScale(t *testing.T) {
	m := mustRows(t, [][]float64{{1, 2}, {3, 4}})
	scaled := m.Scale(2)
	assert.True(t, scaled.Equal(mustRows(t, [][]float64{{2, 4}, {6, 8}})))
	assert.Equal(t, 1.0, m.At(0, 0), "scale must not mutate the receiver")
}

func TestTranspose(t *testing.T) {
	m := mustRows(t, [][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})
	tr := m.Transpose()
	assert.True(t, tr.Equal(mustRows(t, [][]float64{
		{1, 4},
		{2, 5},
		{3, 6},
	})))

	// Transpose must be a copy, not a view.
	tr.Set(0, 1, 100)
	assert.Equal(t, 4.0, m.At(1, 0))
}

func TestTranspose_Involution(t *testing.T) {
	src := rand.NewPCG(11, 12)
	for _, shape := range [][2]int{{1, 1}, {1, 5}, {3, 2}, {7, 7}} {
		m, _ := New(shape[0], shape[1])
		require.NoError(t, m.Randomize(-10, 10, src))
		assert.True(t, m.Transpose().Transpose().Equal(m))
	}
}

func TestSumRows(t *testing.T) {
	m := mustRows(t, [][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{-1, 0, 0.5},
	})
	s := m.SumRows()
	assert.Equal(t, 1, s.Rows())
	assert.Equal(t, 3, s.Cols())
	assert.Equal(t, []float64{4, 7, 9.5}, s.Row(0))
}

func TestAddRowVector(t *testing.T) {
	m := mustRows(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	v := mustRows(t, [][]float64{{10, 20}})

	out, err := m.AddRowVector(v)
	require.NoError(t, err)
	assert.True(t, out.Equal(mustRows(t, [][]float64{{11, 22}, {13, 24}, {15, 26}})))

	_, err = m.AddRowVector(mustRows(t, [][]float64{{1, 2, 3}}))
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = m.AddRowVector(m)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestApplyRows(t *testing.T) {
	m := mustRows(t, [][]float64{{1, 2}, {3, 4}})

	doubled, err := m.ApplyRows(func(row []float64) []float64 {
		for i := range row {
			row[i] *= 2
		}
		return row
	})
	require.NoError(t, err)
	assert.True(t, doubled.Equal(mustRows(t, [][]float64{{2, 4}, {6, 8}})))
	assert.Equal(t, 1.0, m.At(0, 0), "f receives a copy of the row")
}

func TestApplyRows_LengthChange(t *testing.T) {
	m := mustRows(t, [][]float64{{1, 2}})
	_, err := m.ApplyRows(func(row []float64) []float64 {
		return append(row, 0)
	})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestApplyRows_ManyRows(t *testing.T) {
	m, err := New(1000, 3)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		m.Set(i, 0, float64(i))
	}

	out, err := m.ApplyRows(func(row []float64) []float64 {
		row[1] = row[0] + 1
		return row
	})
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, []float64{float64(i), float64(i) + 1, 0}, out.Row(i))
	}

	_, err = m.ApplyRows(func(row []float64) []float64 {
		if row[0] == 777 {
			return row[:1]
		}
		return row
	})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestApplyRows_PanicOnCallerGoroutine(t *testing.T) {
	m, err := New(1000, 2)
	require.NoError(t, err)
	m.Set(999, 0, 1)

	assert.PanicsWithValue(t, "row rejected", func() {
		_, _ = m.ApplyRows(func(row []float64) []float64 {
			if row[0] == 1 {
				panic("row rejected")
			}
			return row
		})
	})
}
