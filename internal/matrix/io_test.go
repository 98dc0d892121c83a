package matrix

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTo_Layout(t *testing.T) {
	m := mustRows(t, [][]float64{{1, 2}, {3, 4}})

	var buf bytes.Buffer
	n, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(32), n)
	assert.Equal(t, m.ByteSize(), n)

	// Row-major, little-endian float64, no header.
	raw := buf.Bytes()
	for i, want := range []float64{1, 2, 3, 4} {
		got := math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		assert.Equal(t, want, got)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	src, _ := New(5, 3)
	require.NoError(t, src.Randomize(-1e3, 1e3, rand.NewPCG(5, 6)))

	var buf bytes.Buffer
	_, err := src.WriteTo(&buf)
	require.NoError(t, err)

	dst, _ := New(5, 3)
	n, err := dst.ReadFrom(&buf)
	require.NoError(t, err)
	assert.Equal(t, src.ByteSize(), n)
	assert.True(t, dst.Equal(src), "round trip must be bit-identical")
}

func TestReadFrom_Sequential(t *testing.T) {
	a := mustRows(t, [][]float64{{1, 2, 3}})
	b := mustRows(t, [][]float64{{4}, {5}})

	var buf bytes.Buffer
	_, err := a.WriteTo(&buf)
	require.NoError(t, err)
	_, err = b.WriteTo(&buf)
	require.NoError(t, err)

	ra, _ := New(1, 3)
	rb, _ := New(2, 1)
	_, err = ra.ReadFrom(&buf)
	require.NoError(t, err)
	_, err = rb.ReadFrom(&buf)
	require.NoError(t, err)

	assert.True(t, ra.Equal(a))
	assert.True(t, rb.Equal(b))
	assert.Zero(t, buf.Len())
}

func TestReadFrom_ShortStream(t *testing.T) {
	m, _ := New(2, 2)
	m.Fill(7)

	_, err := m.ReadFrom(bytes.NewReader(make([]byte, 12)))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = m.ReadFrom(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	for _, v := range m.RawData() {
		assert.Equal(t, 7.0, v, "short read must leave the matrix untouched")
	}
}

func TestReadFrom_EmptyMatrix(t *testing.T) {
	var m Matrix
	_, err := m.ReadFrom(bytes.NewReader(make([]byte, 8)))
	assert.ErrorIs(t, err, ErrInvalidDimension)
}
