package matrix

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// bytesPerElement is the size of one serialized float64.
const bytesPerElement = 8

// ByteSize returns the number of bytes WriteTo produces for m.
func (m *Matrix) ByteSize() int64 {
	r, c := m.Dims()
	return int64(r) * int64(c) * bytesPerElement
}

// WriteTo writes m as raw row-major little-endian float64 values.
//
// No header or dimension metadata is written; the reader must already know
// the shape. Implements io.WriterTo.
func (m *Matrix) WriteTo(w io.Writer) (int64, error) {
	r, c := m.Dims()
	buf := make([]byte, c*bytesPerElement)
	var n int64
	for i := 0; i < r; i++ {
		for j, v := range m.dense.RawRowView(i) {
			binary.LittleEndian.PutUint64(buf[j*bytesPerElement:], math.Float64bits(v))
		}
		written, err := w.Write(buf)
		n += int64(written)
		if err != nil {
			return n, fmt.Errorf("write row %d: %w", i, err)
		}
	}
	return n, nil
}

// ReadFrom fills m from raw row-major little-endian float64 values.
//
// Exactly ByteSize() bytes are consumed, so several matrices can be read
// back to back from one stream. m is left untouched unless the full payload
// was read; a short stream yields io.ErrUnexpectedEOF.
func (m *Matrix) ReadFrom(r io.Reader) (int64, error) {
	if m.IsEmpty() {
		return 0, fmt.Errorf("read: %w: matrix has no shape", ErrInvalidDimension)
	}
	buf := make([]byte, m.ByteSize())
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return int64(n), fmt.Errorf("read %d of %d bytes: %w", n, len(buf), err)
	}

	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		row := m.dense.RawRowView(i)
		for j := 0; j < cols; j++ {
			off := (i*cols + j) * bytesPerElement
			row[j] = math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
		}
	}
	return int64(n), nil
}
