// Package dataset reads MNIST-style IDX files and turns them into
// network-ready samples.
package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// IDX magic numbers.
const (
	imagesMagic = 2051 // 0x00000803: unsigned bytes, 3 dimensions
	labelsMagic = 2049 // 0x00000801: unsigned bytes, 1 dimension
)

// maxImageSize bounds rows*cols of a single image.
const maxImageSize = 1 << 24

// Errors returned by the readers.
var (
	ErrInvalidFormat = errors.New("invalid idx file")
	ErrLabelRange    = errors.New("label out of range")
)

// Images holds raw pixel data of an IDX image file.
type Images struct {
	Rows   int
	Cols   int
	Pixels [][]byte // one slice of Rows*Cols bytes per image
}

// Len returns the number of images.
func (im *Images) Len() int {
	return len(im.Pixels)
}

// ReadImages reads an IDX image file.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
//
// Gzip-compressed files are detected and decompressed transparently.
func ReadImages(path string) (*Images, error) {
	var images *Images
	err := withReader(path, func(r io.Reader) error {
		var err error
		images, err = DecodeImages(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read images %s: %w", path, err)
	}
	return images, nil
}

// DecodeImages decodes an uncompressed IDX image stream.
func DecodeImages(r io.Reader) (*Images, error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrInvalidFormat, err)
	}
	magic, count, rows, cols := header[0], header[1], header[2], header[3]
	if magic != imagesMagic {
		return nil, fmt.Errorf("%w: magic %d, want %d", ErrInvalidFormat, magic, imagesMagic)
	}
	if rows == 0 || cols == 0 || uint64(rows)*uint64(cols) > maxImageSize {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrInvalidFormat, rows, cols)
	}

	size := int(rows) * int(cols)
	images := &Images{Rows: int(rows), Cols: int(cols), Pixels: make([][]byte, 0, min(int(count), 1<<16))}
	for i := 0; i < int(count); i++ {
		px := make([]byte, size)
		if _, err := io.ReadFull(r, px); err != nil {
			return nil, fmt.Errorf("%w: image %d: %w", ErrInvalidFormat, i, err)
		}
		images.Pixels = append(images.Pixels, px)
	}
	return images, nil
}

// ReadLabels reads an IDX label file.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadLabels(path string) ([]byte, error) {
	var labels []byte
	err := withReader(path, func(r io.Reader) error {
		var err error
		labels, err = DecodeLabels(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read labels %s: %w", path, err)
	}
	return labels, nil
}

// DecodeLabels decodes an uncompressed IDX label stream.
func DecodeLabels(r io.Reader) ([]byte, error) {
	var header [2]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrInvalidFormat, err)
	}
	if header[0] != labelsMagic {
		return nil, fmt.Errorf("%w: magic %d, want %d", ErrInvalidFormat, header[0], labelsMagic)
	}

	labels, err := io.ReadAll(io.LimitReader(r, int64(header[1])))
	if err != nil {
		return nil, fmt.Errorf("%w: labels: %w", ErrInvalidFormat, err)
	}
	if len(labels) != int(header[1]) {
		return nil, fmt.Errorf("%w: %d labels, header says %d", ErrInvalidFormat, len(labels), header[1])
	}
	return labels, nil
}

// withReader opens path and hands fn a reader over its contents,
// decompressing when the file starts with the gzip magic bytes.
func withReader(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return fmt.Errorf("%w: gzip: %w", ErrInvalidFormat, err)
		}
		defer zr.Close()
		return fn(zr)
	}
	return fn(br)
}
