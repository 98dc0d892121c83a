package nn

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// Persisted layer layout (one file per layer):
//
//	weights: in*out float64, row-major, little-endian
//	biases:  out float64, little-endian
//
// There is no header. The loader must already hold a layer of the right
// shape; LoadFile checks the file size against it.

// ByteSize returns the number of bytes Save writes.
func (d *Dense) ByteSize() int64 {
	return d.weights.ByteSize() + d.biases.ByteSize()
}

// Save writes the weights followed by the biases.
func (d *Dense) Save(w io.Writer) error {
	if _, err := d.weights.WriteTo(w); err != nil {
		return fmt.Errorf("%w: save weights: %w", ErrIO, err)
	}
	if _, err := d.biases.WriteTo(w); err != nil {
		return fmt.Errorf("%w: save biases: %w", ErrIO, err)
	}
	return nil
}

// Load reads weights and biases written by Save.
//
// The layer is only modified when both matrices were read completely. A
// stream that ends early yields ErrDimensionMismatch.
func (d *Dense) Load(r io.Reader) error {
	weights := d.weights.Clone()
	biases := d.biases.Clone()
	if _, err := weights.ReadFrom(r); err != nil {
		return loadError("weights", err)
	}
	if _, err := biases.ReadFrom(r); err != nil {
		return loadError("biases", err)
	}
	d.weights, d.biases = weights, biases
	return nil
}

func loadError(what string, err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: load %s: %w", ErrDimensionMismatch, what, err)
	}
	return fmt.Errorf("%w: load %s: %w", ErrIO, what, err)
}

// SaveFile writes the layer to path.
func (d *Dense) SaveFile(path string) error {
	return saveLayerFile(d, path)
}

// LoadFile reads the layer from path.
//
// Returns ErrDimensionMismatch if the file size differs from ByteSize.
func (d *Dense) LoadFile(path string) error {
	return loadLayerFile(d, path)
}

func saveLayerFile(l Layer, path string) (err error) {
	if path == "" {
		return fmt.Errorf("save layer: %w: empty path", ErrInvalidArgument)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrIO, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := l.Save(bw); err != nil {
		return fmt.Errorf("save layer %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: save layer %s: %w", ErrIO, path, err)
	}
	return nil
}

func loadLayerFile(l Layer, path string) error {
	if path == "" {
		return fmt.Errorf("load layer: %w: empty path", ErrInvalidArgument)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if want := l.ByteSize(); info.Size() != want {
		return fmt.Errorf("load layer %s: %w: file has %d bytes, layer needs %d",
			path, ErrDimensionMismatch, info.Size(), want)
	}

	if err := l.Load(bufio.NewReader(f)); err != nil {
		return fmt.Errorf("load layer %s: %w", path, err)
	}
	return nil
}

// LayerPath returns the file used for layer index i under prefix:
// "<prefix>_layer_<i>.dat".
func LayerPath(prefix string, i int) string {
	return fmt.Sprintf("%s_layer_%d.dat", prefix, i)
}

// SaveFile writes every layer to LayerPath(prefix, i).
//
// Saving is not transactional: if a layer fails, the layers before it have
// already been written and the error names the failing layer.
func (n *Network) SaveFile(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("save network: %w: empty path prefix", ErrInvalidArgument)
	}
	for i, l := range n.layers {
		path := LayerPath(prefix, i)
		if err := saveLayerFile(l, path); err != nil {
			n.logger.Error("failed to save layer", "layer", i, "path", path, "error", err)
			return fmt.Errorf("save network layer %d: %w", i, err)
		}
		n.logger.Debug("saved layer", "layer", i, "path", path)
	}
	n.logger.Info("saved network", "prefix", prefix, "layers", len(n.layers))
	return nil
}

// LoadFile reads every layer from LayerPath(prefix, i).
//
// Loading is not transactional: if a layer fails, the layers before it have
// already been replaced.
func (n *Network) LoadFile(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("load network: %w: empty path prefix", ErrInvalidArgument)
	}
	for i, l := range n.layers {
		path := LayerPath(prefix, i)
		if err := loadLayerFile(l, path); err != nil {
			n.logger.Error("failed to load layer", "layer", i, "path", path, "error", err)
			return fmt.Errorf("load network layer %d: %w", i, err)
		}
		n.logger.Debug("loaded layer", "layer", i, "path", path)
	}
	n.logger.Info("loaded network", "prefix", prefix, "layers", len(n.layers))
	return nil
}

var _ Layer = (*Dense)(nil)
