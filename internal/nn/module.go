// Package nn implements the layers and network of the feedforward engine.
//
// This package provides:
//   - Activation: Sigmoid, leaky ReLU and Softmax row transforms
//   - Layer: the capability every layer implements (forward, backward, save, load)
//   - Dense: fully connected layer with manual backpropagation
//   - Network: ordered layer stack with per-sample gradient descent
//   - Loss functions: CrossEntropy, MSE
//   - Raw per-layer persistence
//
// Layers keep the input and output of their last forward pass and mutate
// their parameters during backward. A Layer (and therefore a Network) must
// not be used from more than one goroutine at a time, and every Backward
// must follow the Forward whose caches it consumes.
package nn

import (
	"io"

	"github.com/born-ml/feedforward/internal/matrix"
)

// Layer is the interface implemented by every network layer.
//
// Layers can be stacked in a Network:
//
//	net := nn.NewNetwork()
//	net.Add(hidden) // *Dense, 784 -> 16
//	net.Add(output) // *Dense, 16 -> 10, AsOutput()
type Layer interface {
	// Forward computes the layer output for input ([batch, in]) and caches
	// what Backward needs. Returns a matrix of shape [batch, out].
	Forward(input *matrix.Matrix) (*matrix.Matrix, error)

	// Backward consumes the loss gradient with respect to the layer output,
	// updates the layer parameters in place with the given learning rate,
	// and returns the gradient with respect to the layer input.
	Backward(dOutput *matrix.Matrix, learningRate float64) (*matrix.Matrix, error)

	// Save writes the layer parameters in the raw persisted layout.
	Save(w io.Writer) error

	// Load reads parameters written by Save into the existing shape.
	Load(r io.Reader) error

	// InFeatures returns the input width.
	InFeatures() int

	// OutFeatures returns the output width.
	OutFeatures() int

	// ByteSize returns the number of bytes Save writes.
	ByteSize() int64
}
