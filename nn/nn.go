// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"log/slog"
	"math/rand/v2"

	"github.com/born-ml/feedforward/internal/matrix"
	"github.com/born-ml/feedforward/internal/nn"
)

// Errors.
var (
	ErrInvalidConfiguration = nn.ErrInvalidConfiguration
	ErrNoForwardPass        = nn.ErrNoForwardPass
	ErrIO                   = nn.ErrIO
	ErrDimensionMismatch    = nn.ErrDimensionMismatch
	ErrInvalidDimension     = nn.ErrInvalidDimension
	ErrShapeMismatch        = nn.ErrShapeMismatch
	ErrInvalidArgument      = nn.ErrInvalidArgument
)

// Activations

// Activation is the row activation applied by a Dense layer.
type Activation = nn.Activation

// Supported activations.
const (
	Sigmoid = nn.Sigmoid
	ReLU    = nn.ReLU
	Softmax = nn.Softmax
)

// ParseActivation parses "sigmoid", "relu" or "softmax" (case-insensitive).
func ParseActivation(name string) (Activation, error) {
	return nn.ParseActivation(name)
}

// Layers

// Layer is implemented by every layer a Network can hold.
type Layer = nn.Layer

// Dense represents a fully connected layer: y = act(x · W + b).
type Dense = nn.Dense

// DenseOption configures a Dense layer.
type DenseOption = nn.DenseOption

// NewDense creates a new dense layer with Xavier-initialized weights.
//
// Example:
//
//	hidden, err := nn.NewDense(784, 16, nn.Sigmoid)
//	output, err := nn.NewDense(16, 10, nn.Softmax, nn.AsOutput())
func NewDense(inFeatures, outFeatures int, act Activation, opts ...DenseOption) (*Dense, error) {
	return nn.NewDense(inFeatures, outFeatures, act, opts...)
}

// AsOutput marks a layer as the network's output layer.
func AsOutput() DenseOption {
	return nn.AsOutput()
}

// WithSource sets the random source used for initialization.
func WithSource(src rand.Source) DenseOption {
	return nn.WithSource(src)
}

// WithPreUpdateGradient makes Backward propagate through the pre-update
// weights.
func WithPreUpdateGradient() DenseOption {
	return nn.WithPreUpdateGradient()
}

// WithOutputDerivative makes Backward evaluate the activation derivative at
// the layer output instead of the pre-activation.
func WithOutputDerivative() DenseOption {
	return nn.WithOutputDerivative()
}

// Initialization

// Xavier returns an [fanIn, fanOut] matrix with Xavier/Glorot uniform values.
func Xavier(fanIn, fanOut int, src rand.Source) (*matrix.Matrix, error) {
	return nn.Xavier(fanIn, fanOut, src)
}

// Network

// Network chains layers and trains them.
type Network = nn.Network

// Option configures a Network.
type Option = nn.Option

// NewNetwork creates an empty network.
func NewNetwork(opts ...Option) *Network {
	return nn.NewNetwork(opts...)
}

// WithLogger sets the logger used for training and persistence progress.
func WithLogger(logger *slog.Logger) Option {
	return nn.WithLogger(logger)
}

// LayerSpec describes one dense layer of a topology.
type LayerSpec = nn.LayerSpec

// ParseTopology parses "in:out:activation,..." into layer specs.
func ParseTopology(s string) ([]LayerSpec, error) {
	return nn.ParseTopology(s)
}

// Build creates a network from specs, marking the last layer as output.
//
// Example:
//
//	specs, _ := nn.ParseTopology("784:16:sigmoid,16:16:sigmoid,16:10:softmax")
//	net, err := nn.Build(specs, rand.NewPCG(1, 2))
func Build(specs []LayerSpec, src rand.Source, opts ...Option) (*Network, error) {
	return nn.Build(specs, src, opts...)
}

// LayerPath returns the file name used for layer i under prefix.
func LayerPath(prefix string, i int) string {
	return nn.LayerPath(prefix, i)
}

// Loss functions

// LossFunc computes a scalar loss for a prediction/target pair.
type LossFunc = nn.LossFunc

// CrossEntropy computes -Σ target·log(prediction).
func CrossEntropy(prediction, target *matrix.Matrix) (float64, error) {
	return nn.CrossEntropy(prediction, target)
}

// MSE computes the mean squared error.
func MSE(prediction, target *matrix.Matrix) (float64, error) {
	return nn.MSE(prediction, target)
}
