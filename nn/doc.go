// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers and network of the feedforward engine.
//
// # Overview
//
// This package contains:
//   - Layers: Dense (fully connected, manual backpropagation)
//   - Activations: Sigmoid, leaky ReLU, Softmax (output layer only)
//   - Network: ordered layer stack trained with per-sample gradient descent
//   - Loss functions: CrossEntropy, MSE (for evaluation)
//   - Topology: ParseTopology and Build for "in:out:activation" lists
//   - Persistence: one raw little-endian file per layer
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/feedforward/matrix"
//	    "github.com/born-ml/feedforward/nn"
//	)
//
//	func main() {
//	    specs, _ := nn.ParseTopology("2:4:sigmoid,4:2:softmax")
//	    net, _ := nn.Build(specs, nil)
//
//	    x, _ := matrix.FromRows([][]float64{{0, 1}})
//	    y, _ := matrix.FromRows([][]float64{{0, 1}})
//	    _ = net.Train(x, y, 1000, 0.1)
//
//	    class, _ := net.Predict(x)
//	}
//
// # Training
//
// Each step runs Forward, takes output - target as the gradient of the
// output layer and calls Backward on every layer in reverse order. Each
// Backward updates that layer's weights immediately.
//
// The output layer treats the incoming gradient as the gradient of its
// pre-activation. That holds for Softmax with cross-entropy, which is the
// intended pairing.
//
// # Persistence
//
//	_ = net.SaveFile("model")  // model_layer_0.dat, model_layer_1.dat, ...
//	_ = net.LoadFile("model")  // layers must already have the right shapes
//
// # Concurrency
//
// Layers cache their last forward pass. A Network must not be used from
// more than one goroutine at a time.
package nn
