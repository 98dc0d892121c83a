package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/feedforward/internal/matrix"
)

// Dense implements a fully connected layer.
//
// Performs the transformation: y = act(x · W + b)
// where:
//   - x is the input with shape [batch, in]
//   - W is the weight matrix with shape [in, out]
//   - b is the bias row with shape [1, out], added to every row of x · W
//   - y is the output with shape [batch, out]
//
// Weights are initialized with Xavier/Glorot uniform bounds, biases with
// U(-0.1, 0.1).
//
// Dense caches the input, pre-activation and output of the last Forward
// call; Backward reads those caches and updates W and b in place.
//
// Example:
//
//	hidden, _ := nn.NewDense(784, 16, nn.Sigmoid)
//	output, _ := nn.NewDense(16, 10, nn.Softmax, nn.AsOutput())
type Dense struct {
	inFeatures  int
	outFeatures int
	weights     *matrix.Matrix // [in, out]
	biases      *matrix.Matrix // [1, out]
	activation  Activation
	output      bool

	// preUpdateGradient makes Backward propagate through the weights as they
	// were during Forward instead of the freshly updated ones.
	preUpdateGradient bool

	// outputDerivative evaluates the activation derivative at the cached
	// output instead of the pre-activation.
	outputDerivative bool

	lastInput  *matrix.Matrix
	lastPreAct *matrix.Matrix
	lastOutput *matrix.Matrix
}

type denseConfig struct {
	output            bool
	preUpdateGradient bool
	outputDerivative  bool
	src               rand.Source
}

// DenseOption configures a Dense layer.
type DenseOption func(*denseConfig)

// AsOutput marks the layer as the network's output layer.
//
// The output layer is the only layer allowed to use Softmax, and its
// Backward takes the incoming gradient as the delta directly (see Backward).
func AsOutput() DenseOption {
	return func(c *denseConfig) { c.output = true }
}

// WithSource sets the random source used for parameter initialization.
func WithSource(src rand.Source) DenseOption {
	return func(c *denseConfig) { c.src = src }
}

// WithPreUpdateGradient makes Backward compute the input gradient from the
// weights used in the forward pass, as in textbook backpropagation.
//
// By default the input gradient is computed from the weights after this
// step's update.
func WithPreUpdateGradient() DenseOption {
	return func(c *denseConfig) { c.preUpdateGradient = true }
}

// WithOutputDerivative makes Backward evaluate the activation derivative at
// the layer output, act'(act(z)), instead of at the pre-activation z.
//
// This reproduces the behaviour of the reference engine. It is not the
// gradient of the layer and trains poorly with Sigmoid.
func WithOutputDerivative() DenseOption {
	return func(c *denseConfig) { c.outputDerivative = true }
}

// NewDense creates a new Dense layer.
//
// Parameters:
//   - inFeatures: Number of input features (width of the previous layer)
//   - outFeatures: Number of output features
//   - act: Activation applied to every output row
//   - opts: AsOutput, WithSource, WithPreUpdateGradient, WithOutputDerivative
//
// Returns ErrInvalidDimension for non-positive sizes and
// ErrInvalidConfiguration for an unknown activation.
func NewDense(inFeatures, outFeatures int, act Activation, opts ...DenseOption) (*Dense, error) {
	if inFeatures <= 0 || outFeatures <= 0 {
		return nil, fmt.Errorf("dense %d -> %d: %w", inFeatures, outFeatures, ErrInvalidDimension)
	}
	if !act.Valid() {
		return nil, fmt.Errorf("dense %d -> %d: %w: unknown activation %d",
			inFeatures, outFeatures, ErrInvalidConfiguration, int(act))
	}

	var cfg denseConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	weights, err := Xavier(inFeatures, outFeatures, cfg.src)
	if err != nil {
		return nil, fmt.Errorf("dense weights: %w", err)
	}
	biases, err := UniformBias(outFeatures, cfg.src)
	if err != nil {
		return nil, fmt.Errorf("dense biases: %w", err)
	}

	return &Dense{
		inFeatures:        inFeatures,
		outFeatures:       outFeatures,
		weights:           weights,
		biases:            biases,
		activation:        act,
		output:            cfg.output,
		preUpdateGradient: cfg.preUpdateGradient,
		outputDerivative:  cfg.outputDerivative,
	}, nil
}

// Forward computes act(input · W + b).
//
// Input shape: [batch, in]
// Output shape: [batch, out]
//
// Returns ErrInvalidConfiguration if the layer uses Softmax but is not the
// output layer, and a shape mismatch if input does not have in columns.
func (d *Dense) Forward(input *matrix.Matrix) (*matrix.Matrix, error) {
	if input.IsEmpty() {
		return nil, fmt.Errorf("dense forward: %w: empty input", ErrInvalidArgument)
	}
	d.lastInput = input.Clone()
	d.lastPreAct = nil
	d.lastOutput = nil

	z, err := input.MatMul(d.weights)
	if err != nil {
		return nil, fmt.Errorf("dense forward: %w", err)
	}
	z, err = z.AddRowVector(d.biases)
	if err != nil {
		return nil, fmt.Errorf("dense forward: %w", err)
	}

	if d.activation.IsOutputOnly() && !d.output {
		return nil, fmt.Errorf("dense forward: %w: %s is only valid on the output layer (use AsOutput)",
			ErrInvalidConfiguration, d.activation)
	}

	out, err := z.ApplyRows(d.activation.Activate)
	if err != nil {
		return nil, fmt.Errorf("dense forward: %w", err)
	}
	d.lastPreAct = z
	d.lastOutput = out
	return out.Clone(), nil
}

// Backward applies one gradient-descent step and returns the input gradient.
//
// Steps:
//  1. delta: for the output layer delta = dOutput; otherwise
//     delta = dOutput ⊙ act'(z), with z the cached pre-activation
//     (the cached output with WithOutputDerivative).
//  2. dW = inputᵀ · delta, dB = column sums of delta.
//  3. W -= learningRate·dW, b -= learningRate·dB.
//  4. dInput = delta · Wᵀ.
//
// The output-layer shortcut assumes the caller passes prediction - target,
// which is the gradient with respect to the pre-activation only for matching
// loss/activation pairs (softmax with cross-entropy, identity with squared
// error). It is applied whatever the activation is.
//
// Step 4 uses the updated W unless the layer was built with
// WithPreUpdateGradient.
//
// Returns ErrNoForwardPass if Forward has not succeeded yet. Parameters are
// left untouched when an error is returned.
func (d *Dense) Backward(dOutput *matrix.Matrix, learningRate float64) (*matrix.Matrix, error) {
	if d.lastInput.IsEmpty() || d.lastOutput.IsEmpty() {
		return nil, ErrNoForwardPass
	}

	delta, err := d.delta(dOutput)
	if err != nil {
		return nil, fmt.Errorf("dense backward: %w", err)
	}

	dWeights, err := d.lastInput.Transpose().MatMul(delta)
	if err != nil {
		return nil, fmt.Errorf("dense backward: weight gradient: %w", err)
	}
	dBiases := delta.SumRows()

	var weightsT *matrix.Matrix
	if d.preUpdateGradient {
		weightsT = d.weights.Transpose()
	}

	weights, err := d.weights.Sub(dWeights.Scale(learningRate))
	if err != nil {
		return nil, fmt.Errorf("dense backward: weight update: %w", err)
	}
	biases, err := d.biases.Sub(dBiases.Scale(learningRate))
	if err != nil {
		return nil, fmt.Errorf("dense backward: bias update: %w", err)
	}
	d.weights, d.biases = weights, biases

	if weightsT == nil {
		weightsT = d.weights.Transpose()
	}
	dInput, err := delta.MatMul(weightsT)
	if err != nil {
		return nil, fmt.Errorf("dense backward: input gradient: %w", err)
	}
	return dInput, nil
}

func (d *Dense) delta(dOutput *matrix.Matrix) (*matrix.Matrix, error) {
	or, oc := d.lastOutput.Dims()
	gr, gc := dOutput.Dims()
	if or != gr || oc != gc {
		return nil, &matrix.ShapeError{Op: "dense backward", Left: [2]int{or, oc}, Right: [2]int{gr, gc}}
	}
	if d.output {
		return dOutput.Clone(), nil
	}
	at := d.lastPreAct
	if d.outputDerivative {
		at = d.lastOutput
	}
	dAct, err := at.ApplyRows(d.activation.Derivative)
	if err != nil {
		return nil, err
	}
	return dOutput.MulElem(dAct)
}

// InFeatures returns the number of input features.
func (d *Dense) InFeatures() int {
	return d.inFeatures
}

// OutFeatures returns the number of output features.
func (d *Dense) OutFeatures() int {
	return d.outFeatures
}

// Activation returns the layer activation.
func (d *Dense) Activation() Activation {
	return d.activation
}

// IsOutput reports whether the layer was built with AsOutput.
func (d *Dense) IsOutput() bool {
	return d.output
}

// Weights returns a copy of the [in, out] weight matrix.
func (d *Dense) Weights() *matrix.Matrix {
	return d.weights.Clone()
}

// Biases returns a copy of the [1, out] bias row.
func (d *Dense) Biases() *matrix.Matrix {
	return d.biases.Clone()
}

// SetWeights replaces the weights with a copy of w, which must be [in, out].
func (d *Dense) SetWeights(w *matrix.Matrix) error {
	if w.Rows() != d.inFeatures || w.Cols() != d.outFeatures {
		return &matrix.ShapeError{Op: "set weights", Left: [2]int{d.inFeatures, d.outFeatures}, Right: [2]int{w.Rows(), w.Cols()}}
	}
	d.weights = w.Clone()
	return nil
}

// SetBiases replaces the biases with a copy of b, which must be [1, out].
func (d *Dense) SetBiases(b *matrix.Matrix) error {
	if b.Rows() != 1 || b.Cols() != d.outFeatures {
		return &matrix.ShapeError{Op: "set biases", Left: [2]int{1, d.outFeatures}, Right: [2]int{b.Rows(), b.Cols()}}
	}
	d.biases = b.Clone()
	return nil
}

// Equal reports whether d and other hold exactly the same weights and biases.
func (d *Dense) Equal(other *Dense) bool {
	return d.weights.Equal(other.weights) && d.biases.Equal(other.biases)
}

// String describes the layer, e.g. "dense 784 -> 16 (sigmoid)".
func (d *Dense) String() string {
	s := fmt.Sprintf("dense %d -> %d (%s)", d.inFeatures, d.outFeatures, d.activation)
	if d.output {
		s += " output"
	}
	return s
}
