package nn

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/feedforward/internal/matrix"
)

// Network chains layers and trains them with per-sample gradient descent.
//
// Layer order defines both the forward composition and the reverse order
// of backpropagation. Layer widths are not checked when layers are added;
// a mismatch surfaces as a shape error from the first Forward.
//
// Example:
//
//	net := nn.NewNetwork()
//	net.Add(hidden)
//	net.Add(output)
//
//	if err := net.Train(input, target, 100, 0.01); err != nil {
//	    return err
//	}
//	prediction, err := net.Forward(input)
type Network struct {
	layers []Layer
	logger *slog.Logger
}

// Option configures a Network.
type Option func(*Network)

// WithLogger sets the logger used for training and persistence progress.
// The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Network) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNetwork creates an empty network.
func NewNetwork(opts ...Option) *Network {
	n := &Network{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Add appends a layer. The network takes ownership of it.
func (n *Network) Add(layer Layer) {
	n.layers = append(n.layers, layer)
}

// Len returns the number of layers.
func (n *Network) Len() int {
	return len(n.layers)
}

// Layer returns the layer at the given index.
//
// Panics if index is out of bounds.
func (n *Network) Layer(index int) Layer {
	if index < 0 || index >= len(n.layers) {
		panic("Network.Layer: index out of bounds")
	}
	return n.layers[index]
}

// InFeatures returns the input width of the first layer, or 0 for an empty
// network.
func (n *Network) InFeatures() int {
	if len(n.layers) == 0 {
		return 0
	}
	return n.layers[0].InFeatures()
}

// OutFeatures returns the output width of the last layer, or 0 for an
// empty network.
func (n *Network) OutFeatures() int {
	if len(n.layers) == 0 {
		return 0
	}
	return n.layers[len(n.layers)-1].OutFeatures()
}

// Forward passes input through every layer in order.
func (n *Network) Forward(input *matrix.Matrix) (*matrix.Matrix, error) {
	if len(n.layers) == 0 {
		return nil, fmt.Errorf("network forward: %w: no layers", ErrInvalidConfiguration)
	}
	out := input
	for i, layer := range n.layers {
		var err error
		out, err = layer.Forward(out)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return out, nil
}

// Train fits a single sample for the given number of epochs.
//
// Each epoch runs one forward pass, takes error = output - target as the
// output-layer gradient and backpropagates it through the layers in reverse
// order.
func (n *Network) Train(input, target *matrix.Matrix, epochs int, learningRate float64) error {
	if epochs < 0 {
		return fmt.Errorf("train: %w: negative epochs %d", ErrInvalidArgument, epochs)
	}
	n.logger.Info("training started", "epochs", epochs, "learning_rate", learningRate)
	start := time.Now()

	for epoch := 0; epoch < epochs; epoch++ {
		sse, err := n.step(input, target, learningRate)
		if err != nil {
			return fmt.Errorf("train epoch %d: %w", epoch+1, err)
		}
		n.logger.Debug("epoch finished", "epoch", epoch+1, "sse", sse)
	}

	n.logger.Info("training completed", "epochs", epochs, "elapsed", time.Since(start))
	return nil
}

// TrainBatch fits every (inputs[i], targets[i]) pair, epochs times.
//
// This is sequential per-sample gradient descent: parameters are updated
// after every sample, in order, for epochs × len(inputs) steps. Gradients
// are not averaged across the batch.
//
// Returns ErrInvalidArgument if inputs and targets differ in length.
func (n *Network) TrainBatch(inputs, targets []*matrix.Matrix, epochs int, learningRate float64) error {
	if len(inputs) != len(targets) {
		return fmt.Errorf("train batch: %w: %d inputs but %d targets",
			ErrInvalidArgument, len(inputs), len(targets))
	}
	if epochs < 0 {
		return fmt.Errorf("train batch: %w: negative epochs %d", ErrInvalidArgument, epochs)
	}
	n.logger.Info("batch training started",
		"epochs", epochs, "samples", len(inputs), "learning_rate", learningRate)
	start := time.Now()

	for epoch := 0; epoch < epochs; epoch++ {
		var total float64
		for i := range inputs {
			sse, err := n.step(inputs[i], targets[i], learningRate)
			if err != nil {
				return fmt.Errorf("train batch epoch %d sample %d: %w", epoch+1, i, err)
			}
			total += sse
		}
		if len(inputs) > 0 {
			n.logger.Debug("batch epoch finished", "epoch", epoch+1, "mean_sse", total/float64(len(inputs)))
		}
	}

	n.logger.Info("batch training completed", "epochs", epochs, "elapsed", time.Since(start))
	return nil
}

// step runs one forward/backward pass and returns the sum of squared
// output errors for logging.
func (n *Network) step(input, target *matrix.Matrix, learningRate float64) (float64, error) {
	output, err := n.Forward(input)
	if err != nil {
		return 0, err
	}
	grad, err := output.Sub(target)
	if err != nil {
		return 0, fmt.Errorf("output error: %w", err)
	}
	raw := grad.RawData()
	sse := floats.Dot(raw, raw)

	for i := len(n.layers) - 1; i >= 0; i-- {
		grad, err = n.layers[i].Backward(grad, learningRate)
		if err != nil {
			return 0, fmt.Errorf("layer %d backward: %w", i, err)
		}
	}
	return sse, nil
}

// Predict returns the index of the largest output of the first row.
func (n *Network) Predict(input *matrix.Matrix) (int, error) {
	out, err := n.Forward(input)
	if err != nil {
		return 0, err
	}
	return out.Argmax()[0], nil
}

// Evaluate returns the fraction of inputs whose prediction equals the
// corresponding label.
func (n *Network) Evaluate(inputs []*matrix.Matrix, labels []int) (float64, error) {
	if len(inputs) != len(labels) {
		return 0, fmt.Errorf("evaluate: %w: %d inputs but %d labels",
			ErrInvalidArgument, len(inputs), len(labels))
	}
	if len(inputs) == 0 {
		return 0, fmt.Errorf("evaluate: %w: no samples", ErrInvalidArgument)
	}
	correct := 0
	for i, input := range inputs {
		pred, err := n.Predict(input)
		if err != nil {
			return 0, fmt.Errorf("evaluate sample %d: %w", i, err)
		}
		if pred == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(inputs)), nil
}

// Loss returns the mean of loss over all (inputs[i], targets[i]) pairs.
func (n *Network) Loss(inputs, targets []*matrix.Matrix, loss LossFunc) (float64, error) {
	if len(inputs) != len(targets) {
		return 0, fmt.Errorf("loss: %w: %d inputs but %d targets",
			ErrInvalidArgument, len(inputs), len(targets))
	}
	if len(inputs) == 0 {
		return 0, fmt.Errorf("loss: %w: no samples", ErrInvalidArgument)
	}
	var total float64
	for i := range inputs {
		out, err := n.Forward(inputs[i])
		if err != nil {
			return 0, fmt.Errorf("loss sample %d: %w", i, err)
		}
		l, err := loss(out, targets[i])
		if err != nil {
			return 0, fmt.Errorf("loss sample %d: %w", i, err)
		}
		total += l
	}
	return total / float64(len(inputs)), nil
}

// Summary returns one line per layer, e.g. "0: dense 784 -> 16 (sigmoid)".
func (n *Network) Summary() string {
	var sb strings.Builder
	for i, l := range n.layers {
		fmt.Fprintf(&sb, "%d: %v\n", i, l)
	}
	return sb.String()
}
