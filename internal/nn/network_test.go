package nn

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/feedforward/internal/matrix"
)

func rowsOf(t *testing.T, data [][]float64) []*matrix.Matrix {
	t.Helper()
	out := make([]*matrix.Matrix, len(data))
	for i, row := range data {
		out[i] = mustRows(t, [][]float64{row})
	}
	return out
}

func TestNetwork_ForwardShape(t *testing.T) {
	net := NewNetwork()
	hidden, err := NewDense(2, 2, Sigmoid, WithSource(seeded(1)))
	require.NoError(t, err)
	output, err := NewDense(2, 1, Sigmoid, AsOutput(), WithSource(seeded(2)))
	require.NoError(t, err)
	net.Add(hidden)
	net.Add(output)

	out, err := net.Forward(mustRows(t, [][]float64{{0.5, -0.5}}))
	require.NoError(t, err)

	rows, cols := out.Dims()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 1, cols)
	assert.Greater(t, out.At(0, 0), 0.0)
	assert.Less(t, out.At(0, 0), 1.0)
}

// TestNetwork_KnownValues runs a 2-2-1 sigmoid network with every weight 0.5
// and every bias 0.1.
func TestNetwork_KnownValues(t *testing.T) {
	hidden, err := NewDense(2, 2, Sigmoid)
	require.NoError(t, err)
	output, err := NewDense(2, 1, Sigmoid, AsOutput())
	require.NoError(t, err)
	for _, l := range []*Dense{hidden, output} {
		w := l.Weights()
		w.Fill(0.5)
		b := l.Biases()
		b.Fill(0.1)
		require.NoError(t, l.SetWeights(w))
		require.NoError(t, l.SetBiases(b))
	}
	net := NewNetwork()
	net.Add(hidden)
	net.Add(output)

	input := mustRows(t, [][]float64{{1, 1}})
	out, err := net.Forward(input)
	require.NoError(t, err)

	h := sigmoid(1.1)
	assert.InDelta(t, 0.7503, h, 1e-4)
	assert.InDelta(t, sigmoid(0.5*h+0.5*h+0.1), out.At(0, 0), 1e-12)

	hiddenOut, err := hidden.Forward(input)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{h, h}, hiddenOut.Row(0), 1e-12)
}

func TestNetwork_Empty(t *testing.T) {
	net := NewNetwork()
	assert.Equal(t, 0, net.Len())
	assert.Equal(t, 0, net.InFeatures())
	assert.Equal(t, 0, net.OutFeatures())

	_, err := net.Forward(mustRows(t, [][]float64{{1}}))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	assert.Panics(t, func() { net.Layer(0) })
}

func TestNetwork_WidthMismatchSurfacesAtForward(t *testing.T) {
	net := NewNetwork()
	first, err := NewDense(2, 3, ReLU)
	require.NoError(t, err)
	second, err := NewDense(4, 1, Sigmoid, AsOutput())
	require.NoError(t, err)
	net.Add(first)
	net.Add(second)

	_, err = net.Forward(mustRows(t, [][]float64{{1, 2}}))
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "layer 1")
}

func TestNetwork_TrainReducesError(t *testing.T) {
	net, err := Build([]LayerSpec{
		{In: 3, Out: 4, Activation: Sigmoid},
		{In: 4, Out: 2, Activation: Softmax},
	}, seeded(12))
	require.NoError(t, err)

	input := mustRows(t, [][]float64{{0.1, 0.9, 0.3}})
	target := mustRows(t, [][]float64{{0, 1}})

	before, err := net.Loss([]*matrix.Matrix{input}, []*matrix.Matrix{target}, CrossEntropy)
	require.NoError(t, err)

	require.NoError(t, net.Train(input, target, 200, 0.5))

	after, err := net.Loss([]*matrix.Matrix{input}, []*matrix.Matrix{target}, CrossEntropy)
	require.NoError(t, err)
	assert.Less(t, after, before)

	pred, err := net.Predict(input)
	require.NoError(t, err)
	assert.Equal(t, 1, pred)
}

func TestNetwork_TrainZeroEpochs(t *testing.T) {
	net, err := Build([]LayerSpec{{In: 2, Out: 2, Activation: Softmax}}, seeded(3))
	require.NoError(t, err)
	before := net.Layer(0).(*Dense).Weights()

	require.NoError(t, net.Train(mustRows(t, [][]float64{{1, 0}}), mustRows(t, [][]float64{{0, 1}}), 0, 0.5))
	assert.True(t, before.Equal(net.Layer(0).(*Dense).Weights()))

	err = net.Train(mustRows(t, [][]float64{{1, 0}}), mustRows(t, [][]float64{{0, 1}}), -1, 0.5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNetwork_TrainTargetShape(t *testing.T) {
	net, err := Build([]LayerSpec{{In: 2, Out: 2, Activation: Softmax}}, seeded(3))
	require.NoError(t, err)

	err = net.Train(mustRows(t, [][]float64{{1, 0}}), mustRows(t, [][]float64{{0, 1, 0}}), 1, 0.5)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestNetwork_TrainBatchLengthMismatch(t *testing.T) {
	net, err := Build([]LayerSpec{{In: 2, Out: 2, Activation: Softmax}}, seeded(3))
	require.NoError(t, err)

	inputs := rowsOf(t, [][]float64{{0, 0}, {1, 1}})
	targets := rowsOf(t, [][]float64{{1, 0}})
	err = net.TrainBatch(inputs, targets, 1, 0.1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// TestNetwork_TrainBatchOrder checks that TrainBatch is epoch-major
// per-sample descent: the same updates as calling Train on each sample in turn.
func TestNetwork_TrainBatchOrder(t *testing.T) {
	specs := []LayerSpec{
		{In: 2, Out: 3, Activation: Sigmoid},
		{In: 3, Out: 2, Activation: Softmax},
	}
	batched, err := Build(specs, seeded(77))
	require.NoError(t, err)
	stepped, err := Build(specs, seeded(77))
	require.NoError(t, err)

	inputs := rowsOf(t, [][]float64{{0.2, 0.9}, {0.8, 0.1}})
	targets := rowsOf(t, [][]float64{{0, 1}, {1, 0}})
	const lr = 0.3

	require.NoError(t, batched.TrainBatch(inputs, targets, 2, lr))
	for epoch := 0; epoch < 2; epoch++ {
		for i := range inputs {
			require.NoError(t, stepped.Train(inputs[i], targets[i], 1, lr))
		}
	}

	for i := 0; i < batched.Len(); i++ {
		a := batched.Layer(i).(*Dense)
		b := stepped.Layer(i).(*Dense)
		assert.True(t, a.Equal(b), "layer %d differs", i)
	}
}

// TestNetwork_XOR trains a 2-4-2 network on XOR with per-sample updates.
func TestNetwork_XOR(t *testing.T) {
	net, err := Build([]LayerSpec{
		{In: 2, Out: 4, Activation: Sigmoid},
		{In: 4, Out: 2, Activation: Softmax},
	}, seeded(42))
	require.NoError(t, err)

	inputs := rowsOf(t, [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}})
	targets := rowsOf(t, [][]float64{{1, 0}, {0, 1}, {0, 1}, {1, 0}})
	labels := []int{0, 1, 1, 0}

	require.NoError(t, net.TrainBatch(inputs, targets, 5000, 0.1))

	accuracy, err := net.Evaluate(inputs, labels)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, accuracy, 0.75)
}

func TestNetwork_EvaluateErrors(t *testing.T) {
	net, err := Build([]LayerSpec{{In: 2, Out: 2, Activation: Softmax}}, seeded(3))
	require.NoError(t, err)

	_, err = net.Evaluate(rowsOf(t, [][]float64{{0, 1}}), []int{0, 1})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = net.Evaluate(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = net.Loss(nil, nil, MSE)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNetwork_LogsTraining(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	net, err := Build([]LayerSpec{{In: 2, Out: 2, Activation: Softmax}}, seeded(3), WithLogger(logger))
	require.NoError(t, err)

	inputs := rowsOf(t, [][]float64{{0, 1}, {1, 0}})
	targets := rowsOf(t, [][]float64{{0, 1}, {1, 0}})
	require.NoError(t, net.TrainBatch(inputs, targets, 2, 0.1))

	out := buf.String()
	assert.Contains(t, out, "batch training started")
	assert.Contains(t, out, "mean_sse=")
	assert.Contains(t, out, "batch training completed")
}
