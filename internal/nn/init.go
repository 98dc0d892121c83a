package nn

import (
	"math"
	"math/rand/v2"

	"github.com/born-ml/feedforward/internal/matrix"
)

// biasInitBound bounds the uniform bias initialization: U(-0.1, 0.1).
const biasInitBound = 0.1

// Xavier (Glorot) initialization for weights.
//
// Returns an [fanIn, fanOut] matrix drawn from
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))).
//
// A nil src uses the global random source.
func Xavier(fanIn, fanOut int, src rand.Source) (*matrix.Matrix, error) {
	w, err := matrix.New(fanIn, fanOut)
	if err != nil {
		return nil, err
	}
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	if err := w.Randomize(-bound, bound, src); err != nil {
		return nil, err
	}
	return w, nil
}

// UniformBias returns a [1, size] bias row drawn from U(-0.1, 0.1).
func UniformBias(size int, src rand.Source) (*matrix.Matrix, error) {
	b, err := matrix.New(1, size)
	if err != nil {
		return nil, err
	}
	if err := b.Randomize(-biasInitBound, biasInitBound, src); err != nil {
		return nil, err
	}
	return b, nil
}
