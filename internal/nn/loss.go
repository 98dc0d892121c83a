package nn

import (
	"math"

	"github.com/born-ml/feedforward/internal/matrix"
)

// probFloor keeps log() finite for zero probabilities.
const probFloor = 1e-10

// LossFunc computes a scalar loss for one prediction/target pair of the
// same shape.
type LossFunc func(prediction, target *matrix.Matrix) (float64, error)

// CrossEntropy computes -Σ target·log(prediction) over all elements.
//
// Predictions below 1e-10 are clamped. Intended for softmax outputs and
// one-hot targets, whose gradient with respect to the logits is
// prediction - target.
func CrossEntropy(prediction, target *matrix.Matrix) (float64, error) {
	if _, err := prediction.Sub(target); err != nil {
		return 0, err
	}
	p := prediction.RawData()
	t := target.RawData()
	var loss float64
	for i := range p {
		loss -= t[i] * math.Log(math.Max(p[i], probFloor))
	}
	return loss, nil
}

// MSE computes mean((prediction - target)²).
func MSE(prediction, target *matrix.Matrix) (float64, error) {
	diff, err := prediction.Sub(target)
	if err != nil {
		return 0, err
	}
	d := diff.RawData()
	var sum float64
	for _, v := range d {
		sum += v * v
	}
	return sum / float64(len(d)), nil
}
