package nn

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// reluLeak is the slope of the leaky ReLU for non-positive inputs.
const reluLeak = 0.01

// Activation is the closed set of row activations a Dense layer can apply.
//
// Both Activate and Derivative operate on one row (one sample's
// pre-activation vector) and return a row of the same length.
type Activation int

// Supported activations.
const (
	// Sigmoid applies σ(x) = 1 / (1 + exp(-x)) elementwise.
	Sigmoid Activation = iota + 1

	// ReLU is the leaky rectifier: x for x > 0, 0.01x otherwise.
	ReLU

	// Softmax normalizes a row to exp(x_i) / Σ exp(x_j).
	//
	// Softmax is only valid on the output layer, whose backward pass takes
	// the incoming gradient as the delta directly. Its Derivative is never
	// valid and panics.
	Softmax
)

// Activate applies the activation to a row.
func (a Activation) Activate(x []float64) []float64 {
	y := make([]float64, len(x))
	switch a {
	case Sigmoid:
		for i, v := range x {
			y[i] = sigmoid(v)
		}
	case ReLU:
		for i, v := range x {
			if v > 0 {
				y[i] = v
			} else {
				y[i] = reluLeak * v
			}
		}
	case Softmax:
		for i, v := range x {
			y[i] = math.Exp(v)
		}
		sum := floats.Sum(y)
		for i := range y {
			y[i] /= sum
		}
	default:
		panic(fmt.Sprintf("Activation.Activate: unknown activation %d", int(a)))
	}
	return y
}

// Derivative returns the activation's derivative evaluated at each element
// of x.
//
// Sigmoid recomputes σ from its argument: σ(x)(1-σ(x)).
//
// Panics for Softmax.
func (a Activation) Derivative(x []float64) []float64 {
	y := make([]float64, len(x))
	switch a {
	case Sigmoid:
		for i, v := range x {
			s := sigmoid(v)
			y[i] = s * (1 - s)
		}
	case ReLU:
		for i, v := range x {
			if v > 0 {
				y[i] = 1
			} else {
				y[i] = reluLeak
			}
		}
	case Softmax:
		panic("Activation.Derivative: softmax has no elementwise derivative; use it only on the output layer")
	default:
		panic(fmt.Sprintf("Activation.Derivative: unknown activation %d", int(a)))
	}
	return y
}

// IsOutputOnly reports whether the activation may only be used on the
// output layer.
func (a Activation) IsOutputOnly() bool {
	return a == Softmax
}

// Valid reports whether a is one of the supported activations.
func (a Activation) Valid() bool {
	return a >= Sigmoid && a <= Softmax
}

// String returns the lower-case activation name.
func (a Activation) String() string {
	switch a {
	case Sigmoid:
		return "sigmoid"
	case ReLU:
		return "relu"
	case Softmax:
		return "softmax"
	default:
		return fmt.Sprintf("activation(%d)", int(a))
	}
}

// ParseActivation parses an activation name as produced by String.
// Matching is case-insensitive.
func ParseActivation(s string) (Activation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sigmoid":
		return Sigmoid, nil
	case "relu", "leaky_relu", "leakyrelu":
		return ReLU, nil
	case "softmax":
		return Softmax, nil
	default:
		return 0, fmt.Errorf("%w: unknown activation %q", ErrInvalidConfiguration, s)
	}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
