package nn

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// LayerSpec describes one dense layer of a topology.
type LayerSpec struct {
	In         int
	Out        int
	Activation Activation
}

// ParseTopology parses a comma-separated list of "in:out:activation" layers,
// e.g. "784:16:sigmoid,16:16:sigmoid,16:10:softmax".
//
// Each layer's input width must equal the previous layer's output width.
func ParseTopology(s string) ([]LayerSpec, error) {
	parts := strings.Split(s, ",")
	specs := make([]LayerSpec, 0, len(parts))
	for i, part := range parts {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("topology layer %d %q: %w: want in:out:activation",
				i, part, ErrInvalidConfiguration)
		}
		in, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("topology layer %d: %w: input width: %w", i, ErrInvalidConfiguration, err)
		}
		out, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("topology layer %d: %w: output width: %w", i, ErrInvalidConfiguration, err)
		}
		act, err := ParseActivation(fields[2])
		if err != nil {
			return nil, fmt.Errorf("topology layer %d: %w", i, err)
		}
		if i > 0 && specs[i-1].Out != in {
			return nil, fmt.Errorf("topology layer %d: %w: input width %d does not match previous output width %d",
				i, ErrInvalidConfiguration, in, specs[i-1].Out)
		}
		specs = append(specs, LayerSpec{In: in, Out: out, Activation: act})
	}
	return specs, nil
}

// Build creates a network of Dense layers from specs. The last layer is
// built with AsOutput.
func Build(specs []LayerSpec, src rand.Source, opts ...Option) (*Network, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("build: %w: no layers", ErrInvalidConfiguration)
	}
	net := NewNetwork(opts...)
	for i, spec := range specs {
		layerOpts := []DenseOption{WithSource(src)}
		if i == len(specs)-1 {
			layerOpts = append(layerOpts, AsOutput())
		}
		layer, err := NewDense(spec.In, spec.Out, spec.Activation, layerOpts...)
		if err != nil {
			return nil, fmt.Errorf("build layer %d: %w", i, err)
		}
		net.Add(layer)
	}
	return net, nil
}
