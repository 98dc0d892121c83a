package dataset

import (
	"fmt"

	"github.com/born-ml/feedforward/internal/matrix"
	"github.com/born-ml/feedforward/internal/parallel"
)

// Set is a labelled dataset ready for training: one (1, features) input
// row and one (1, classes) one-hot target per sample.
type Set struct {
	Inputs  []*matrix.Matrix
	Targets []*matrix.Matrix
	Labels  []int
}

// Len returns the number of samples.
func (s *Set) Len() int {
	return len(s.Inputs)
}

// Head returns a view of the first n samples. A non-positive n or one
// larger than Len returns s unchanged.
func (s *Set) Head(n int) *Set {
	if n <= 0 || n >= s.Len() {
		return s
	}
	return &Set{Inputs: s.Inputs[:n], Targets: s.Targets[:n], Labels: s.Labels[:n]}
}

// Normalize converts every image into a (1, rows*cols) row with pixels
// scaled from [0, 255] to [0, 1].
func Normalize(images *Images) []*matrix.Matrix {
	out := make([]*matrix.Matrix, images.Len())
	parallel.For(len(out), parallel.DefaultConfig(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			px := images.Pixels[i]
			row := make([]float64, len(px))
			for j, p := range px {
				row[j] = float64(p) / 255.0
			}
			m, err := matrix.FromSlice(1, len(row), row)
			if err != nil {
				panic("dataset.Normalize: " + err.Error())
			}
			out[i] = m
		}
	})
	return out
}

// OneHot returns a (1, classes) row with a 1 at label and 0 elsewhere.
func OneHot(label, classes int) (*matrix.Matrix, error) {
	if label < 0 || label >= classes {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrLabelRange, label, classes)
	}
	m, err := matrix.New(1, classes)
	if err != nil {
		return nil, err
	}
	m.Set(0, label, 1)
	return m, nil
}

// Load reads an image file and its label file and builds a Set.
func Load(imagesPath, labelsPath string, classes int) (*Set, error) {
	images, err := ReadImages(imagesPath)
	if err != nil {
		return nil, err
	}
	labels, err := ReadLabels(labelsPath)
	if err != nil {
		return nil, err
	}
	return FromRaw(images, labels, classes)
}

// FromRaw builds a Set from decoded images and labels.
func FromRaw(images *Images, labels []byte, classes int) (*Set, error) {
	if images.Len() != len(labels) {
		return nil, fmt.Errorf("%w: %d images but %d labels", ErrInvalidFormat, images.Len(), len(labels))
	}
	set := &Set{
		Inputs:  Normalize(images),
		Targets: make([]*matrix.Matrix, len(labels)),
		Labels:  make([]int, len(labels)),
	}
	for i, l := range labels {
		target, err := OneHot(int(l), classes)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		set.Targets[i] = target
		set.Labels[i] = int(l)
	}
	return set, nil
}
