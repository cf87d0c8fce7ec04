package config

import (
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// HiddenSize holds the model.hidden_size setting, which is a scalar integer
// for recurrent architectures and an ordered sequence of integers for the
// MLP. The scalar-vs-sequence shape is preserved so the document round-trips
// exactly.
type HiddenSize struct {
	values []int
	scalar bool
}

// ScalarHidden creates a scalar hidden size.
func ScalarHidden(n int) HiddenSize {
	return HiddenSize{values: []int{n}, scalar: true}
}

// LayerHidden creates a sequence hidden size with one entry per layer.
func LayerHidden(ns ...int) HiddenSize {
	values := make([]int, len(ns))
	copy(values, ns)
	return HiddenSize{values: values}
}

// IsScalar reports whether the setting was written as a single integer.
func (h HiddenSize) IsScalar() bool {
	return h.scalar
}

// IsZero reports whether the setting is absent. yaml.v3 uses this to omit
// the field when marshalling an empty value.
func (h HiddenSize) IsZero() bool {
	return len(h.values) == 0
}

// Scalar returns the single hidden width. Valid only for scalar settings
// (Validate enforces this for recurrent architectures).
func (h HiddenSize) Scalar() int {
	if len(h.values) == 0 {
		return 0
	}
	return h.values[0]
}

// Values returns the ordered layer widths. Scalar settings yield a
// one-element slice.
func (h HiddenSize) Values() []int {
	out := make([]int, len(h.values))
	copy(out, h.values)
	return out
}

// UnmarshalYAML accepts either `hidden_size: 64` or `hidden_size: [64, 32]`.
func (h *HiddenSize) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var n int
		if err := node.Decode(&n); err != nil {
			return errors.Wrap(err, "hidden_size: scalar")
		}
		h.values = []int{n}
		h.scalar = true
		return nil

	case yaml.SequenceNode:
		var ns []int
		if err := node.Decode(&ns); err != nil {
			return errors.Wrap(err, "hidden_size: sequence")
		}
		h.values = ns
		h.scalar = false
		return nil

	default:
		return errors.Newf("hidden_size: expected an integer or a sequence of integers, got a %v node", node.Kind)
	}
}

// MarshalYAML writes the setting back in the shape it was read: a plain
// integer for scalar settings, a flow sequence otherwise.
func (h HiddenSize) MarshalYAML() (interface{}, error) {
	if h.scalar {
		return h.Scalar(), nil
	}
	return h.values, nil
}
