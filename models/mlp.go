package models

import (
	"math/rand"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trajgo/config"
	"github.com/YuminosukeSato/trajgo/core/model"
	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// SimpleMLP is the feed-forward baseline: the whole input window is
// flattened into one vector, passed through ReLU hidden layers, and
// projected to the full output trajectory at once.
type SimpleMLP struct {
	model.BaseNetwork

	inSteps   int
	outSteps  int
	coordDims int
	freqs     int
	inWidth   int

	hidden []*linear
	out    *linear
}

func newSimpleMLP(mc config.ModelConfig, dc config.DataConfig, rng *rand.Rand) (*SimpleMLP, error) {
	widths := mc.HiddenSize.Values()
	if mc.HiddenSize.IsScalar() {
		layers := mc.NumLayers
		if layers < 1 {
			layers = 1
		}
		widths = make([]int, layers)
		for i := range widths {
			widths[i] = mc.HiddenSize.Scalar()
		}
	}

	m := &SimpleMLP{
		BaseNetwork: model.NewBaseNetwork(mc.Name, mc.Device),
		inSteps:     dc.InputTimesteps,
		outSteps:    dc.OutputTimesteps,
		coordDims:   dc.CoordDims,
		freqs:       dc.Features.PositionalEmbeddings,
		inWidth:     dc.BaseInputSize(),
	}

	in := dc.InputSize() * dc.InputTimesteps
	for _, w := range widths {
		m.hidden = append(m.hidden, newLinear(in, w, rng))
		in = w
	}
	m.out = newLinear(in, dc.OutputTimesteps*dc.CoordDims, rng)
	m.SetInitialized()
	return m, nil
}

// Predict runs the flattened window through the network. x must be
// input_timesteps x BaseInputSize.
func (m *SimpleMLP) Predict(x mat.Matrix) (mat.Matrix, error) {
	flat, err := m.flatten(x)
	if err != nil {
		return nil, err
	}

	cur := flat
	for _, layer := range m.hidden {
		next := make([]float64, layer.out)
		layer.forward(cur, next)
		relu(next)
		cur = next
	}

	final := make([]float64, m.out.out)
	m.out.forward(cur, final)

	out := mat.NewDense(m.outSteps, m.coordDims, final)
	if err := errors.CheckMatrix("SimpleMLP.Predict", out, m.outSteps, m.coordDims, -1); err != nil {
		return nil, err
	}
	return out, nil
}

// PredictBatch predicts each sample independently.
func (m *SimpleMLP) PredictBatch(xs []mat.Matrix) ([]mat.Matrix, error) {
	out := make([]mat.Matrix, len(xs))
	for i, x := range xs {
		y, err := m.Predict(x)
		if err != nil {
			return nil, errors.Wrapf(err, "trajgo: batch sample %d", i)
		}
		out[i] = y
	}
	return out, nil
}

// flatten embeds every row and lays the window out row-major.
func (m *SimpleMLP) flatten(x mat.Matrix) ([]float64, error) {
	rows, cols := x.Dims()
	if rows != m.inSteps || cols != m.inWidth {
		return nil, errors.NewInputShapeError("SimpleMLP.Predict", []int{m.inSteps, m.inWidth}, []int{rows, cols})
	}

	width := embeddedWidth(cols, m.freqs)
	flat := make([]float64, width*rows)
	row := make([]float64, cols)
	for t := 0; t < rows; t++ {
		mat.Row(row, t, x)
		embed(row, m.freqs, flat[t*width:(t+1)*width])
	}
	return flat, nil
}

// ExportWeights serializes all layer parameters.
func (m *SimpleMLP) ExportWeights() (*model.NetworkWeights, error) {
	w := &model.NetworkWeights{
		ModelType: m.Name(),
		Version:   model.WeightsVersion,
		Hyperparameters: map[string]interface{}{
			"input_timesteps":  m.inSteps,
			"output_timesteps": m.outSteps,
			"coord_dims":       m.coordDims,
			"hidden_layers":    len(m.hidden),
		},
	}
	for i, layer := range m.hidden {
		w.Layers = append(w.Layers, layer.export("hidden."+strconv.Itoa(i))...)
	}
	w.Layers = append(w.Layers, m.out.export("out")...)
	return w, nil
}

// ImportWeights restores all layer parameters.
func (m *SimpleMLP) ImportWeights(w *model.NetworkWeights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.ModelType != m.Name() {
		return errors.Newf("trajgo: weights are for %q, model is %q", w.ModelType, m.Name())
	}
	for i, layer := range m.hidden {
		if err := layer.load(w, "hidden."+strconv.Itoa(i)); err != nil {
			return err
		}
	}
	if err := m.out.load(w, "out"); err != nil {
		return err
	}
	m.SetLoaded()
	return nil
}
