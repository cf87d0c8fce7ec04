package models

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trajgo/config"
	"github.com/YuminosukeSato/trajgo/core/model"
	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// SimpleRNN is a GRU stack that consumes the observed window step by step
// and then decodes autoregressively: each predicted coordinate row is padded
// back to the input width, embedded, and fed in as the next step's input.
type SimpleRNN struct {
	model.BaseNetwork

	inSteps   int
	outSteps  int
	coordDims int
	freqs     int
	inWidth   int

	// dropout is the configured inter-layer rate. It is carried as a
	// hyperparameter for the training side; inference never drops units.
	dropout float64

	gru *gruStack
	out *linear
}

func newSimpleRNN(mc config.ModelConfig, dc config.DataConfig, rng *rand.Rand) (*SimpleRNN, error) {
	hidden := mc.HiddenSize.Scalar()
	m := &SimpleRNN{
		BaseNetwork: model.NewBaseNetwork(mc.Name, mc.Device),
		inSteps:     dc.InputTimesteps,
		outSteps:    dc.OutputTimesteps,
		coordDims:   dc.CoordDims,
		freqs:       dc.Features.PositionalEmbeddings,
		inWidth:     dc.BaseInputSize(),
		dropout:     mc.Dropout,
		gru:         newGRUStack(dc.InputSize(), hidden, mc.NumLayers, rng),
		out:         newLinear(hidden, dc.CoordDims, rng),
	}
	m.SetInitialized()
	return m, nil
}

// Predict encodes the window and decodes output_timesteps coordinate rows.
func (m *SimpleRNN) Predict(x mat.Matrix) (mat.Matrix, error) {
	rows, cols := x.Dims()
	if rows != m.inSteps || cols != m.inWidth {
		return nil, errors.NewInputShapeError("SimpleRNN.Predict", []int{m.inSteps, m.inWidth}, []int{rows, cols})
	}

	h := m.gru.newState()
	raw := make([]float64, m.inWidth)
	embedded := make([]float64, embeddedWidth(m.inWidth, m.freqs))

	for t := 0; t < rows; t++ {
		mat.Row(raw, t, x)
		embed(raw, m.freqs, embedded)
		m.gru.step(embedded, h)
	}

	out := mat.NewDense(m.outSteps, m.coordDims, nil)
	top := h[len(h)-1]
	pred := make([]float64, m.coordDims)
	for t := 0; t < m.outSteps; t++ {
		m.out.forward(top, pred)
		if err := errors.CheckNumericalStability("SimpleRNN.Predict", pred, t); err != nil {
			return nil, err
		}
		out.SetRow(t, pred)
		if t == m.outSteps-1 {
			break
		}

		// Feed the prediction back: coordinates in the leading slots of an
		// otherwise zero input row, then the usual embedding.
		for i := range raw {
			raw[i] = 0
		}
		copy(raw, pred)
		embed(raw, m.freqs, embedded)
		m.gru.step(embedded, h)
	}
	return out, nil
}

// PredictBatch predicts each sample independently.
func (m *SimpleRNN) PredictBatch(xs []mat.Matrix) ([]mat.Matrix, error) {
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

// ExportWeights serializes the GRU stack and the output projection.
func (m *SimpleRNN) ExportWeights() (*model.NetworkWeights, error) {
	w := &model.NetworkWeights{
		ModelType: m.Name(),
		Version:   model.WeightsVersion,
		Hyperparameters: map[string]interface{}{
			"hidden_size": m.gru.cells[0].hidden,
			"num_layers":  len(m.gru.cells),
			"dropout":     m.dropout,
		},
	}
	w.Layers = append(w.Layers, m.gru.export("gru")...)
	w.Layers = append(w.Layers, m.out.export("out")...)
	return w, nil
}

// ImportWeights restores the GRU stack and the output projection.
func (m *SimpleRNN) ImportWeights(w *model.NetworkWeights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.ModelType != m.Name() {
		return errors.Newf("trajgo: weights are for %q, model is %q", w.ModelType, m.Name())
	}
	if err := m.gru.load(w, "gru"); err != nil {
		return err
	}
	if err := m.out.load(w, "out"); err != nil {
		return err
	}
	m.SetLoaded()
	return nil
}
