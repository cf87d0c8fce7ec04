package models

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trajgo/config"
	"github.com/YuminosukeSato/trajgo/core/model"
	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// Seq2Seq pairs an encoder GRU with a separate decoder GRU. The encoder
// digests the observed window; its final hidden state seeds the decoder,
// which runs on the predicted coordinates alone rather than padded input
// rows.
type Seq2Seq struct {
	model.BaseNetwork

	inSteps   int
	outSteps  int
	coordDims int
	freqs     int
	inWidth   int
	dropout   float64

	encoder *gruStack
	decoder *gruStack
	out     *linear
}

func newSeq2Seq(mc config.ModelConfig, dc config.DataConfig, rng *rand.Rand) (*Seq2Seq, error) {
	hidden := mc.HiddenSize.Scalar()
	m := &Seq2Seq{
		BaseNetwork: model.NewBaseNetwork(mc.Name, mc.Device),
		inSteps:     dc.InputTimesteps,
		outSteps:    dc.OutputTimesteps,
		coordDims:   dc.CoordDims,
		freqs:       dc.Features.PositionalEmbeddings,
		inWidth:     dc.BaseInputSize(),
		dropout:     mc.Dropout,
		encoder:     newGRUStack(dc.InputSize(), hidden, mc.NumLayers, rng),
		decoder:     newGRUStack(embeddedWidth(dc.CoordDims, dc.Features.PositionalEmbeddings), hidden, mc.NumLayers, rng),
		out:         newLinear(hidden, dc.CoordDims, rng),
	}
	m.SetInitialized()
	return m, nil
}

// Predict encodes the window, then decodes one coordinate row per output
// timestep, feeding each prediction back as the next decoder input.
func (m *Seq2Seq) Predict(x mat.Matrix) (mat.Matrix, error) {
	rows, cols := x.Dims()
	if rows != m.inSteps || cols != m.inWidth {
		return nil, errors.NewInputShapeError("Seq2Seq.Predict", []int{m.inSteps, m.inWidth}, []int{rows, cols})
	}

	h := m.encoder.newState()
	raw := make([]float64, m.inWidth)
	embedded := make([]float64, embeddedWidth(m.inWidth, m.freqs))
	for t := 0; t < rows; t++ {
		mat.Row(raw, t, x)
		embed(raw, m.freqs, embedded)
		m.encoder.step(embedded, h)
	}

	// The decoder starts from the encoder state. The first decoder input is
	// a zero coordinate row, standing in for "no displacement yet".
	out := mat.NewDense(m.outSteps, m.coordDims, nil)
	pred := make([]float64, m.coordDims)
	decIn := make([]float64, embeddedWidth(m.coordDims, m.freqs))

	for t := 0; t < m.outSteps; t++ {
		embed(pred, m.freqs, decIn)
		m.decoder.step(decIn, h)
		m.out.forward(h[len(h)-1], pred)
		if err := errors.CheckNumericalStability("Seq2Seq.Predict", pred, t); err != nil {
			return nil, err
		}
		out.SetRow(t, pred)
	}
	return out, nil
}

// PredictBatch predicts each sample independently.
func (m *Seq2Seq) PredictBatch(xs []mat.Matrix) ([]mat.Matrix, error) {
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

// ExportWeights serializes both GRU stacks and the output projection.
func (m *Seq2Seq) ExportWeights() (*model.NetworkWeights, error) {
	w := &model.NetworkWeights{
		ModelType: m.Name(),
		Version:   model.WeightsVersion,
		Hyperparameters: map[string]interface{}{
			"hidden_size": m.encoder.cells[0].hidden,
			"num_layers":  len(m.encoder.cells),
			"dropout":     m.dropout,
		},
	}
	w.Layers = append(w.Layers, m.encoder.export("encoder")...)
	w.Layers = append(w.Layers, m.decoder.export("decoder")...)
	w.Layers = append(w.Layers, m.out.export("out")...)
	return w, nil
}

// ImportWeights restores both GRU stacks and the output projection.
func (m *Seq2Seq) ImportWeights(w *model.NetworkWeights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.ModelType != m.Name() {
		return errors.Newf("trajgo: weights are for %q, model is %q", w.ModelType, m.Name())
	}
	if err := m.encoder.load(w, "encoder"); err != nil {
		return err
	}
	if err := m.decoder.load(w, "decoder"); err != nil {
		return err
	}
	if err := m.out.load(w, "out"); err != nil {
		return err
	}
	m.SetLoaded()
	return nil
}
