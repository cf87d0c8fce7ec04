package lanes

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trajgo/core/model"
	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// Encoder pools a variable number of lane segments into a fixed-width
// embedding: each segment passes through a shared pointwise linear layer
// with ReLU, then the per-dimension maximum over segments is taken. The
// max-pool makes the embedding invariant to segment order and count.
type Encoder struct {
	inDim  int
	outDim int

	// weight is outDim x inDim; bias is length outDim.
	weight *mat.Dense
	bias   []float64
}

// segmentDim is the width of one segment row: x, y, dx, dy.
const segmentDim = 4

// NewEncoder builds an encoder with the given embedding width, with weights
// drawn uniformly from [-1/sqrt(in), 1/sqrt(in)] using the given seed.
// Weights are normally replaced via ImportWeights before inference.
func NewEncoder(outDim int, seed int64) (*Encoder, error) {
	if outDim < 1 {
		return nil, errors.NewValidationError("embedding_size", "must be >= 1", outDim)
	}

	rng := rand.New(rand.NewSource(seed))
	bound := 1.0 / math.Sqrt(float64(segmentDim))

	w := mat.NewDense(outDim, segmentDim, nil)
	for i := 0; i < outDim; i++ {
		for j := 0; j < segmentDim; j++ {
			w.Set(i, j, (rng.Float64()*2-1)*bound)
		}
	}

	b := make([]float64, outDim)
	for i := range b {
		b[i] = (rng.Float64()*2 - 1) * bound
	}

	return &Encoder{inDim: segmentDim, outDim: outDim, weight: w, bias: b}, nil
}

// OutputDim returns the embedding width.
func (e *Encoder) OutputDim() int {
	return e.outDim
}

// Encode returns the pooled embedding for the given segments. Empty input
// yields a zero vector: ReLU output is non-negative, so zeros act as the
// pooling identity for an absent lane block.
func (e *Encoder) Encode(segs []Segment) []float64 {
	out := make([]float64, e.outDim)
	if len(segs) == 0 {
		return out
	}

	in := make([]float64, segmentDim)
	for si, s := range segs {
		in[0], in[1], in[2], in[3] = s.X, s.Y, s.DX, s.DY
		for i := 0; i < e.outDim; i++ {
			v := e.bias[i]
			for j := 0; j < segmentDim; j++ {
				v += e.weight.At(i, j) * in[j]
			}
			if v < 0 {
				v = 0
			}
			if si == 0 || v > out[i] {
				out[i] = v
			}
		}
	}
	return out
}

// ExportWeights serializes the encoder parameters.
func (e *Encoder) ExportWeights() (*model.NetworkWeights, error) {
	w := &model.NetworkWeights{
		ModelType: "LaneEncoder",
		Version:   model.WeightsVersion,
		Layers: []model.LayerWeights{
			{Name: "pointwise.weight", Rows: e.outDim, Cols: e.inDim, Data: append([]float64(nil), e.weight.RawMatrix().Data...)},
			{Name: "pointwise.bias", Rows: 1, Cols: e.outDim, Data: append([]float64(nil), e.bias...)},
		},
		Hyperparameters: map[string]interface{}{
			"embedding_size": e.outDim,
		},
	}
	return w, nil
}

// ImportWeights replaces the encoder parameters.
func (e *Encoder) ImportWeights(w *model.NetworkWeights) error {
	if err := w.Validate(); err != nil {
		return err
	}

	wl := w.Layer("pointwise.weight")
	bl := w.Layer("pointwise.bias")
	if wl == nil || bl == nil {
		return errors.NewModelError("ImportWeights", "LaneEncoder", errors.New("missing pointwise layer"))
	}
	if wl.Rows != e.outDim || wl.Cols != e.inDim {
		return errors.NewDimensionError("ImportWeights", e.outDim, wl.Rows, 0)
	}
	if bl.Cols != e.outDim {
		return errors.NewDimensionError("ImportWeights", e.outDim, bl.Cols, 1)
	}

	e.weight = mat.NewDense(wl.Rows, wl.Cols, append([]float64(nil), wl.Data...))
	e.bias = append([]float64(nil), bl.Data...)
	return nil
}
