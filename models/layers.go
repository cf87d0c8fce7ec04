package models

import (
	"math"
	"math/rand"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trajgo/core/model"
	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// linear is a dense layer y = Wx + b with weight (out x in).
type linear struct {
	in, out int
	weight  *mat.Dense
	bias    []float64
}

func newLinear(in, out int, rng *rand.Rand) *linear {
	bound := 1.0 / math.Sqrt(float64(in))
	w := mat.NewDense(out, in, nil)
	for i := 0; i < out; i++ {
		for j := 0; j < in; j++ {
			w.Set(i, j, (rng.Float64()*2-1)*bound)
		}
	}
	b := make([]float64, out)
	for i := range b {
		b[i] = (rng.Float64()*2 - 1) * bound
	}
	return &linear{in: in, out: out, weight: w, bias: b}
}

// forward writes Wx + b into dst, which must have length out.
func (l *linear) forward(x, dst []float64) {
	for i := 0; i < l.out; i++ {
		v := l.bias[i]
		row := l.weight.RawRowView(i)
		for j, xj := range x {
			v += row[j] * xj
		}
		dst[i] = v
	}
}

func (l *linear) export(prefix string) []model.LayerWeights {
	return []model.LayerWeights{
		{Name: prefix + ".weight", Rows: l.out, Cols: l.in, Data: append([]float64(nil), l.weight.RawMatrix().Data...)},
		{Name: prefix + ".bias", Rows: 1, Cols: l.out, Data: append([]float64(nil), l.bias...)},
	}
}

func (l *linear) load(w *model.NetworkWeights, prefix string) error {
	wl := w.Layer(prefix + ".weight")
	bl := w.Layer(prefix + ".bias")
	if wl == nil || bl == nil {
		return errors.Newf("trajgo: weights missing layer %q", prefix)
	}
	if wl.Rows != l.out || wl.Cols != l.in {
		return errors.NewDimensionError(prefix+".weight", l.out*l.in, wl.Rows*wl.Cols, 0)
	}
	if bl.Cols != l.out {
		return errors.NewDimensionError(prefix+".bias", l.out, bl.Cols, 0)
	}
	l.weight = mat.NewDense(wl.Rows, wl.Cols, append([]float64(nil), wl.Data...))
	l.bias = append([]float64(nil), bl.Data...)
	return nil
}

// gruCell is a single gated recurrent unit layer.
//
//	z = sigmoid(Wz x + Uz h + bz)
//	r = sigmoid(Wr x + Ur h + br)
//	c = tanh(Wh x + Uh (r*h) + bh)
//	h' = (1-z)*c + z*h
type gruCell struct {
	in, hidden int

	wz, wr, wh *linear // input projections (hidden x in)
	uz, ur, uh *linear // recurrent projections (hidden x hidden)
}

func newGRUCell(in, hidden int, rng *rand.Rand) *gruCell {
	return &gruCell{
		in: in, hidden: hidden,
		wz: newLinear(in, hidden, rng),
		wr: newLinear(in, hidden, rng),
		wh: newLinear(in, hidden, rng),
		uz: newLinear(hidden, hidden, rng),
		ur: newLinear(hidden, hidden, rng),
		uh: newLinear(hidden, hidden, rng),
	}
}

// step advances the hidden state in place given input x.
func (g *gruCell) step(x, h []float64, scratch *gruScratch) {
	g.wz.forward(x, scratch.z)
	g.uz.forward(h, scratch.tmp)
	for i := range scratch.z {
		scratch.z[i] = sigmoid(scratch.z[i] + scratch.tmp[i])
	}

	g.wr.forward(x, scratch.r)
	g.ur.forward(h, scratch.tmp)
	for i := range scratch.r {
		scratch.r[i] = sigmoid(scratch.r[i] + scratch.tmp[i])
	}

	for i := range scratch.rh {
		scratch.rh[i] = scratch.r[i] * h[i]
	}
	g.wh.forward(x, scratch.c)
	g.uh.forward(scratch.rh, scratch.tmp)
	for i := range scratch.c {
		scratch.c[i] = math.Tanh(scratch.c[i] + scratch.tmp[i])
	}

	for i := range h {
		h[i] = (1-scratch.z[i])*scratch.c[i] + scratch.z[i]*h[i]
	}
}

func (g *gruCell) export(prefix string) []model.LayerWeights {
	var out []model.LayerWeights
	for _, p := range []struct {
		name string
		l    *linear
	}{
		{"wz", g.wz}, {"wr", g.wr}, {"wh", g.wh},
		{"uz", g.uz}, {"ur", g.ur}, {"uh", g.uh},
	} {
		out = append(out, p.l.export(prefix+"."+p.name)...)
	}
	return out
}

func (g *gruCell) load(w *model.NetworkWeights, prefix string) error {
	for _, p := range []struct {
		name string
		l    *linear
	}{
		{"wz", g.wz}, {"wr", g.wr}, {"wh", g.wh},
		{"uz", g.uz}, {"ur", g.ur}, {"uh", g.uh},
	} {
		if err := p.l.load(w, prefix+"."+p.name); err != nil {
			return err
		}
	}
	return nil
}

// gruScratch holds per-step work buffers so decode loops do not allocate.
type gruScratch struct {
	z, r, c, rh, tmp []float64
}

func newGRUScratch(hidden int) *gruScratch {
	return &gruScratch{
		z:   make([]float64, hidden),
		r:   make([]float64, hidden),
		c:   make([]float64, hidden),
		rh:  make([]float64, hidden),
		tmp: make([]float64, hidden),
	}
}

// gruStack runs layered GRU cells; layer i feeds its hidden state to layer i+1.
type gruStack struct {
	cells   []*gruCell
	scratch *gruScratch
}

func newGRUStack(in, hidden, layers int, rng *rand.Rand) *gruStack {
	cells := make([]*gruCell, layers)
	for i := range cells {
		width := hidden
		if i == 0 {
			width = in
		}
		cells[i] = newGRUCell(width, hidden, rng)
	}
	return &gruStack{cells: cells, scratch: newGRUScratch(hidden)}
}

// newState returns zeroed hidden states, one per layer.
func (s *gruStack) newState() [][]float64 {
	h := make([][]float64, len(s.cells))
	for i := range h {
		h[i] = make([]float64, s.cells[i].hidden)
	}
	return h
}

// step feeds x through every layer, mutating the hidden states.
func (s *gruStack) step(x []float64, h [][]float64) {
	in := x
	for i, cell := range s.cells {
		cell.step(in, h[i], s.scratch)
		in = h[i]
	}
}

func (s *gruStack) export(prefix string) []model.LayerWeights {
	var out []model.LayerWeights
	for i, cell := range s.cells {
		out = append(out, cell.export(gruLayerPrefix(prefix, i))...)
	}
	return out
}

func (s *gruStack) load(w *model.NetworkWeights, prefix string) error {
	for i, cell := range s.cells {
		if err := cell.load(w, gruLayerPrefix(prefix, i)); err != nil {
			return err
		}
	}
	return nil
}

func gruLayerPrefix(prefix string, i int) string {
	return prefix + "." + strconv.Itoa(i)
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + errors.StabilizeExp(-x))
}

func relu(x []float64) {
	for i, v := range x {
		if v < 0 {
			x[i] = 0
		}
	}
}

// embeddedWidth is the row width after positional embedding.
func embeddedWidth(base, freqs int) int {
	if freqs == 0 {
		return base
	}
	return base * 2 * freqs
}

// embed expands v into its positional embedding: for each frequency
// i < freqs, sin(2^i * pi * v) followed by cos(2^i * pi * v). dst must have
// length 2*freqs*len(v). With freqs == 0 the input passes through and dst
// must match len(v).
func embed(v []float64, freqs int, dst []float64) {
	if freqs == 0 {
		copy(dst, v)
		return
	}
	k := 0
	for i := 0; i < freqs; i++ {
		scale := math.Pi * float64(int(1)<<uint(i))
		for _, x := range v {
			dst[k] = math.Sin(scale * x)
			k++
		}
		for _, x := range v {
			dst[k] = math.Cos(scale * x)
			k++
		}
	}
}
