package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trajgo/config"
	"github.com/YuminosukeSato/trajgo/models/lanes"
	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// Featurizer turns transformed scenes into model input and target matrices.
//
// For each input timestep the feature row holds, in order:
//   - the target agent position (coord_dims values),
//   - the positions of the p_in nearest neighbor agents (p_in * coord_dims),
//   - the velocities of the first v_in agents in the same target-first
//     ordering (v_in * coord_dims),
//   - the lane block: either the count nearest segments flattened to
//     [x y dx dy] rows, or their pooled embedding when an encoder is set.
//
// The row width matches config.DataConfig.BaseInputSize.
type Featurizer struct {
	cfg config.DataConfig
	enc *lanes.Encoder
}

// NewFeaturizer builds a featurizer for the given data configuration. When
// features.lanes.embedding_size is positive, enc must be non-nil and its
// output width must match; with embedding_size zero, enc is ignored.
func NewFeaturizer(cfg config.DataConfig, enc *lanes.Encoder) (*Featurizer, error) {
	es := cfg.Features.Lanes.EmbeddingSize
	if es > 0 {
		if enc == nil {
			return nil, errors.NewValueError("dataset.NewFeaturizer", "embedding_size set but no lane encoder given")
		}
		if enc.OutputDim() != es {
			return nil, errors.NewDimensionError("dataset.NewFeaturizer", es, enc.OutputDim(), 1)
		}
	}
	return &Featurizer{cfg: cfg, enc: enc}, nil
}

// InputSize returns the width of one feature row.
func (f *Featurizer) InputSize() int {
	return f.cfg.BaseInputSize()
}

// Features builds the input matrix (input_timesteps x BaseInputSize) for
// one scene. The scene is expected to be in the agent-centered frame when
// lane filters are enabled.
func (f *Featurizer) Features(s *Scene) (*mat.Dense, error) {
	agent, err := s.AgentIndex()
	if err != nil {
		return nil, err
	}
	if s.InputTimesteps() != f.cfg.InputTimesteps {
		return nil, errors.NewDimensionError("dataset.Features", f.cfg.InputTimesteps, s.InputTimesteps(), 0)
	}

	width := f.cfg.BaseInputSize()
	out := mat.NewDense(f.cfg.InputTimesteps, width, nil)

	segs := f.filterLanes(s)

	for t := 0; t < f.cfg.InputTimesteps; t++ {
		row := out.RawRowView(t)
		f.fillRow(row, s, agent, t, segs)
	}
	return out, nil
}

// Targets builds the target matrix (output_timesteps x coord_dims) from the
// agent's future track.
func (f *Featurizer) Targets(s *Scene) (*mat.Dense, error) {
	agent, err := s.AgentIndex()
	if err != nil {
		return nil, err
	}
	if s.OutputTimesteps() != f.cfg.OutputTimesteps {
		return nil, errors.NewDimensionError("dataset.Targets", f.cfg.OutputTimesteps, s.OutputTimesteps(), 0)
	}

	out := mat.NewDense(f.cfg.OutputTimesteps, f.cfg.CoordDims, nil)
	for t := 0; t < f.cfg.OutputTimesteps; t++ {
		for d := 0; d < f.cfg.CoordDims; d++ {
			out.Set(t, d, s.POut[agent][t][d])
		}
	}
	return out, nil
}

func (f *Featurizer) fillRow(row []float64, s *Scene, agent, t int, segs []lanes.Segment) {
	coord := f.cfg.CoordDims
	order := neighborOrder(s, agent, t)

	// Target position, then the p_in nearest neighbors.
	col := 0
	copy(row[col:col+coord], s.PIn[agent][t][:coord])
	col += coord
	for n := 0; n < f.cfg.Features.PIn; n++ {
		if n < len(order) {
			copy(row[col:col+coord], s.PIn[order[n]][t][:coord])
		}
		col += coord
	}

	// Velocities follow the same target-first ordering.
	for n := 0; n < f.cfg.Features.VIn; n++ {
		idx := -1
		switch {
		case n == 0:
			idx = agent
		case n-1 < len(order):
			idx = order[n-1]
		}
		if idx >= 0 {
			copy(row[col:col+coord], s.VIn[idx][t][:coord])
		}
		col += coord
	}

	// Lane block, anchored at the target position for this timestep.
	// Lanes live in the plane; a 1-D scene anchors at y = 0.
	lc := f.cfg.Features.Lanes
	if lc.Count > 0 {
		pt := s.PIn[agent][t]
		x, y := pt[0], 0.0
		if len(pt) > 1 {
			y = pt[1]
		}
		near := lanes.Nearest(segs, x, y, lc.Count)
		if lc.EmbeddingSize > 0 {
			copy(row[col:], f.enc.Encode(near))
		} else {
			copy(row[col:], lanes.Flatten(near, lc.Count))
		}
	}
}

// filterLanes applies the configured heading and rear filters once per
// scene. An empty result after filtering is reported as a warning and the
// lane block falls back to zeros.
func (f *Featurizer) filterLanes(s *Scene) []lanes.Segment {
	lc := f.cfg.Features.Lanes
	if lc.Count == 0 {
		return nil
	}

	segs := lanes.FromRows(s.Lanes, s.LaneNorms)

	if lc.AngleFilter {
		before := len(segs)
		segs = lanes.AngleFilter(segs)
		if len(segs) == 0 && before > 0 {
			errors.Warn(errors.NewEmptyLaneWarning("angle", s.ID, before))
			return nil
		}
	}

	if lc.RearFilter > 0 {
		before := len(segs)
		segs = lanes.RearFilter(segs, lc.RearFilter)
		if len(segs) == 0 && before > 0 {
			errors.Warn(errors.NewEmptyLaneWarning("rear", s.ID, before))
			return nil
		}
	}

	return segs
}

// neighborOrder returns non-agent track indices sorted by distance to the
// agent at timestep t, nearest first.
func neighborOrder(s *Scene, agent, t int) []int {
	order := make([]int, 0, s.NumAgents()-1)
	for i := 0; i < s.NumAgents(); i++ {
		if i != agent {
			order = append(order, i)
		}
	}

	ref := s.PIn[agent][t]
	sort.SliceStable(order, func(i, j int) bool {
		return distSq(s.PIn[order[i]][t], ref) < distSq(s.PIn[order[j]][t], ref)
	})
	return order
}

// distSq is the squared distance over however many coordinate dimensions
// the scene carries.
func distSq(p, ref []float64) float64 {
	var d float64
	for k := range ref {
		diff := p[k] - ref[k]
		d += diff * diff
	}
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}
