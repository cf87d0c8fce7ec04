package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trajgo/dataset"
	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// AgentCenterName is the identifier the configuration uses for this transform.
const AgentCenterName = "AgentCenter"

// AgentCenter re-expresses a scene in the target agent's frame:
//
//   - One rotation per scene aligns the agent's observed heading (first to
//     last input position) with the +y axis. All positions, velocities and
//     lane directions rotate with it.
//   - Neighbor positions at each input timestep become offsets from the
//     agent's position at that same timestep.
//   - The agent's own input track becomes per-step displacements: the first
//     row is zero, each later row is the rotated step from the previous
//     position.
//   - Future positions become cumulative offsets from each track's last
//     observed position, i.e. the running sum of the per-step displacements.
//   - Lane points become offsets from the agent's last observed position.
//
// The transform is deterministic in the original scene, so Invert recovers
// absolute coordinates from predicted offsets without stored state.
type AgentCenter struct{}

// NewAgentCenter returns the transform.
func NewAgentCenter() *AgentCenter {
	return &AgentCenter{}
}

// Name returns AgentCenterName.
func (a *AgentCenter) Name() string { return AgentCenterName }

// frame is the per-scene rotation and anchor derived from the agent track.
type frame struct {
	// cos and sin define the rotation taking the agent heading to +y.
	cos, sin float64
	// anchor is the agent's last observed position.
	anchor [2]float64
}

func (f *frame) rotate(x, y float64) (float64, float64) {
	return f.cos*x - f.sin*y, f.sin*x + f.cos*y
}

func (f *frame) rotateBack(x, y float64) (float64, float64) {
	return f.cos*x + f.sin*y, -f.sin*x + f.cos*y
}

// sceneFrame derives the rotation and anchor from an untransformed scene.
func sceneFrame(s *dataset.Scene) (int, *frame, error) {
	agent, err := s.AgentIndex()
	if err != nil {
		return 0, nil, err
	}

	track := s.PIn[agent]
	if len(track) < 2 {
		return 0, nil, errors.NewValueError("preprocessing.AgentCenter", "agent track needs at least two observed positions")
	}
	if len(track[0]) < 2 {
		return 0, nil, errors.NewDimensionError("preprocessing.AgentCenter", 2, len(track[0]), 1)
	}

	first, last := track[0], track[len(track)-1]
	hx, hy := last[0]-first[0], last[1]-first[1]

	f := &frame{anchor: [2]float64{last[0], last[1]}}
	norm := math.Hypot(hx, hy)
	if norm < 1e-9 {
		// Stationary agent: keep the original orientation.
		f.cos, f.sin = 1, 0
	} else {
		// Rotate the heading (hx, hy) onto (0, 1).
		f.cos = hy / norm
		f.sin = hx / norm
	}
	return agent, f, nil
}

// Apply mutates the scene into the agent-centered frame.
func (a *AgentCenter) Apply(s *dataset.Scene) error {
	agent, f, err := sceneFrame(s)
	if err != nil {
		return err
	}

	inSteps := s.InputTimesteps()

	// Agent positions at each input timestep, pre-transform. Needed for the
	// neighbor offsets after the agent track is overwritten.
	agentPos := make([][2]float64, inSteps)
	for t := 0; t < inSteps; t++ {
		agentPos[t] = [2]float64{s.PIn[agent][t][0], s.PIn[agent][t][1]}
	}

	// Last observed position per track, captured before any input row is
	// rewritten. Future offsets are measured against these.
	lastPos := make([][2]float64, len(s.PIn))
	for i := range s.PIn {
		last := s.PIn[i][len(s.PIn[i])-1]
		lastPos[i] = [2]float64{last[0], last[1]}
	}

	for i := range s.PIn {
		if i == agent {
			continue
		}
		for t := 0; t < inSteps; t++ {
			p := s.PIn[i][t]
			p[0], p[1] = f.rotate(p[0]-agentPos[t][0], p[1]-agentPos[t][1])
		}
	}

	// Agent input track becomes rotated per-step displacements.
	prev := agentPos[0]
	for t := 0; t < inSteps; t++ {
		p := s.PIn[agent][t]
		dx, dy := p[0]-prev[0], p[1]-prev[1]
		prev = [2]float64{p[0], p[1]}
		p[0], p[1] = f.rotate(dx, dy)
	}

	// Future tracks: cumulative offsets from each track's last observed
	// position. Rotation is linear, so this equals the running sum of the
	// rotated per-step displacements.
	for i := range s.POut {
		px, py := lastPos[i][0], lastPos[i][1]
		for t := range s.POut[i] {
			p := s.POut[i][t]
			p[0], p[1] = f.rotate(p[0]-px, p[1]-py)
		}
	}

	for _, track := range [][][][]float64{s.VIn, s.VOut} {
		for i := range track {
			for t := range track[i] {
				v := track[i][t]
				v[0], v[1] = f.rotate(v[0], v[1])
			}
		}
	}

	for _, p := range s.Lanes {
		p[0], p[1] = f.rotate(p[0]-f.anchor[0], p[1]-f.anchor[1])
	}
	for _, n := range s.LaneNorms {
		n[0], n[1] = f.rotate(n[0], n[1])
	}

	return nil
}

// Invert converts predicted offsets back to absolute coordinates. pred is
// output_timesteps x 2 of cumulative offsets in the agent-centered frame;
// original is the scene BEFORE Apply, from which the rotation and anchor
// are rederived.
func (a *AgentCenter) Invert(pred mat.Matrix, original *dataset.Scene) (*mat.Dense, error) {
	_, f, err := sceneFrame(original)
	if err != nil {
		return nil, err
	}

	rows, cols := pred.Dims()
	if cols != 2 {
		return nil, errors.NewDimensionError("AgentCenter.Invert", 2, cols, 1)
	}

	out := mat.NewDense(rows, cols, nil)
	for t := 0; t < rows; t++ {
		dx, dy := f.rotateBack(pred.At(t, 0), pred.At(t, 1))
		out.Set(t, 0, f.anchor[0]+dx)
		out.Set(t, 1, f.anchor[1]+dy)
	}
	return out, nil
}
