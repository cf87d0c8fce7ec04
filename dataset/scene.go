// Package dataset implements the data pipeline driven by the data section of
// the configuration document: scene records, dataset loading with the
// experimenting truncation and train/validation split, featurization, and a
// batching loader honoring batch_size, shuffle and num_workers.
package dataset

import (
	"encoding/json"

	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// Scene is a single trajectory-prediction record: a set of tracked agents
// observed over the input window, their future positions over the output
// window, and the lane geometry around them. Coordinates are row-major
// [agent][timestep][dim] slices; lanes are [point][dim].
type Scene struct {
	// ID identifies the scene. The loader fills it from the file stem when
	// the record itself carries none.
	ID string `json:"id,omitempty"`

	// City is an optional map identifier carried through from the source data.
	City string `json:"city,omitempty"`

	// AgentID names the target agent whose future is predicted.
	AgentID string `json:"agent_id"`

	// TrackIDs names every tracked agent, indexing the position and
	// velocity arrays.
	TrackIDs []string `json:"track_ids"`

	// PIn / VIn are observed positions and velocities:
	// [agents][input_timesteps][coord_dims].
	PIn [][][]float64 `json:"p_in"`
	VIn [][][]float64 `json:"v_in"`

	// POut / VOut are future positions and velocities:
	// [agents][output_timesteps][coord_dims].
	POut [][][]float64 `json:"p_out"`
	VOut [][][]float64 `json:"v_out"`

	// Lanes holds lane centerline points, [points][coord_dims].
	Lanes [][]float64 `json:"lane"`

	// LaneNorms holds the direction vector of each centerline point,
	// aligned with Lanes.
	LaneNorms [][]float64 `json:"lane_norm"`
}

// ParseScene decodes a single scene record from JSON.
func ParseScene(data []byte) (*Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "dataset: decode scene")
	}
	return &s, nil
}

// AgentIndex returns the index of the target agent within TrackIDs.
func (s *Scene) AgentIndex() (int, error) {
	for i, id := range s.TrackIDs {
		if id == s.AgentID {
			return i, nil
		}
	}
	return 0, errors.Newf("dataset: scene %q: agent %q not among %d tracked agents", s.ID, s.AgentID, len(s.TrackIDs))
}

// NumAgents returns the number of tracked agents.
func (s *Scene) NumAgents() int {
	return len(s.TrackIDs)
}

// InputTimesteps returns the observed window length of the record.
func (s *Scene) InputTimesteps() int {
	if len(s.PIn) == 0 {
		return 0
	}
	return len(s.PIn[0])
}

// OutputTimesteps returns the future window length of the record.
func (s *Scene) OutputTimesteps() int {
	if len(s.POut) == 0 {
		return 0
	}
	return len(s.POut[0])
}

// Check verifies the internal consistency of the record: aligned array
// lengths and uniform coordinate dimensionality.
func (s *Scene) Check(coordDims int) error {
	n := len(s.TrackIDs)
	if n == 0 {
		return errors.Wrapf(errors.ErrEmptyData, "dataset: scene %q has no tracked agents", s.ID)
	}

	if _, err := s.AgentIndex(); err != nil {
		return err
	}

	if len(s.PIn) != n {
		return errors.NewDimensionError("Scene.Check p_in", n, len(s.PIn), 0)
	}
	if len(s.VIn) != n {
		return errors.NewDimensionError("Scene.Check v_in", n, len(s.VIn), 0)
	}
	if len(s.POut) != n {
		return errors.NewDimensionError("Scene.Check p_out", n, len(s.POut), 0)
	}
	if len(s.VOut) != n {
		return errors.NewDimensionError("Scene.Check v_out", n, len(s.VOut), 0)
	}

	for _, track := range [][][][]float64{s.PIn, s.VIn, s.POut, s.VOut} {
		for _, agent := range track {
			for _, step := range agent {
				if len(step) != coordDims {
					return errors.NewDimensionError("Scene.Check coords", coordDims, len(step), 1)
				}
			}
		}
	}

	if len(s.Lanes) != len(s.LaneNorms) {
		return errors.NewDimensionError("Scene.Check lanes", len(s.Lanes), len(s.LaneNorms), 0)
	}

	return nil
}

// Clone deep-copies the scene. Transforms mutate scenes in place, so tests
// and invertible pipelines keep a pristine copy around.
func (s *Scene) Clone() *Scene {
	out := &Scene{
		ID:      s.ID,
		City:    s.City,
		AgentID: s.AgentID,
	}
	out.TrackIDs = append([]string(nil), s.TrackIDs...)
	out.PIn = cloneTrack(s.PIn)
	out.VIn = cloneTrack(s.VIn)
	out.POut = cloneTrack(s.POut)
	out.VOut = cloneTrack(s.VOut)
	out.Lanes = clonePoints(s.Lanes)
	out.LaneNorms = clonePoints(s.LaneNorms)
	return out
}

func cloneTrack(track [][][]float64) [][][]float64 {
	if track == nil {
		return nil
	}
	out := make([][][]float64, len(track))
	for i, agent := range track {
		out[i] = clonePoints(agent)
	}
	return out
}

func clonePoints(points [][]float64) [][]float64 {
	if points == nil {
		return nil
	}
	out := make([][]float64, len(points))
	for i, p := range points {
		out[i] = append([]float64(nil), p...)
	}
	return out
}
