package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/trajgo/config"
	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// testScene builds a small consistent record: the target agent moves up the
// y axis, one neighbor sits a fixed offset to the right, and two lane
// segments run alongside.
func testScene(id string, inSteps, outSteps int) *Scene {
	s := &Scene{
		ID:       id,
		AgentID:  "agent",
		TrackIDs: []string{"neighbor", "agent"},
	}

	track := func(ox float64, steps int, from float64) ([][]float64, [][]float64) {
		pos := make([][]float64, steps)
		vel := make([][]float64, steps)
		for t := 0; t < steps; t++ {
			pos[t] = []float64{ox, from + float64(t)}
			vel[t] = []float64{0, 1}
		}
		return pos, vel
	}

	np, nv := track(3, inSteps, 0)
	ap, av := track(0, inSteps, 0)
	s.PIn = [][][]float64{np, ap}
	s.VIn = [][][]float64{nv, av}

	np, nv = track(3, outSteps, float64(inSteps))
	ap, av = track(0, outSteps, float64(inSteps))
	s.POut = [][][]float64{np, ap}
	s.VOut = [][][]float64{nv, av}

	s.Lanes = [][]float64{{1, 0}, {1, 5}}
	s.LaneNorms = [][]float64{{0, 1}, {0, 1}}
	return s
}

func testDataConfig() config.DataConfig {
	return config.DataConfig{
		BatchSize:       2,
		TrainValSplit:   0.8,
		CoordDims:       2,
		InputTimesteps:  4,
		OutputTimesteps: 3,
		Features: config.FeaturesConfig{
			PIn: 1,
			VIn: 1,
			Lanes: config.LaneConfig{
				Count:       2,
				AngleFilter: true,
			},
		},
	}
}

func writeSceneDir(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < n; i++ {
		s := testScene("", 4, 3)
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal scene: %v", err)
		}
		name := filepath.Join(dir, fmt.Sprintf("scene_%03d.json", i))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			t.Fatalf("write scene: %v", err)
		}
	}
	return dir
}

func TestSceneCheck(t *testing.T) {
	s := testScene("s1", 4, 3)
	if err := s.Check(2); err != nil {
		t.Fatalf("Check failed on consistent scene: %v", err)
	}

	bad := s.Clone()
	bad.PIn[0][1] = []float64{1, 2, 3}
	if err := bad.Check(2); err == nil {
		t.Error("expected dimensionality error")
	}

	noAgent := s.Clone()
	noAgent.AgentID = "missing"
	if err := noAgent.Check(2); err == nil {
		t.Error("expected missing-agent error")
	}
}

func TestSceneCloneIsDeep(t *testing.T) {
	s := testScene("s1", 4, 3)
	c := s.Clone()
	c.PIn[1][0][0] = 99
	if s.PIn[1][0][0] == 99 {
		t.Error("Clone shares position storage with the original")
	}
}

func TestLoad(t *testing.T) {
	dir := writeSceneDir(t, 5)
	cfg := testDataConfig()
	cfg.TrainPath = dir

	ds, err := Load(cfg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ds.Len() != 5 {
		t.Fatalf("loaded %d scenes, want 5", ds.Len())
	}

	// Scene IDs fall back to the file stem, and ordering follows file names.
	if ds.Scenes[0].ID != "scene_000" || ds.Scenes[4].ID != "scene_004" {
		t.Errorf("unexpected scene order: %q ... %q", ds.Scenes[0].ID, ds.Scenes[4].ID)
	}
}

func TestLoadExperimentingTruncates(t *testing.T) {
	dir := writeSceneDir(t, 5)
	cfg := testDataConfig()
	cfg.TrainPath = dir
	cfg.Experimenting = 2

	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer errors.SetWarningHandler(nil)

	ds, err := Load(cfg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("loaded %d scenes, want 2", ds.Len())
	}
	if len(warned) != 1 {
		t.Fatalf("expected 1 truncation warning, got %d", len(warned))
	}
	var tw *errors.TruncationWarning
	if !errors.As(warned[0], &tw) {
		t.Fatalf("warning has type %T, want *TruncationWarning", warned[0])
	}
}

func TestLoadEmptyDir(t *testing.T) {
	cfg := testDataConfig()
	cfg.TrainPath = t.TempDir()

	_, err := Load(cfg)
	if !errors.Is(err, errors.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestSplit(t *testing.T) {
	dir := writeSceneDir(t, 10)
	cfg := testDataConfig()
	cfg.TrainPath = dir
	cfg.TrainValSplit = 0.8

	ds, err := Load(cfg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	train, val := ds.Split()
	if train.Len() != 8 || val.Len() != 2 {
		t.Errorf("split = %d/%d, want 8/2", train.Len(), val.Len())
	}

	cfg.TrainValSplit = 1.0
	full := &Dataset{Scenes: ds.Scenes, cfg: cfg}
	train, val = full.Split()
	if train.Len() != 10 || val.Len() != 0 {
		t.Errorf("split = %d/%d, want 10/0", train.Len(), val.Len())
	}
}

func TestFeaturizerShapes(t *testing.T) {
	cfg := testDataConfig()
	fz, err := NewFeaturizer(cfg, nil)
	if err != nil {
		t.Fatalf("NewFeaturizer failed: %v", err)
	}

	s := testScene("s1", 4, 3)
	x, err := fz.Features(s)
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}
	rows, cols := x.Dims()
	if rows != 4 || cols != cfg.BaseInputSize() {
		t.Errorf("features shape = %dx%d, want 4x%d", rows, cols, cfg.BaseInputSize())
	}

	y, err := fz.Targets(s)
	if err != nil {
		t.Fatalf("Targets failed: %v", err)
	}
	rows, cols = y.Dims()
	if rows != 3 || cols != 2 {
		t.Errorf("targets shape = %dx%d, want 3x2", rows, cols)
	}
}

func TestFeaturizerRowLayout(t *testing.T) {
	cfg := testDataConfig()
	fz, err := NewFeaturizer(cfg, nil)
	if err != nil {
		t.Fatalf("NewFeaturizer failed: %v", err)
	}

	s := testScene("s1", 4, 3)
	x, err := fz.Features(s)
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}

	row := x.RawRowView(1)
	// Target position at t=1.
	if row[0] != 0 || row[1] != 1 {
		t.Errorf("target position = (%v, %v), want (0, 1)", row[0], row[1])
	}
	// Nearest neighbor position.
	if row[2] != 3 || row[3] != 1 {
		t.Errorf("neighbor position = (%v, %v), want (3, 1)", row[2], row[3])
	}
	// Target velocity.
	if row[4] != 0 || row[5] != 1 {
		t.Errorf("target velocity = (%v, %v), want (0, 1)", row[4], row[5])
	}
	// Both lane segments head along +y and survive the angle filter; the
	// nearest sits at (1, 0).
	if row[6] != 1 || row[7] != 0 || row[8] != 0 || row[9] != 1 {
		t.Errorf("lane block = %v, want [1 0 0 1 ...]", row[6:10])
	}
}

func TestFeaturizerSingleCoordDim(t *testing.T) {
	cfg := testDataConfig()
	cfg.CoordDims = 1
	fz, err := NewFeaturizer(cfg, nil)
	if err != nil {
		t.Fatalf("NewFeaturizer failed: %v", err)
	}

	// Drop the y coordinate from every track; lanes stay planar.
	s := testScene("s1", 4, 3)
	for _, track := range [][][][]float64{s.PIn, s.VIn, s.POut, s.VOut} {
		for _, agent := range track {
			for tt := range agent {
				agent[tt] = agent[tt][:1]
			}
		}
	}
	if err := s.Check(1); err != nil {
		t.Fatalf("Check failed on 1-D scene: %v", err)
	}

	x, err := fz.Features(s)
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}
	rows, cols := x.Dims()
	if rows != 4 || cols != cfg.BaseInputSize() {
		t.Fatalf("features shape = %dx%d, want 4x%d", rows, cols, cfg.BaseInputSize())
	}

	// Target x, neighbor x, target velocity, then the lane block anchored
	// at (x, 0).
	row := x.RawRowView(1)
	if row[0] != 0 || row[1] != 3 || row[2] != 0 {
		t.Errorf("row head = %v, want [0 3 0]", row[:3])
	}
	if row[3] != 1 || row[4] != 0 || row[5] != 0 || row[6] != 1 {
		t.Errorf("lane block = %v, want [1 0 0 1 ...]", row[3:7])
	}

	y, err := fz.Targets(s)
	if err != nil {
		t.Fatalf("Targets failed: %v", err)
	}
	if _, tc := y.Dims(); tc != 1 {
		t.Errorf("target cols = %d, want 1", tc)
	}
}

func TestFeaturizerEmptyLaneWarning(t *testing.T) {
	cfg := testDataConfig()
	fz, err := NewFeaturizer(cfg, nil)
	if err != nil {
		t.Fatalf("NewFeaturizer failed: %v", err)
	}

	s := testScene("s1", 4, 3)
	// Every lane heads down: the angle filter empties the set.
	s.LaneNorms = [][]float64{{0, -1}, {0, -1}}

	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer errors.SetWarningHandler(nil)

	x, err := fz.Features(s)
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}
	if len(warned) != 1 {
		t.Fatalf("expected 1 empty-lane warning, got %d", len(warned))
	}

	row := x.RawRowView(0)
	for _, v := range row[6:] {
		if v != 0 {
			t.Fatalf("lane block not zeroed after empty filter: %v", row[6:])
		}
	}
}

func TestLoaderEpoch(t *testing.T) {
	dir := writeSceneDir(t, 5)
	cfg := testDataConfig()
	cfg.TrainPath = dir
	cfg.BatchSize = 2
	cfg.NumWorkers = 2

	ds, err := Load(cfg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	fz, err := NewFeaturizer(cfg, nil)
	if err != nil {
		t.Fatalf("NewFeaturizer failed: %v", err)
	}

	loader := NewLoader(ds, fz, 1)
	if loader.NumBatches() != 3 {
		t.Fatalf("NumBatches = %d, want 3", loader.NumBatches())
	}

	var sizes []int
	total := 0
	for res := range loader.Epoch() {
		if res.Err != nil {
			t.Fatalf("epoch failed: %v", res.Err)
		}
		sizes = append(sizes, res.Batch.Len())
		total += res.Batch.Len()
	}
	if total != 5 {
		t.Errorf("epoch yielded %d scenes, want 5", total)
	}
	if len(sizes) != 3 || sizes[2] != 1 {
		t.Errorf("batch sizes = %v, want [2 2 1]", sizes)
	}
}

func TestLoaderShuffleDeterministic(t *testing.T) {
	dir := writeSceneDir(t, 6)
	cfg := testDataConfig()
	cfg.TrainPath = dir
	cfg.Shuffle = true
	cfg.BatchSize = 3

	ds, err := Load(cfg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	fz, err := NewFeaturizer(cfg, nil)
	if err != nil {
		t.Fatalf("NewFeaturizer failed: %v", err)
	}

	epochIDs := func(seed int64) []string {
		var ids []string
		for res := range NewLoader(ds, fz, seed).Epoch() {
			if res.Err != nil {
				t.Fatalf("epoch failed: %v", res.Err)
			}
			for _, s := range res.Batch.Scenes {
				ids = append(ids, s.ID)
			}
		}
		return ids
	}

	a := epochIDs(7)
	b := epochIDs(7)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed gave different orders: %v vs %v", a, b)
		}
	}
}

func TestApplyTransforms(t *testing.T) {
	dir := writeSceneDir(t, 4)
	cfg := testDataConfig()
	cfg.TrainPath = dir
	cfg.NumWorkers = 2

	ds, err := Load(cfg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	shift := &shiftTransform{dx: 10}
	if err := ds.ApplyTransforms([]SceneTransform{shift}); err != nil {
		t.Fatalf("ApplyTransforms failed: %v", err)
	}

	for _, s := range ds.Scenes {
		if got := s.PIn[1][0][0]; math.Abs(got-10) > 1e-12 {
			t.Fatalf("transform not applied: agent x = %v, want 10", got)
		}
	}
}

// shiftTransform translates every observed position, used to verify the
// transform plumbing without pulling in the preprocessing package.
type shiftTransform struct {
	dx float64
}

func (s *shiftTransform) Name() string { return "Shift" }

func (s *shiftTransform) Apply(sc *Scene) error {
	for _, agent := range sc.PIn {
		for _, step := range agent {
			step[0] += s.dx
		}
	}
	return nil
}
