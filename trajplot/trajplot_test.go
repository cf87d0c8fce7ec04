package trajplot

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trajgo/dataset"
)

func testScene() *dataset.Scene {
	return &dataset.Scene{
		ID:       "plot",
		AgentID:  "agent",
		TrackIDs: []string{"agent"},
		PIn: [][][]float64{{
			{0, 0}, {0, 1}, {0, 2},
		}},
		VIn: [][][]float64{{
			{0, 1}, {0, 1}, {0, 1},
		}},
		POut: [][][]float64{{
			{0, 3}, {0, 4},
		}},
		VOut: [][][]float64{{
			{0, 1}, {0, 1},
		}},
		Lanes:     [][]float64{{1, 0}, {1, 2}, {1, 4}},
		LaneNorms: [][]float64{{0, 1}, {0, 1}, {0, 1}},
	}
}

func TestSceneWithPrediction(t *testing.T) {
	pred := mat.NewDense(2, 2, []float64{0.1, 3, 0.2, 4})

	p, err := Scene(testScene(), pred)
	if err != nil {
		t.Fatalf("Scene failed: %v", err)
	}
	if p.Title.Text != "scene plot" {
		t.Errorf("title = %q", p.Title.Text)
	}
}

func TestSceneWithoutPrediction(t *testing.T) {
	if _, err := Scene(testScene(), nil); err != nil {
		t.Fatalf("Scene failed: %v", err)
	}
}

func TestSavePNG(t *testing.T) {
	p, err := Scene(testScene(), nil)
	if err != nil {
		t.Fatalf("Scene failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "scene.png")
	if err := SavePNG(p, path, 10, 10); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Error("PNG file is empty")
	}
}
