// Package trajplot renders scenes and predicted trajectories to image files
// for qualitative inspection. Plots show the observed agent track, the
// ground-truth future when present, a model prediction, and the surrounding
// lane geometry.
package trajplot

import (
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/trajgo/dataset"
	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

var (
	observedColor  = color.RGBA{B: 200, A: 255}
	truthColor     = color.RGBA{G: 160, A: 255}
	predictedColor = color.RGBA{R: 220, A: 255}
	laneColor      = color.RGBA{R: 170, G: 170, B: 170, A: 255}
)

// Scene draws one scene: lanes as points, the agent's observed track, its
// ground-truth future, and optionally a predicted trajectory. pred may be
// nil. Coordinates are plotted in whatever frame the scene is currently in.
func Scene(s *dataset.Scene, pred mat.Matrix) (*plot.Plot, error) {
	agent, err := s.AgentIndex()
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "scene " + s.ID
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	if len(s.Lanes) > 0 {
		lanePoints := make(plotter.XYs, len(s.Lanes))
		for i, pt := range s.Lanes {
			lanePoints[i].X, lanePoints[i].Y = pt[0], pt[1]
		}
		scatter, err := plotter.NewScatter(lanePoints)
		if err != nil {
			return nil, errors.Wrap(err, "trajplot: lane scatter")
		}
		scatter.GlyphStyle.Color = laneColor
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(scatter)
		p.Legend.Add("lanes", scatter)
	}

	if err := addTrack(p, trackXYs(s.PIn[agent]), "observed", observedColor); err != nil {
		return nil, err
	}
	if len(s.POut) > agent && len(s.POut[agent]) > 0 {
		if err := addTrack(p, trackXYs(s.POut[agent]), "ground truth", truthColor); err != nil {
			return nil, err
		}
	}

	if pred != nil {
		rows, _ := pred.Dims()
		xys := make(plotter.XYs, rows)
		for t := 0; t < rows; t++ {
			xys[t].X, xys[t].Y = pred.At(t, 0), pred.At(t, 1)
		}
		if err := addTrack(p, xys, "predicted", predictedColor); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// SavePNG renders the plot to a PNG file at the given size in centimeters.
func SavePNG(p *plot.Plot, path string, widthCm, heightCm float64) error {
	if err := p.Save(vg.Length(widthCm)*vg.Centimeter, vg.Length(heightCm)*vg.Centimeter, path); err != nil {
		return errors.Wrapf(err, "trajplot: saving %s", path)
	}
	return nil
}

func addTrack(p *plot.Plot, xys plotter.XYs, label string, c color.Color) error {
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return errors.Wrapf(err, "trajplot: %s track", label)
	}
	line.Color = c
	points.GlyphStyle.Color = c
	points.GlyphStyle.Radius = vg.Points(2)
	p.Add(line, points)
	p.Legend.Add(label, line, points)
	return nil
}

func trackXYs(track [][]float64) plotter.XYs {
	xys := make(plotter.XYs, len(track))
	for i, pt := range track {
		xys[i].X, xys[i].Y = pt[0], pt[1]
	}
	return xys
}
