// Package lanes provides lane-segment filtering and encoding for
// trajectory-prediction feature construction.
//
// Map data arrives as centerline segments, each a point plus a direction
// vector. Scenes routinely carry hundreds of segments while only a handful
// are relevant to the target agent, so featurization first filters segments
// by heading and position (in the agent-centered frame produced by the
// AgentCenter transform), then either takes the nearest raw segments or
// pools them through a pointwise encoder into a fixed-width embedding.
package lanes

import (
	"math"
	"sort"
)

// Segment is one lane centerline sample: a point (X, Y) and the tangent
// direction (DX, DY) at that point.
type Segment struct {
	X, Y   float64
	DX, DY float64
}

// FromRows converts raw lane rows ([x y] from lane, [dx dy] from lane_norm)
// into segments. Rows beyond the shorter slice are ignored.
func FromRows(lane, laneNorm [][]float64) []Segment {
	n := len(lane)
	if len(laneNorm) < n {
		n = len(laneNorm)
	}

	segs := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		if len(lane[i]) < 2 || len(laneNorm[i]) < 2 {
			continue
		}
		segs = append(segs, Segment{
			X:  lane[i][0],
			Y:  lane[i][1],
			DX: laneNorm[i][0],
			DY: laneNorm[i][1],
		})
	}
	return segs
}

// AngleFilter keeps segments whose tangent heading points into the upper
// half-plane. In the agent-centered frame the agent travels toward +y, so
// this discards lanes running against the direction of travel.
func AngleFilter(segs []Segment) []Segment {
	kept := segs[:0:0]
	for _, s := range segs {
		if math.Atan2(s.DY, s.DX) > 0 {
			kept = append(kept, s)
		}
	}
	return kept
}

// RearFilter keeps segments no further than threshold behind the agent,
// i.e. with Y >= -threshold in the agent-centered frame.
func RearFilter(segs []Segment, threshold float64) []Segment {
	kept := segs[:0:0]
	for _, s := range segs {
		if s.Y >= -threshold {
			kept = append(kept, s)
		}
	}
	return kept
}

// Nearest returns the n segments closest to (x, y) by Euclidean distance,
// nearest first. When fewer than n segments exist, all of them are
// returned.
func Nearest(segs []Segment, x, y float64, n int) []Segment {
	sorted := append([]Segment(nil), segs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		di := (sorted[i].X-x)*(sorted[i].X-x) + (sorted[i].Y-y)*(sorted[i].Y-y)
		dj := (sorted[j].X-x)*(sorted[j].X-x) + (sorted[j].Y-y)*(sorted[j].Y-y)
		return di < dj
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Flatten lays out segments as [x, y, dx, dy]... padded with zeros up to
// count segments. This is the raw lane block used when no encoder is
// configured.
func Flatten(segs []Segment, count int) []float64 {
	out := make([]float64, count*4)
	for i := 0; i < count && i < len(segs); i++ {
		out[i*4+0] = segs[i].X
		out[i*4+1] = segs[i].Y
		out[i*4+2] = segs[i].DX
		out[i*4+3] = segs[i].DY
	}
	return out
}
