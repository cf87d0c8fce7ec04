package preprocessing

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trajgo/dataset"
	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// StandardizeCoordsName is the identifier the configuration uses for this transform.
const StandardizeCoordsName = "StandardizeCoords"

// StandardizeCoords は座標値を次元ごとの標準偏差で割り、単位分散に揃える変換です。
// 平均は引きません（AgentCenterの後ではデータは既にエージェント中心）。
// 標準偏差はシーンごとに観測位置（p_in）から計算され、
// 位置・速度・レーン座標すべてに同じスケールが適用されます。
//
// スケールはシーンIDごとに保持されるため、Invertで予測値を元の単位に戻せます。
type StandardizeCoords struct {
	mu     sync.Mutex
	scales map[string][2]float64
}

// NewStandardizeCoords は新しいStandardizeCoordsを作成します。
func NewStandardizeCoords() *StandardizeCoords {
	return &StandardizeCoords{scales: make(map[string][2]float64)}
}

// Name はStandardizeCoordsNameを返します。
func (sc *StandardizeCoords) Name() string { return StandardizeCoordsName }

// Apply はシーンを標準化します。観測ウィンドウが空の場合はエラーを返します。
func (sc *StandardizeCoords) Apply(s *dataset.Scene) error {
	var sum, sumSq [2]float64
	n := 0
	for _, agent := range s.PIn {
		for _, step := range agent {
			for d := 0; d < 2; d++ {
				sum[d] += step[d]
				sumSq[d] += step[d] * step[d]
			}
			n++
		}
	}
	if n == 0 {
		return errors.Wrapf(errors.ErrEmptyData, "preprocessing: scene %q has no observed coordinates", s.ID)
	}

	var scale [2]float64
	for d := 0; d < 2; d++ {
		mean := sum[d] / float64(n)
		variance := sumSq[d]/float64(n) - mean*mean
		scale[d] = math.Sqrt(math.Max(variance, 0))
		// 定数次元はスケール1で素通しする（ゼロ除算を避ける）
		if scale[d] < 1e-8 {
			scale[d] = 1.0
		}
	}

	for _, track := range [][][][]float64{s.PIn, s.VIn, s.POut, s.VOut} {
		for _, agent := range track {
			for _, step := range agent {
				step[0] /= scale[0]
				step[1] /= scale[1]
			}
		}
	}
	for _, points := range [][][]float64{s.Lanes, s.LaneNorms} {
		for _, p := range points {
			p[0] /= scale[0]
			p[1] /= scale[1]
		}
	}

	sc.mu.Lock()
	sc.scales[s.ID] = scale
	sc.mu.Unlock()
	return nil
}

// Invert は標準化された予測値を元の単位に戻します。
// 対象シーンにApplyが呼ばれていない場合はエラーを返します。
func (sc *StandardizeCoords) Invert(pred mat.Matrix, sceneID string) (*mat.Dense, error) {
	sc.mu.Lock()
	scale, ok := sc.scales[sceneID]
	sc.mu.Unlock()
	if !ok {
		return nil, errors.NewValueError("StandardizeCoords.Invert", "no recorded scale for scene "+sceneID)
	}

	rows, cols := pred.Dims()
	if cols != 2 {
		return nil, errors.NewDimensionError("StandardizeCoords.Invert", 2, cols, 1)
	}

	out := mat.NewDense(rows, cols, nil)
	for t := 0; t < rows; t++ {
		out.Set(t, 0, pred.At(t, 0)*scale[0])
		out.Set(t, 1, pred.At(t, 1)*scale[1])
	}
	return out, nil
}

// Scale は記録済みのシーンスケールを返します（テスト・診断用）。
func (sc *StandardizeCoords) Scale(sceneID string) ([2]float64, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	scale, ok := sc.scales[sceneID]
	return scale, ok
}
