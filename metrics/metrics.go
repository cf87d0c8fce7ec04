// Package metrics は予測軌道の評価指標を提供します。
// 全ての指標は (output_timesteps × coord_dims) の行列ペアを受け取ります。
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// MSE は平均二乗誤差（Mean Squared Error）を計算する。
// 全タイムステップ・全次元の二乗誤差を平均する。
func MSE(yTrue, yPred mat.Matrix) (float64, error) {
	r, c, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			diff := yTrue.At(i, j) - yPred.At(i, j)
			sum += diff * diff
		}
	}
	return sum / float64(r*c), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred mat.Matrix) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// ADE は平均変位誤差（Average Displacement Error）を計算する。
// タイムステップごとのユークリッド距離を全ステップで平均する。
func ADE(yTrue, yPred mat.Matrix) (float64, error) {
	r, _, err := checkPair("ADE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for t := 0; t < r; t++ {
		sum += displacement(yTrue, yPred, t)
	}
	return sum / float64(r), nil
}

// FDE は最終変位誤差（Final Displacement Error）を計算する。
// 最終タイムステップのユークリッド距離のみを見る。
func FDE(yTrue, yPred mat.Matrix) (float64, error) {
	r, _, err := checkPair("FDE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return displacement(yTrue, yPred, r-1), nil
}

// Evaluate はひとつの予測に対する全指標をまとめて計算する
func Evaluate(yTrue, yPred mat.Matrix) (Report, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}
	ade, err := ADE(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}
	fde, err := FDE(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}
	return Report{MSE: mse, ADE: ade, FDE: fde, Count: 1}, nil
}

// Report は評価指標の集計結果
type Report struct {
	MSE   float64
	ADE   float64
	FDE   float64
	Count int
}

// Merge は2つのReportをサンプル数で重み付けして結合する
func (r Report) Merge(other Report) Report {
	total := r.Count + other.Count
	if total == 0 {
		return Report{}
	}
	w1, w2 := float64(r.Count), float64(other.Count)
	return Report{
		MSE:   (r.MSE*w1 + other.MSE*w2) / float64(total),
		ADE:   (r.ADE*w1 + other.ADE*w2) / float64(total),
		FDE:   (r.FDE*w1 + other.FDE*w2) / float64(total),
		Count: total,
	}
}

// EvaluateBatch はバッチ全体の指標をサンプル数で重み付け平均する
func EvaluateBatch(yTrue, yPred []mat.Matrix) (Report, error) {
	if len(yTrue) == 0 {
		return Report{}, errors.NewValueError("EvaluateBatch", "empty batch")
	}
	if len(yTrue) != len(yPred) {
		return Report{}, errors.NewDimensionError("EvaluateBatch", len(yTrue), len(yPred), 0)
	}

	var report Report
	for i := range yTrue {
		r, err := Evaluate(yTrue[i], yPred[i])
		if err != nil {
			return Report{}, errors.Wrapf(err, "trajgo: batch sample %d", i)
		}
		report = report.Merge(r)
	}
	return report, nil
}

func displacement(yTrue, yPred mat.Matrix, t int) float64 {
	_, c := yTrue.Dims()
	var sum float64
	for j := 0; j < c; j++ {
		diff := yTrue.At(t, j) - yPred.At(t, j)
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

func checkPair(op string, yTrue, yPred mat.Matrix) (int, int, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return 0, 0, errors.NewValueError(op, "empty matrix")
	}
	if rTrue != rPred || cTrue != cPred {
		return 0, 0, errors.NewDimensionError(op, rTrue, rPred, 0)
	}
	return rTrue, cTrue, nil
}
