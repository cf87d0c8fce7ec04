package model

import "gonum.org/v1/gonum/mat"

// Predictor は軌道予測可能なモデルのインターフェース。
// 入力は1サンプル分の特徴行列 (input_timesteps × input_size)、
// 出力は予測座標行列 (output_timesteps × coord_dims)。
type Predictor interface {
	// Predict は入力シーケンスに対する予測軌道を返す
	Predict(x mat.Matrix) (mat.Matrix, error)
}

// BatchPredictor はバッチ単位の予測を行うモデルのインターフェース
type BatchPredictor interface {
	Predictor

	// PredictBatch はバッチ内の各サンプルに対する予測軌道を返す
	PredictBatch(xs []mat.Matrix) ([]mat.Matrix, error)
}

// WeightContainer は重みのエクスポート・インポートが可能なモデルのインターフェース
type WeightContainer interface {
	// ExportWeights はシリアライズ可能な重み表現を返す
	ExportWeights() (*NetworkWeights, error)

	// ImportWeights は重み表現からパラメータを復元する
	ImportWeights(w *NetworkWeights) error
}
