package model

import (
	"encoding/json"
	"fmt"
)

// WeightsVersion は現在の重みフォーマットのバージョン
const WeightsVersion = "1.0"

// LayerWeights は1レイヤー分のパラメータを表す構造体（シリアライゼーション用）
type LayerWeights struct {
	// Name はレイヤー名（例: "gru.0.wz", "fc.weight"）
	Name string `json:"name"`

	// Rows / Cols は行列の形状
	Rows int `json:"rows"`
	Cols int `json:"cols"`

	// Data は行優先で平坦化されたパラメータ
	Data []float64 `json:"data"`
}

// NetworkWeights はネットワーク全体の重みを表す構造体（シリアライゼーション用）
type NetworkWeights struct {
	// ModelType はアーキテクチャの種類（SimpleMLP, SimpleRNN, Seq2Seq）
	ModelType string `json:"model_type"`

	// Version はフォーマットのバージョン（互換性チェック用）
	Version string `json:"version"`

	// Layers は各レイヤーのパラメータ
	Layers []LayerWeights `json:"layers"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters"`

	// Metadata は追加のメタデータ（生成時の設定等）
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ToJSON はNetworkWeightsをJSON形式にシリアライズ
func (nw *NetworkWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(nw, "", "  ")
}

// FromJSON はJSON形式からNetworkWeightsをデシリアライズ
func (nw *NetworkWeights) FromJSON(data []byte) error {
	return json.Unmarshal(data, nw)
}

// Validate はNetworkWeightsの妥当性を検証
func (nw *NetworkWeights) Validate() error {
	if nw.ModelType == "" {
		return fmt.Errorf("model_type is required")
	}

	if nw.Version == "" {
		return fmt.Errorf("version is required")
	}

	if len(nw.Layers) == 0 {
		return fmt.Errorf("network must have at least one layer")
	}

	for i, layer := range nw.Layers {
		if layer.Name == "" {
			return fmt.Errorf("layer %d: name is required", i)
		}
		if layer.Rows <= 0 || layer.Cols <= 0 {
			return fmt.Errorf("layer %q: invalid shape %dx%d", layer.Name, layer.Rows, layer.Cols)
		}
		if len(layer.Data) != layer.Rows*layer.Cols {
			return fmt.Errorf("layer %q: expected %d values, got %d", layer.Name, layer.Rows*layer.Cols, len(layer.Data))
		}
	}

	return nil
}

// Layer は名前でレイヤーを検索する。見つからない場合はnilを返す。
func (nw *NetworkWeights) Layer(name string) *LayerWeights {
	for i := range nw.Layers {
		if nw.Layers[i].Name == name {
			return &nw.Layers[i]
		}
	}
	return nil
}

// Clone はNetworkWeightsのディープコピーを作成
func (nw *NetworkWeights) Clone() *NetworkWeights {
	clone := &NetworkWeights{
		ModelType:       nw.ModelType,
		Version:         nw.Version,
		Layers:          make([]LayerWeights, len(nw.Layers)),
		Hyperparameters: make(map[string]interface{}),
		Metadata:        make(map[string]interface{}),
	}

	for i, layer := range nw.Layers {
		data := make([]float64, len(layer.Data))
		copy(data, layer.Data)
		clone.Layers[i] = LayerWeights{
			Name: layer.Name,
			Rows: layer.Rows,
			Cols: layer.Cols,
			Data: data,
		}
	}

	for k, v := range nw.Hyperparameters {
		clone.Hyperparameters[k] = v
	}

	for k, v := range nw.Metadata {
		clone.Metadata[k] = v
	}

	return clone
}
