package model

import (
	"fmt"
	"io"
	"os"
)

// SaveWeights はネットワークの重みをJSONファイルに保存する
//
// パラメータ:
//   - container: 重みをエクスポートできるモデル
//   - filename: 保存先のファイルパス
//
// 使用例:
//
//	net, _ := models.New(cfg.Model, cfg.Data)
//	err := model.SaveWeights(net.(model.WeightContainer), "seq2seq.json")
func SaveWeights(container WeightContainer, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return SaveWeightsToWriter(container, file)
}

// LoadWeights はJSONファイルからネットワークの重みを読み込む
//
// パラメータ:
//   - container: 重みのインポート先となるモデル
//   - filename: 読み込み元のファイルパス
func LoadWeights(container WeightContainer, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return LoadWeightsFromReader(container, file)
}

// SaveWeightsToWriter はネットワークの重みをio.Writerに保存する
func SaveWeightsToWriter(container WeightContainer, w io.Writer) error {
	weights, err := container.ExportWeights()
	if err != nil {
		return fmt.Errorf("failed to export weights: %w", err)
	}

	data, err := weights.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write weights: %w", err)
	}
	return nil
}

// LoadWeightsFromReader はio.Readerからネットワークの重みを読み込む
func LoadWeightsFromReader(container WeightContainer, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read weights: %w", err)
	}

	weights := &NetworkWeights{}
	if err := weights.FromJSON(data); err != nil {
		return fmt.Errorf("failed to decode weights: %w", err)
	}

	if err := weights.Validate(); err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}

	return container.ImportWeights(weights)
}
