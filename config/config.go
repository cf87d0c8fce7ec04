// Package config implements the configuration document that drives the
// trajectory-prediction pipeline: the selected model architecture and its
// hyperparameters, and the data pipeline's source path, batching behavior,
// feature-extraction toggles and ordered transform list.
//
// The document is a YAML file with two top-level sections, model and data.
// It is authored by hand, loaded once at process start, and treated as
// immutable for the duration of a run. Commented-out alternative blocks are
// a normal authoring pattern and never reach the parsed structure.
package config

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// Known architecture identifiers for model.name. The set is fixed but
// extensible: models.New dispatches on these.
const (
	ModelSimpleMLP = "SimpleMLP"
	ModelSimpleRNN = "SimpleRNN"
	ModelSeq2Seq   = "Seq2Seq"
)

// KnownArchitectures returns the architecture identifiers accepted for
// model.name, in a stable order.
func KnownArchitectures() []string {
	return []string{ModelSimpleMLP, ModelSimpleRNN, ModelSeq2Seq}
}

// Config is the root of the configuration document.
type Config struct {
	Model ModelConfig `yaml:"model"`
	Data  DataConfig  `yaml:"data"`
}

// ModelConfig selects the architecture and its hyperparameters.
type ModelConfig struct {
	// Name identifies the architecture class to instantiate.
	// One of SimpleMLP, SimpleRNN, Seq2Seq.
	Name string `yaml:"name"`

	// Device is the execution target identifier, e.g. "cpu" or "cuda".
	// It is recorded and logged; this implementation executes on the CPU.
	Device string `yaml:"device"`

	// HiddenSize is either a scalar integer (recurrent architectures) or an
	// ordered sequence of integers (the MLP's per-layer widths).
	HiddenSize HiddenSize `yaml:"hidden_size"`

	// NumLayers is the depth of the recurrent stack. Optional; ignored by
	// the MLP, which takes its depth from the hidden_size sequence.
	NumLayers int `yaml:"num_layers,omitempty"`

	// Dropout is the regularization strength, in [0, 1).
	Dropout float64 `yaml:"dropout"`
}

// DataConfig declares the data pipeline's source, batching behavior,
// feature engineering and transform list.
type DataConfig struct {
	// TrainPath is the dataset root location. Existence is not validated
	// at parse time; the loader reports missing paths when it runs.
	TrainPath string `yaml:"train_path"`

	// BatchSize is the number of samples per training step.
	BatchSize int `yaml:"batch_size"`

	// Shuffle controls whether sample order is reshuffled each epoch.
	Shuffle bool `yaml:"shuffle"`

	// NumWorkers is the parallelism degree for featurization and loading.
	// 0 means fully synchronous.
	NumWorkers int `yaml:"num_workers"`

	// Experimenting truncates the dataset for quick iteration:
	// 0 uses the full dataset, N > 0 keeps only the first N scenes.
	Experimenting int `yaml:"experimenting"`

	// TrainValSplit is the fraction of scenes used for training, in (0, 1].
	// The remainder becomes the validation split.
	TrainValSplit float64 `yaml:"train_val_split"`

	// CoordDims is the dimensionality of the spatial coordinates modeled.
	CoordDims int `yaml:"coord_dims"`

	// InputTimesteps is the length of the observed window fed to the encoder.
	InputTimesteps int `yaml:"input_timesteps"`

	// OutputTimesteps is the length of the predicted horizon.
	OutputTimesteps int `yaml:"output_timesteps"`

	// Features holds the per-feature extraction settings.
	Features FeaturesConfig `yaml:"features"`

	// Transforms names the augmentation/normalization steps to apply to
	// each scene, in order. Order is significant.
	Transforms []string `yaml:"transforms"`
}

// FeaturesConfig is the heterogeneous features mapping: flat counts for
// agent tracks plus a nested block for lane handling.
type FeaturesConfig struct {
	// PIn is the number of neighboring agents whose positions are included
	// (the target agent is always included on top of this count).
	PIn int `yaml:"p_in"`

	// VIn is the number of agents whose velocities are included.
	VIn int `yaml:"v_in"`

	// PositionalEmbeddings is the number of sin/cos frequency pairs used to
	// embed the inputs. 0 disables positional embeddings.
	PositionalEmbeddings int `yaml:"positional_embeddings"`

	// Lanes configures lane featurization.
	Lanes LaneConfig `yaml:"lanes"`
}

// LaneConfig configures how lane geometry enters the feature vector.
type LaneConfig struct {
	// Count is the number of lane segments included per timestep.
	// Each segment contributes 4 values: x, y, dx, dy.
	Count int `yaml:"count"`

	// AngleFilter drops lanes pointing opposite the agent's nominal heading.
	AngleFilter bool `yaml:"angle_filter"`

	// RearFilter drops lanes further behind the agent than this threshold
	// (in agent-centered coordinates). 0 disables the filter.
	RearFilter float64 `yaml:"rear_filter"`

	// EmbeddingSize routes lane features through the lane encoder when > 0,
	// contributing that many values per timestep. 0 keeps the raw per-segment
	// x, y, dx, dy values instead.
	EmbeddingSize int `yaml:"embedding_size"`
}

// Load reads and parses the configuration document at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: reading %s", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config: parsing %s", path)
	}
	return cfg, nil
}

// Parse decodes a configuration document. Unknown keys are rejected so that
// typos surface at load time instead of silently falling back to defaults.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: decode")
	}
	return &cfg, nil
}

// Marshal re-serializes the document. Parsing the result yields a structure
// identical to cfg (comments are not preserved; they carry no settings).
func (c *Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "config: marshal")
	}
	return out, nil
}

// BaseInputSize returns the width of the raw per-timestep feature vector
// before positional embedding: target plus p_in neighbor positions, v_in
// velocities, and the lane block (encoded width, or count segments at
// 4 values each when no encoder is configured).
func (d *DataConfig) BaseInputSize() int {
	in := (d.Features.PIn + 1) * d.CoordDims
	in += d.Features.VIn * d.CoordDims
	if d.Features.Lanes.Count > 0 {
		if d.Features.Lanes.EmbeddingSize > 0 {
			in += d.Features.Lanes.EmbeddingSize
		} else {
			in += d.Features.Lanes.Count * 4 // x, y, dx, dy
		}
	}
	return in
}

// InputSize returns the per-timestep input width seen by the network: the
// base width doubled per positional-embedding frequency (sin and cos each
// produce one copy per frequency).
func (d *DataConfig) InputSize() int {
	if pe := d.Features.PositionalEmbeddings; pe > 0 {
		return d.BaseInputSize() * 2 * pe
	}
	return d.BaseInputSize()
}
