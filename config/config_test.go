package config

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// yamlUnmarshalStrict decodes a fragment with the same strictness Parse uses.
func yamlUnmarshalStrict(data []byte, v interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}

// sampleDoc is a realistic document, including comments and a commented-out
// alternative model block kept around for quick swapping.
const sampleDoc = `# trajectory prediction run configuration
model:
  name: Seq2Seq
  device: cpu
  hidden_size: 64
  num_layers: 2
  dropout: 0.1

# model:
#   name: SimpleMLP
#   device: cpu
#   hidden_size: [128, 64]
#   dropout: 0.0

data:
  train_path: data/train
  batch_size: 32
  shuffle: true
  num_workers: 4
  experimenting: 0
  train_val_split: 0.8
  coord_dims: 2
  input_timesteps: 19
  output_timesteps: 30
  features:
    p_in: 4
    v_in: 4
    positional_embeddings: 2
    lanes:
      count: 10
      angle_filter: true
      rear_filter: 5.0
      embedding_size: 128
  transforms:
    - AgentCenter
    - StandardizeCoords
`

func TestParse_TopLevelSections(t *testing.T) {
	cfg, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Model.Name != ModelSeq2Seq {
		t.Errorf("Model.Name = %q, want %q", cfg.Model.Name, ModelSeq2Seq)
	}
	if cfg.Model.Device != "cpu" {
		t.Errorf("Model.Device = %q, want cpu", cfg.Model.Device)
	}
	if !cfg.Model.HiddenSize.IsScalar() || cfg.Model.HiddenSize.Scalar() != 64 {
		t.Errorf("Model.HiddenSize = %v (scalar=%v), want scalar 64",
			cfg.Model.HiddenSize.Values(), cfg.Model.HiddenSize.IsScalar())
	}
	if cfg.Model.NumLayers != 2 {
		t.Errorf("Model.NumLayers = %d, want 2", cfg.Model.NumLayers)
	}
	if cfg.Model.Dropout != 0.1 {
		t.Errorf("Model.Dropout = %v, want 0.1", cfg.Model.Dropout)
	}

	if cfg.Data.TrainPath != "data/train" {
		t.Errorf("Data.TrainPath = %q, want data/train", cfg.Data.TrainPath)
	}
	if cfg.Data.BatchSize != 32 {
		t.Errorf("Data.BatchSize = %d, want 32", cfg.Data.BatchSize)
	}
	if !cfg.Data.Shuffle {
		t.Error("Data.Shuffle = false, want true")
	}
	if cfg.Data.NumWorkers != 4 {
		t.Errorf("Data.NumWorkers = %d, want 4", cfg.Data.NumWorkers)
	}
	if cfg.Data.TrainValSplit != 0.8 {
		t.Errorf("Data.TrainValSplit = %v, want 0.8", cfg.Data.TrainValSplit)
	}
	if cfg.Data.Features.Lanes.Count != 10 {
		t.Errorf("Features.Lanes.Count = %d, want 10", cfg.Data.Features.Lanes.Count)
	}
	if cfg.Data.Features.Lanes.EmbeddingSize != 128 {
		t.Errorf("Features.Lanes.EmbeddingSize = %d, want 128", cfg.Data.Features.Lanes.EmbeddingSize)
	}
}

func TestParse_TransformOrderPreserved(t *testing.T) {
	cfg, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []string{"AgentCenter", "StandardizeCoords"}
	if !reflect.DeepEqual(cfg.Data.Transforms, want) {
		t.Errorf("Transforms = %v, want %v (order significant)", cfg.Data.Transforms, want)
	}
}

func TestParse_CommentedOutBlocksIgnored(t *testing.T) {
	cfg, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// The commented-out SimpleMLP block must not leak into the active model.
	if cfg.Model.Name == ModelSimpleMLP {
		t.Error("commented-out model block was parsed as the active model")
	}
	if !cfg.Model.HiddenSize.IsScalar() {
		t.Error("commented-out sequence hidden_size leaked into the active model")
	}
}

func TestParse_UnknownKeyRejected(t *testing.T) {
	doc := strings.Replace(sampleDoc, "batch_size: 32", "batch_size: 32\n  batchsize: 16", 1)

	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("Parse() accepted a document with an unknown key")
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "scalar hidden size", doc: sampleDoc},
		{
			name: "sequence hidden size",
			doc: `model:
  name: SimpleMLP
  device: cpu
  hidden_size: [128, 64, 32]
  dropout: 0.0
data:
  train_path: data/train
  batch_size: 8
  shuffle: false
  num_workers: 0
  experimenting: 100
  train_val_split: 1.0
  coord_dims: 3
  input_timesteps: 10
  output_timesteps: 15
  features:
    p_in: 0
    v_in: 0
    positional_embeddings: 0
    lanes:
      count: 0
      angle_filter: false
      rear_filter: 0.0
      embedding_size: 0
  transforms: []
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := Parse([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			out, err := first.Marshal()
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			second, err := Parse(out)
			if err != nil {
				t.Fatalf("re-Parse() error = %v\nserialized:\n%s", err, out)
			}

			if !reflect.DeepEqual(first, second) {
				t.Errorf("round-trip mismatch:\nfirst:  %+v\nsecond: %+v\nserialized:\n%s", first, second, out)
			}
		})
	}
}

func TestHiddenSizeShape(t *testing.T) {
	tests := []struct {
		name       string
		yaml       string
		wantScalar bool
		wantValues []int
		wantErr    bool
	}{
		{name: "scalar", yaml: "hidden_size: 64", wantScalar: true, wantValues: []int{64}},
		{name: "sequence", yaml: "hidden_size: [64, 32]", wantScalar: false, wantValues: []int{64, 32}},
		{name: "mapping rejected", yaml: "hidden_size: {a: 1}", wantErr: true},
		{name: "non-integer rejected", yaml: "hidden_size: wide", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var holder struct {
				HiddenSize HiddenSize `yaml:"hidden_size"`
			}
			err := yamlUnmarshalStrict([]byte(tt.yaml), &holder)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unmarshal error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if holder.HiddenSize.IsScalar() != tt.wantScalar {
				t.Errorf("IsScalar() = %v, want %v", holder.HiddenSize.IsScalar(), tt.wantScalar)
			}
			if !reflect.DeepEqual(holder.HiddenSize.Values(), tt.wantValues) {
				t.Errorf("Values() = %v, want %v", holder.HiddenSize.Values(), tt.wantValues)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Parse([]byte(sampleDoc))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		return cfg
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantParam string
		wantErr   bool
	}{
		{name: "valid document", mutate: func(*Config) {}, wantErr: false},
		{
			name:    "unknown architecture",
			mutate:  func(c *Config) { c.Model.Name = "Transformer" },
			wantErr: true,
		},
		{
			name:      "empty device",
			mutate:    func(c *Config) { c.Model.Device = "  " },
			wantParam: "model.device",
			wantErr:   true,
		},
		{
			name:      "dropout at one",
			mutate:    func(c *Config) { c.Model.Dropout = 1.0 },
			wantParam: "model.dropout",
			wantErr:   true,
		},
		{
			name:      "negative dropout",
			mutate:    func(c *Config) { c.Model.Dropout = -0.1 },
			wantParam: "model.dropout",
			wantErr:   true,
		},
		{
			name:      "recurrent model with sequence hidden size",
			mutate:    func(c *Config) { c.Model.HiddenSize = LayerHidden(64, 32) },
			wantParam: "model.hidden_size",
			wantErr:   true,
		},
		{
			name:      "zero batch size",
			mutate:    func(c *Config) { c.Data.BatchSize = 0 },
			wantParam: "data.batch_size",
			wantErr:   true,
		},
		{
			name:      "negative workers",
			mutate:    func(c *Config) { c.Data.NumWorkers = -1 },
			wantParam: "data.num_workers",
			wantErr:   true,
		},
		{
			name:      "split above one",
			mutate:    func(c *Config) { c.Data.TrainValSplit = 1.2 },
			wantParam: "data.train_val_split",
			wantErr:   true,
		},
		{
			name:      "split at zero",
			mutate:    func(c *Config) { c.Data.TrainValSplit = 0 },
			wantParam: "data.train_val_split",
			wantErr:   true,
		},
		{
			name:      "zero input timesteps",
			mutate:    func(c *Config) { c.Data.InputTimesteps = 0 },
			wantParam: "data.input_timesteps",
			wantErr:   true,
		},
		{
			name:      "empty transform name",
			mutate:    func(c *Config) { c.Data.Transforms = []string{"AgentCenter", " "} },
			wantParam: "data.transforms",
			wantErr:   true,
		},
		{
			name:      "negative embedding size",
			mutate:    func(c *Config) { c.Data.Features.Lanes.EmbeddingSize = -1 },
			wantParam: "data.features.lanes.embedding_size",
			wantErr:   true,
		},
		{
			name: "mlp accepts sequence hidden size",
			mutate: func(c *Config) {
				c.Model.Name = ModelSimpleMLP
				c.Model.HiddenSize = LayerHidden(128, 64)
				c.Model.NumLayers = 0
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr && tt.wantParam != "" {
				var valErr *errors.ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("expected ValidationError, got %T: %v", err, err)
				}
				if valErr.ParamName != tt.wantParam {
					t.Errorf("ParamName = %q, want %q", valErr.ParamName, tt.wantParam)
				}
			}
		})
	}
}

func TestValidate_UnknownModelErrorType(t *testing.T) {
	cfg, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	cfg.Model.Name = "PointNet"

	err = cfg.Validate()
	var umErr *errors.UnknownModelError
	if !errors.As(err, &umErr) {
		t.Fatalf("expected UnknownModelError, got %T: %v", err, err)
	}
	if umErr.Name != "PointNet" {
		t.Errorf("Name = %q, want PointNet", umErr.Name)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Model.Name != ModelSeq2Seq {
		t.Errorf("Model.Name = %q, want %q", cfg.Model.Name, ModelSeq2Seq)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestInputSize(t *testing.T) {
	cfg, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// (p_in+1)*2 + v_in*2 + lane embedding = 5*2 + 4*2 + 128 = 146
	if got := cfg.Data.BaseInputSize(); got != 146 {
		t.Errorf("BaseInputSize() = %d, want 146", got)
	}

	// 146 doubled per frequency pair, 2 frequencies: 146 * 2 * 2 = 584
	if got := cfg.Data.InputSize(); got != 584 {
		t.Errorf("InputSize() = %d, want 584", got)
	}

	// Raw lane mode: each of the 10 segments contributes x, y, dx, dy.
	cfg.Data.Features.Lanes.EmbeddingSize = 0
	if got := cfg.Data.BaseInputSize(); got != 58 {
		t.Errorf("BaseInputSize() raw lanes = %d, want 58", got)
	}

	cfg.Data.Features.PositionalEmbeddings = 0
	if got := cfg.Data.InputSize(); got != 58 {
		t.Errorf("InputSize() without embeddings = %d, want 58", got)
	}
}
