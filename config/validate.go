package config

import (
	"strings"

	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// Validate enforces the schema invariants that hold regardless of which
// component consumes the document. It does not resolve transform names
// against the registry (preprocessing.FromNames does that) and it does not
// check that train_path exists (the loader does, at load time).
func (c *Config) Validate() error {
	if err := c.Model.validate(); err != nil {
		return err
	}
	return c.Data.validate()
}

func (m *ModelConfig) validate() error {
	known := KnownArchitectures()
	found := false
	for _, name := range known {
		if m.Name == name {
			found = true
			break
		}
	}
	if !found {
		return errors.NewUnknownModelError(m.Name, known)
	}

	if strings.TrimSpace(m.Device) == "" {
		return errors.NewValidationError("model.device", "must not be empty", m.Device)
	}

	if m.HiddenSize.IsZero() {
		return errors.NewValidationError("model.hidden_size", "must be set", nil)
	}
	for _, v := range m.HiddenSize.Values() {
		if v < 1 {
			return errors.NewValidationError("model.hidden_size", "layer widths must be >= 1", v)
		}
	}

	// Recurrent stacks take one width for every layer; only the MLP reads a
	// per-layer sequence.
	switch m.Name {
	case ModelSimpleRNN, ModelSeq2Seq:
		if !m.HiddenSize.IsScalar() {
			return errors.NewValidationError("model.hidden_size",
				m.Name+" expects a scalar hidden size", m.HiddenSize.Values())
		}
		if m.NumLayers < 1 {
			return errors.NewValidationError("model.num_layers", "must be >= 1 for recurrent architectures", m.NumLayers)
		}
	}

	if m.Dropout < 0 || m.Dropout >= 1 {
		return errors.NewValidationError("model.dropout", "must be in [0, 1)", m.Dropout)
	}

	return nil
}

func (d *DataConfig) validate() error {
	if strings.TrimSpace(d.TrainPath) == "" {
		return errors.NewValidationError("data.train_path", "must not be empty", d.TrainPath)
	}

	if d.BatchSize < 1 {
		return errors.NewValidationError("data.batch_size", "must be >= 1", d.BatchSize)
	}

	if d.NumWorkers < 0 {
		return errors.NewValidationError("data.num_workers", "must be >= 0", d.NumWorkers)
	}

	if d.Experimenting < 0 {
		return errors.NewValidationError("data.experimenting", "must be >= 0 (0 means full dataset)", d.Experimenting)
	}

	if d.TrainValSplit <= 0 || d.TrainValSplit > 1 {
		return errors.NewValidationError("data.train_val_split", "must be in (0, 1]", d.TrainValSplit)
	}

	if d.CoordDims < 1 {
		return errors.NewValidationError("data.coord_dims", "must be >= 1", d.CoordDims)
	}

	if d.InputTimesteps < 1 {
		return errors.NewValidationError("data.input_timesteps", "must be >= 1", d.InputTimesteps)
	}

	if d.OutputTimesteps < 1 {
		return errors.NewValidationError("data.output_timesteps", "must be >= 1", d.OutputTimesteps)
	}

	if err := d.Features.validate(); err != nil {
		return err
	}

	for i, name := range d.Transforms {
		if strings.TrimSpace(name) == "" {
			return errors.NewValidationError("data.transforms", "entries must be non-empty transform names", i)
		}
	}

	return nil
}

func (f *FeaturesConfig) validate() error {
	if f.PIn < 0 {
		return errors.NewValidationError("data.features.p_in", "must be >= 0", f.PIn)
	}
	if f.VIn < 0 {
		return errors.NewValidationError("data.features.v_in", "must be >= 0", f.VIn)
	}
	if f.PositionalEmbeddings < 0 {
		return errors.NewValidationError("data.features.positional_embeddings", "must be >= 0", f.PositionalEmbeddings)
	}

	if f.Lanes.Count < 0 {
		return errors.NewValidationError("data.features.lanes.count", "must be >= 0", f.Lanes.Count)
	}
	if f.Lanes.EmbeddingSize < 0 {
		return errors.NewValidationError("data.features.lanes.embedding_size", "must be >= 0 (0 keeps raw lane values)", f.Lanes.EmbeddingSize)
	}
	if f.Lanes.RearFilter < 0 {
		return errors.NewValidationError("data.features.lanes.rear_filter", "must be >= 0 (0 disables the filter)", f.Lanes.RearFilter)
	}

	return nil
}
