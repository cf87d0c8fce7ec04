package dataset

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/YuminosukeSato/trajgo/config"
	"github.com/YuminosukeSato/trajgo/core/parallel"
	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// SceneTransform is a named, order-significant mutation applied to each
// scene before featurization. The preprocessing package provides the
// implementations and the registry resolving data.transforms entries.
type SceneTransform interface {
	// Name returns the identifier the configuration uses for this transform.
	Name() string

	// Apply mutates the scene in place.
	Apply(s *Scene) error
}

// Dataset is an in-memory collection of scenes plus the data configuration
// that produced it.
type Dataset struct {
	Scenes []*Scene
	cfg    config.DataConfig
}

// parallelLoadThreshold keeps tiny datasets on the synchronous path.
const parallelLoadThreshold = 16

// Load reads every scene file under cfg.TrainPath, applying the
// experimenting truncation. Scene files are JSON documents with a .json
// extension; files are read in name order so truncation is deterministic.
func Load(cfg config.DataConfig) (*Dataset, error) {
	entries, err := os.ReadDir(cfg.TrainPath)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: reading %s", cfg.TrainPath)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(cfg.TrainPath, entry.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyDataset, "dataset: no scene files under %s", cfg.TrainPath)
	}

	// The experimenting flag truncates before reading, not after: the point
	// of the flag is cheap iteration on a reduced subset.
	if cfg.Experimenting > 0 && cfg.Experimenting < len(paths) {
		errors.Warn(errors.NewTruncationWarning(cfg.Experimenting, len(paths)))
		paths = paths[:cfg.Experimenting]
	}

	scenes := make([]*Scene, len(paths))
	readErrs := make([]error, len(paths))

	parallel.ParallelizeWithThreshold(len(paths), parallelLoadThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			scenes[i], readErrs[i] = readScene(paths[i], cfg.CoordDims)
		}
	})

	for _, err := range readErrs {
		if err != nil {
			return nil, err
		}
	}

	return &Dataset{Scenes: scenes, cfg: cfg}, nil
}

func readScene(path string, coordDims int) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: reading %s", path)
	}

	s, err := ParseScene(data)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: %s", path)
	}

	if s.ID == "" {
		s.ID = strings.TrimSuffix(filepath.Base(path), ".json")
	}

	if err := s.Check(coordDims); err != nil {
		return nil, errors.Wrapf(err, "dataset: %s", path)
	}
	return s, nil
}

// Len returns the number of scenes.
func (d *Dataset) Len() int {
	return len(d.Scenes)
}

// Config returns the data configuration the dataset was loaded with.
func (d *Dataset) Config() config.DataConfig {
	return d.cfg
}

// Split divides the dataset into train and validation subsets per
// train_val_split: the leading fraction becomes the training split. With a
// split of 1.0 the validation set is empty.
func (d *Dataset) Split() (train, val *Dataset) {
	cut := int(math.Round(d.cfg.TrainValSplit * float64(len(d.Scenes))))
	if cut > len(d.Scenes) {
		cut = len(d.Scenes)
	}

	train = &Dataset{Scenes: d.Scenes[:cut], cfg: d.cfg}
	val = &Dataset{Scenes: d.Scenes[cut:], cfg: d.cfg}
	return train, val
}

// ApplyTransforms runs the resolved transform pipeline over every scene, in
// listed order, once. Scenes are mutated in place; the pass is parallelized
// across scenes per num_workers.
func (d *Dataset) ApplyTransforms(transforms []SceneTransform) error {
	if len(transforms) == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		firstErr error
	)

	parallel.ParallelizeWorkers(len(d.Scenes), d.cfg.NumWorkers, func(start, end int) {
		for i := start; i < end; i++ {
			for _, tr := range transforms {
				if err := tr.Apply(d.Scenes[i]); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = errors.Wrapf(err, "dataset: transform %s on scene %q", tr.Name(), d.Scenes[i].ID)
					}
					mu.Unlock()
					return
				}
			}
		}
	})

	return firstErr
}
