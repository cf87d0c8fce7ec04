// Package trajgo implements a sequence-to-sequence trajectory prediction
// pipeline for autonomous-driving scenes, driven end to end by a single
// YAML configuration document.
//
// The configuration has two top-level sections. The model section selects
// and sizes the network (SimpleMLP, SimpleRNN or Seq2Seq); the data section
// describes the dataset location, batching, the train/validation split, the
// feature layout of the input window and the preprocessing transforms.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "log"
//
//	    "github.com/YuminosukeSato/trajgo/config"
//	    "github.com/YuminosukeSato/trajgo/dataset"
//	    "github.com/YuminosukeSato/trajgo/models"
//	    "github.com/YuminosukeSato/trajgo/preprocessing"
//	)
//
//	func main() {
//	    cfg, err := config.Load("config.yaml")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := cfg.Validate(); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    ds, err := dataset.Load(cfg.Data)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    transforms, err := preprocessing.FromNames(cfg.Data.Transforms)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := ds.ApplyTransforms(transforms); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    net, err := models.New(cfg.Model, cfg.Data, 42)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    _ = net // feed batches from dataset.NewLoader through net.Predict
//	}
//
// # Packages
//
//   - config: the YAML configuration schema, parsing and validation
//   - dataset: scene records, loading, featurization and the batch loader
//   - preprocessing: scene transforms (AgentCenter, StandardizeCoords)
//   - models: the prediction networks and their weight persistence
//   - models/lanes: lane-segment filtering and encoding
//   - metrics: trajectory evaluation (MSE, ADE, FDE)
//   - trajplot: scene and prediction rendering
//   - core/model: shared network base types and weight serialization
//   - core/parallel: worker-pool helpers used by the data pipeline
//   - pkg/errors: structured errors and the warning system
//   - pkg/log: structured logging (slog and zerolog backends)
package trajgo
