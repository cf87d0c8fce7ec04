// Package models implements the prediction networks the configuration's
// model.name field selects between: a feed-forward baseline (SimpleMLP), a
// GRU with autoregressive decoding (SimpleRNN) and an encoder/decoder pair
// (Seq2Seq). All three consume the featurized input window and emit one
// coordinate row per output timestep.
//
// Networks run forward-only: weights come from ImportWeights (typically via
// core/model.LoadWeights) or, for experimentation, from the seeded random
// initialization.
package models

import (
	"math/rand"

	"github.com/YuminosukeSato/trajgo/config"
	"github.com/YuminosukeSato/trajgo/core/model"
	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

// Network is what every architecture in this package provides: single and
// batch prediction plus weight persistence. Networks keep per-step work
// buffers and are not safe for concurrent Predict calls; use one instance
// per goroutine.
type Network interface {
	model.BatchPredictor
	model.WeightContainer

	// Name returns the architecture name from the configuration.
	Name() string
}

// New builds the network the configuration selects, with seeded random
// weights. The data section determines the input width; the model section
// the capacity.
func New(mc config.ModelConfig, dc config.DataConfig, seed int64) (Network, error) {
	rng := rand.New(rand.NewSource(seed))

	switch mc.Name {
	case config.ModelSimpleMLP:
		return newSimpleMLP(mc, dc, rng)
	case config.ModelSimpleRNN:
		return newSimpleRNN(mc, dc, rng)
	case config.ModelSeq2Seq:
		return newSeq2Seq(mc, dc, rng)
	default:
		return nil, errors.NewUnknownModelError(mc.Name, config.KnownArchitectures())
	}
}

// Load builds the network the configuration selects and restores its
// parameters from the weight file at path.
func Load(mc config.ModelConfig, dc config.DataConfig, path string) (Network, error) {
	net, err := New(mc, dc, 0)
	if err != nil {
		return nil, err
	}
	if err := model.LoadWeights(net, path); err != nil {
		return nil, err
	}
	return net, nil
}
