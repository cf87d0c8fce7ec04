// Package preprocessing provides the scene transforms the configuration's
// data.transforms list refers to, plus the registry resolving those names.
//
// Transforms mutate scenes in place and run in the listed order, once per
// scene. Configuration validation does not know transform names; resolution
// happens here so registering a new transform needs no schema change.
package preprocessing

import (
	"sort"
	"sync"

	"github.com/YuminosukeSato/trajgo/dataset"
	"github.com/YuminosukeSato/trajgo/pkg/errors"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() dataset.SceneTransform)
)

// Register makes a transform constructor available under name. Registering
// the same name twice replaces the earlier entry; typical use is from init
// functions.
func Register(name string, factory func() dataset.SceneTransform) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Lookup returns the constructor registered under name.
func Lookup(name string) (func() dataset.SceneTransform, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[name]
	return factory, ok
}

// Names returns the registered transform names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromNames resolves the data.transforms list into transform instances,
// preserving order. An unregistered name fails the whole resolution.
func FromNames(names []string) ([]dataset.SceneTransform, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	transforms := make([]dataset.SceneTransform, 0, len(names))
	for _, name := range names {
		factory, ok := registry[name]
		if !ok {
			known := make([]string, 0, len(registry))
			for k := range registry {
				known = append(known, k)
			}
			sort.Strings(known)
			return nil, errors.NewUnknownTransformError(name, known)
		}
		transforms = append(transforms, factory())
	}
	return transforms, nil
}

func init() {
	Register(AgentCenterName, func() dataset.SceneTransform { return NewAgentCenter() })
	Register(StandardizeCoordsName, func() dataset.SceneTransform { return NewStandardizeCoords() })
}
