// Package trackers maps algorithm names to single-object tracker factories
// and provides the algorithms that need no native libraries.
package trackers

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/user/zonecam/pkg/ports"
)

var (
	// ErrUnknownAlgorithm is returned for names that were never registered.
	ErrUnknownAlgorithm = errors.New("trackers: unknown algorithm")

	// ErrDuplicateAlgorithm is returned when a name is registered twice.
	ErrDuplicateAlgorithm = errors.New("trackers: algorithm already registered")
)

// Registry is an explicit table from upper-case algorithm name to factory.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ports.TrackerFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ports.TrackerFactory)}
}

// Default returns a registry holding the built-in algorithms.
func Default() *Registry {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		panic(err)
	}
	return r
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Register adds a factory under name. Names are case-insensitive.
func (r *Registry) Register(name string, f ports.TrackerFactory) error {
	key := normalize(name)
	if key == "" || f == nil {
		return fmt.Errorf("trackers: invalid registration %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAlgorithm, key)
	}
	r.factories[key] = f
	return nil
}

// RegisterAll adds every factory in fs, stopping at the first error.
func (r *Registry) RegisterAll(fs map[string]ports.TrackerFactory) error {
	for name, f := range fs {
		if err := r.Register(name, f); err != nil {
			return err
		}
	}
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[normalize(name)]
	return ok
}

// New creates a fresh tracker for name.
func (r *Registry) New(name string) (ports.Tracker, error) {
	r.mu.RLock()
	f, ok := r.factories[normalize(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
	t, err := f()
	if err != nil {
		return nil, fmt.Errorf("create %s tracker: %w", normalize(name), err)
	}
	return t, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Built-in algorithm names.
const (
	Template  = "TEMPLATE"
	MeanShift = "MEANSHIFT"
	CamShift  = "CAMSHIFT"
)

// RegisterBuiltins registers TEMPLATE, MEANSHIFT and CAMSHIFT.
func RegisterBuiltins(r *Registry) error {
	return errors.Join(
		r.Register(Template, func() (ports.Tracker, error) { return NewTemplate(), nil }),
		r.Register(MeanShift, func() (ports.Tracker, error) { return NewMeanShift(), nil }),
		r.Register(CamShift, func() (ports.Tracker, error) { return NewCamShift(), nil }),
	)
}
