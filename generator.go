package raster

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Generator builds the expression tree of a named pipeline stage.
type Generator interface {
	Build() (Expr, error)
}

// GeneratorFactory constructs a generator from its parameters.
type GeneratorFactory func(params GeneratorParams) (Generator, error)

// GeneratorParams holds key=value parameters for a generator instance.
type GeneratorParams map[string]string

// Int returns the named parameter as an integer in [lo, hi]. Absent
// parameters yield def.
func (p GeneratorParams) Int(name string, def, lo, hi int64) (int64, error) {
	s, ok := p[name]
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: %w: %q is not an integer", name, ErrInvalidParam, s)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("parameter %q: %w: %d outside [%d,%d]", name, ErrInvalidParam, v, lo, hi)
	}
	return v, nil
}

// Uint returns the named parameter as a non-negative integer.
func (p GeneratorParams) Uint(name string, def uint64) (uint64, error) {
	s, ok := p[name]
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: %w: %q is not an unsigned integer", name, ErrInvalidParam, s)
	}
	return v, nil
}

// Bool returns the named parameter as a boolean.
func (p GeneratorParams) Bool(name string, def bool) (bool, error) {
	s, ok := p[name]
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("parameter %q: %w: %q is not a boolean", name, ErrInvalidParam, s)
	}
	return v, nil
}

// String returns the named parameter, or def when absent.
func (p GeneratorParams) String(name, def string) string {
	if s, ok := p[name]; ok {
		return s
	}
	return def
}

// GeneratorRegistry maps generator names to their factories. The zero
// value is not usable; construct with NewGeneratorRegistry.
type GeneratorRegistry struct {
	mu        sync.Mutex
	factories map[string]GeneratorFactory
}

// NewGeneratorRegistry returns an empty registry.
func NewGeneratorRegistry() *GeneratorRegistry {
	return &GeneratorRegistry{factories: make(map[string]GeneratorFactory)}
}

// Register adds a named factory. Registering an empty name or a name
// already present is an error.
func (r *GeneratorRegistry) Register(name string, factory GeneratorFactory) error {
	if name == "" {
		return fmt.Errorf("register generator: %w: empty name", ErrInvalidParam)
	}
	assert(factory != nil, "nil factory for generator %q", name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("register generator %q: %w", name, ErrGeneratorExists)
	}
	r.factories[name] = factory
	return nil
}

// Unregister removes a named factory. Unknown names are ignored.
func (r *GeneratorRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, name)
}

// Names returns the registered generator names in sorted order.
func (r *GeneratorRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create instantiates the named generator with the given parameters.
func (r *GeneratorRegistry) Create(name string, params GeneratorParams) (Generator, error) {
	r.mu.Lock()
	factory, ok := r.factories[name]
	r.mu.Unlock()
	if !ok {
		names := r.Names()
		if len(names) == 0 {
			return nil, fmt.Errorf("generator %q: %w", name, ErrGeneratorNotFound)
		}
		return nil, fmt.Errorf("generator %q: %w (registered: %s)", name, ErrGeneratorNotFound, strings.Join(names, ", "))
	}
	return factory(params)
}
