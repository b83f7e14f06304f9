package effect

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates an effect from its descriptor. The descriptor's options
// are a private copy the factory may keep.
type Factory func(desc Descriptor) (Effect, error)

// Registry maps (Kind, Type) to factories. Types are case-folded, so
// "Rain" and "rain" name the same factory.
//
// Registration is safe from multiple goroutines; it normally happens once
// at startup.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]map[Type]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]map[Type]Factory)}
}

// Register adds or replaces the factory for (kind, typ).
func (r *Registry) Register(kind Kind, typ Type, f Factory) {
	if f == nil {
		panic(fmt.Sprintf("effect: nil factory for %s %q", kind, typ))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byType := r.factories[kind]
	if byType == nil {
		byType = make(map[Type]Factory)
		r.factories[kind] = byType
	}
	byType[typ.Fold()] = f
}

// Lookup returns the factory for (kind, typ).
func (r *Registry) Lookup(kind Kind, typ Type) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[kind][typ.Fold()]
	return f, ok
}

// New creates the effect described by desc. Unknown types return an
// *UnknownTypeError. The factory receives a deep copy of the options.
func (r *Registry) New(desc Descriptor) (Effect, error) {
	f, ok := r.Lookup(desc.Kind, desc.Type)
	if !ok {
		return nil, &UnknownTypeError{ID: desc.ID, Kind: desc.Kind, Type: desc.Type}
	}
	desc.Type = desc.Type.Fold()
	desc.Options = desc.Options.Clone()
	e, err := f(desc)
	if err != nil {
		return nil, fmt.Errorf("effect: create %s %q (%s): %w", desc.Kind, desc.ID, desc.Type, err)
	}
	return e, nil
}

// Types returns the registered types of kind, sorted.
func (r *Registry) Types(kind Kind) []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]Type, 0, len(r.factories[kind]))
	for t := range r.factories[kind] {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
