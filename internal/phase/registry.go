// Package phase provides an ordered registry of named discrete states.
//
// A Registry holds the phases of one category (for example the disease
// phases of one disease). Ordinals are dense, start at 0 and follow
// registration order. The registry is append-only and closes for
// registration the first time it is consumed through a lookup.
//
// Deciding which phase comes next, and how long an agent stays in it, is
// not the registry's job: that is a Policy supplied by the model.
package phase

import (
	"errors"
	"fmt"

	"github.com/roach88/agentsim/internal/names"
)

var (
	// ErrUnknownPhase is returned by lookups for an unregistered name or
	// an out-of-range ordinal.
	ErrUnknownPhase = errors.New("unknown phase")

	// ErrSealed is returned by Register once the registry has been consumed.
	ErrSealed = errors.New("phase registry is sealed")

	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("phase already registered")
)

// Phase is one named state. Immutable after registration.
type Phase[C any] struct {
	name    string
	ordinal int
	class   C
}

// Name returns the canonical phase name.
func (p *Phase[C]) Name() string { return p.name }

// Ordinal returns the zero-based registration index.
func (p *Phase[C]) Ordinal() int { return p.ordinal }

// Class returns the coarse classification tag.
func (p *Phase[C]) Class() C { return p.class }

func (p *Phase[C]) String() string {
	return fmt.Sprintf("%s(%d)", p.name, p.ordinal)
}

// Registry is the ordered set of phases for one category.
type Registry[C any] struct {
	category string
	phases   []*Phase[C]
	byName   map[string]*Phase[C]
	sealed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry[C any](category string) *Registry[C] {
	return &Registry[C]{
		category: category,
		byName:   make(map[string]*Phase[C]),
	}
}

// Category returns the registry's category name.
func (r *Registry[C]) Category() string { return r.category }

// Register appends a phase and assigns it the next ordinal.
func (r *Registry[C]) Register(name string, class C) (*Phase[C], error) {
	if r.sealed {
		return nil, fmt.Errorf("%s: register %q: %w", r.category, name, ErrSealed)
	}
	key := names.Canonical(name)
	if key == "" {
		return nil, fmt.Errorf("%s: phase name is required", r.category)
	}
	if _, ok := r.byName[key]; ok {
		return nil, fmt.Errorf("%s: %q: %w", r.category, key, ErrDuplicate)
	}

	p := &Phase[C]{name: key, ordinal: len(r.phases), class: class}
	r.phases = append(r.phases, p)
	r.byName[key] = p
	return p, nil
}

// MustRegister is Register for model construction code that treats a
// failure as a broken build.
func (r *Registry[C]) MustRegister(name string, class C) *Phase[C] {
	p, err := r.Register(name, class)
	if err != nil {
		panic(err)
	}
	return p
}

// Seal closes the registry for registration.
func (r *Registry[C]) Seal() { r.sealed = true }

// Sealed reports whether registration is closed.
func (r *Registry[C]) Sealed() bool { return r.sealed }

// Len returns the number of registered phases.
func (r *Registry[C]) Len() int { return len(r.phases) }

// ByName returns the phase registered under name. Seals the registry.
func (r *Registry[C]) ByName(name string) (*Phase[C], error) {
	r.sealed = true
	p, ok := r.byName[names.Canonical(name)]
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", r.category, name, ErrUnknownPhase)
	}
	return p, nil
}

// ByOrdinal returns the phase with the given ordinal. Seals the registry.
func (r *Registry[C]) ByOrdinal(ordinal int) (*Phase[C], error) {
	r.sealed = true
	if ordinal < 0 || ordinal >= len(r.phases) {
		return nil, fmt.Errorf("%s: ordinal %d of %d: %w", r.category, ordinal, len(r.phases), ErrUnknownPhase)
	}
	return r.phases[ordinal], nil
}

// All returns the phases in ordinal order. Seals the registry.
func (r *Registry[C]) All() []*Phase[C] {
	r.sealed = true
	return append([]*Phase[C](nil), r.phases...)
}
