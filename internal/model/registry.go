package model

import (
	"errors"
	"fmt"

	"github.com/roach88/agentsim/internal/activity"
	"github.com/roach88/agentsim/internal/names"
)

var (
	// ErrUnknownWeekPattern is returned for an unregistered pattern name or id.
	ErrUnknownWeekPattern = errors.New("unknown week pattern")

	// ErrUnknownLocation is returned for an out-of-range location id.
	ErrUnknownLocation = errors.New("unknown location")

	// ErrUnknownLocationType is returned for an unregistered type name.
	ErrUnknownLocationType = errors.New("unknown location type")

	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("already registered")
)

// Registry is the model-wide lookup for locations, location types and
// week patterns. It also owns the filler activity, so separate runs in one
// process never share one.
type Registry struct {
	types     []string
	typeIndex map[string]int

	locations []*Location

	patterns     []*activity.WeekPattern
	patternIndex map[string]*activity.WeekPattern

	filler *activity.Activity
	pop    *Population
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{
		typeIndex:    make(map[string]int),
		patternIndex: make(map[string]*activity.WeekPattern),
	}
	r.filler = activity.NewFiller(Current(r))
	return r
}

// Filler returns the placeholder activity for this model.
func (r *Registry) Filler() *activity.Activity { return r.filler }

// Population returns the attached population, or nil.
func (r *Registry) Population() *Population { return r.pop }

// AddLocationType registers a location type and returns its index.
func (r *Registry) AddLocationType(name string) (int, error) {
	key := names.Canonical(name)
	if key == "" {
		return 0, fmt.Errorf("location type name is required")
	}
	if _, ok := r.typeIndex[key]; ok {
		return 0, fmt.Errorf("location type %q: %w", key, ErrDuplicate)
	}
	r.typeIndex[key] = len(r.types)
	r.types = append(r.types, key)
	return len(r.types) - 1, nil
}

// LocationType returns the index of a type name.
func (r *Registry) LocationType(name string) (int, error) {
	i, ok := r.typeIndex[names.Canonical(name)]
	if !ok {
		return 0, fmt.Errorf("%q: %w", name, ErrUnknownLocationType)
	}
	return i, nil
}

// TypeName returns the name of a type index, for reporting.
func (r *Registry) TypeName(typ int) string {
	if typ < 0 || typ >= len(r.types) {
		return fmt.Sprintf("type(%d)", typ)
	}
	return r.types[typ]
}

// TypeNames returns every type name in index order.
func (r *Registry) TypeNames() []string {
	return append([]string(nil), r.types...)
}

// AddLocation creates a location of the named type. Ids are dense and
// follow creation order.
func (r *Registry) AddLocation(typeName string, capacity int, open bool) (*Location, error) {
	typ, err := r.LocationType(typeName)
	if err != nil {
		return nil, err
	}
	if capacity < 0 {
		return nil, fmt.Errorf("location %d: negative capacity %d", len(r.locations), capacity)
	}
	l := newLocation(len(r.locations), typ, capacity, open)
	r.locations = append(r.locations, l)
	return l, nil
}

// Location returns the location with the given id.
func (r *Registry) Location(id int) (*Location, error) {
	if id < 0 || id >= len(r.locations) {
		return nil, fmt.Errorf("location %d of %d: %w", id, len(r.locations), ErrUnknownLocation)
	}
	return r.locations[id], nil
}

// Locations returns every location in id order.
func (r *Registry) Locations() []*Location {
	return append([]*Location(nil), r.locations...)
}

// RegisterWeekPattern builds and registers a week pattern. Its id is its
// index in the registry.
func (r *Registry) RegisterWeekPattern(name string, days [activity.DaysPerWeek]*activity.DayPattern) (*activity.WeekPattern, error) {
	key := names.Canonical(name)
	if key == "" {
		return nil, fmt.Errorf("week pattern name is required")
	}
	if _, ok := r.patternIndex[key]; ok {
		return nil, fmt.Errorf("week pattern %q: %w", key, ErrDuplicate)
	}
	wp, err := activity.NewWeekPattern(len(r.patterns), key, days)
	if err != nil {
		return nil, err
	}
	r.patterns = append(r.patterns, wp)
	r.patternIndex[key] = wp
	return wp, nil
}

// WeekPattern resolves a week pattern by name.
func (r *Registry) WeekPattern(name string) (*activity.WeekPattern, error) {
	wp, ok := r.patternIndex[names.Canonical(name)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownWeekPattern)
	}
	return wp, nil
}

// WeekPatternByID resolves a week pattern by registration index.
func (r *Registry) WeekPatternByID(id int) (*activity.WeekPattern, error) {
	if id < 0 || id >= len(r.patterns) {
		return nil, fmt.Errorf("id %d: %w", id, ErrUnknownWeekPattern)
	}
	return r.patterns[id], nil
}

// WeekPatterns returns every pattern in id order.
func (r *Registry) WeekPatterns() []*activity.WeekPattern {
	return append([]*activity.WeekPattern(nil), r.patterns...)
}
