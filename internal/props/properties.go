package props

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate is returned when an attribute name is already registered.
	ErrDuplicate = errors.New("property already exists")

	// ErrUnknown is returned when an attribute name is not registered.
	ErrUnknown = errors.New("unknown property")
)

// Properties maps attribute names to Arrays for one entity class.
// Every Array in a Properties has the same length.
type Properties struct {
	class  string
	size   int
	arrays map[string]*Array
	order  []string // creation order, for deterministic iteration
}

// New creates an empty registry for size entities of the given class.
func New(class string, size int) *Properties {
	if size < 0 {
		panic(fmt.Sprintf("props: negative size %d for class %q", size, class))
	}
	return &Properties{
		class:  class,
		size:   size,
		arrays: make(map[string]*Array),
	}
}

// Class returns the entity class name (e.g. "person").
func (p *Properties) Class() string { return p.class }

// Size returns the number of entities.
func (p *Properties) Size() int { return p.size }

// Create allocates a new Array under name.
func (p *Properties) Create(name string, kind Kind) (*Array, error) {
	if _, ok := p.arrays[name]; ok {
		return nil, fmt.Errorf("%s.%s: %w", p.class, name, ErrDuplicate)
	}
	a := NewArray(name, kind, p.size)
	p.arrays[name] = a
	p.order = append(p.order, name)
	return a, nil
}

// Ensure returns the Array under name, creating it if absent.
// Returns an error if it exists with a different kind.
func (p *Properties) Ensure(name string, kind Kind) (*Array, error) {
	if a, ok := p.arrays[name]; ok {
		if a.kind != kind {
			return nil, fmt.Errorf("%s.%s: exists as %v, requested %v", p.class, name, a.kind, kind)
		}
		return a, nil
	}
	return p.Create(name, kind)
}

// Array returns the Array registered under name.
func (p *Properties) Array(name string) (*Array, error) {
	a, ok := p.arrays[name]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", p.class, name, ErrUnknown)
	}
	return a, nil
}

// Has reports whether name is registered.
func (p *Properties) Has(name string) bool {
	_, ok := p.arrays[name]
	return ok
}

// Names returns attribute names in creation order.
func (p *Properties) Names() []string {
	return append([]string(nil), p.order...)
}

// must looks up name and panics if it is missing.
func (p *Properties) must(name string) *Array {
	a, ok := p.arrays[name]
	if !ok {
		panic(fmt.Sprintf("props: %s.%s: %v", p.class, name, ErrUnknown))
	}
	return a
}

func (p *Properties) GetBool(name string, i int) bool { return p.must(name).Bool(i) }
func (p *Properties) GetByte(name string, i int) int8 { return p.must(name).Byte(i) }
func (p *Properties) GetShort(name string, i int) int16 { return p.must(name).Short(i) }
func (p *Properties) GetInt(name string, i int) int32 { return p.must(name).Int(i) }
func (p *Properties) GetFloat(name string, i int) float32 { return p.must(name).Float(i) }

func (p *Properties) SetBool(name string, i int, v bool) { p.must(name).SetBool(i, v) }
func (p *Properties) SetByte(name string, i int, v int8) { p.must(name).SetByte(i, v) }
func (p *Properties) SetShort(name string, i int, v int16) { p.must(name).SetShort(i, v) }
func (p *Properties) SetInt(name string, i int, v int32) { p.must(name).SetInt(i, v) }
func (p *Properties) SetFloat(name string, i int, v float32) { p.must(name).SetFloat(i, v) }

// Snapshot returns a deep copy of every Array.
func (p *Properties) Snapshot() *Properties {
	c := New(p.class, p.size)
	for _, name := range p.order {
		c.arrays[name] = p.arrays[name].Clone()
		c.order = append(c.order, name)
	}
	return c
}
