package props

import "fmt"

// Array is one named, fixed-size column of primitive values.
//
// Exactly one backing slice is allocated, chosen by Kind. The length never
// changes after construction.
type Array struct {
	name string
	kind Kind
	size int

	bools  []bool
	bytes  []int8
	shorts []int16
	ints   []int32
	floats []float32
}

// NewArray allocates a zeroed array of the given kind and size.
// Panics if size is negative or kind is unknown.
func NewArray(name string, kind Kind, size int) *Array {
	if size < 0 {
		panic(fmt.Sprintf("props: negative size %d for %q", size, name))
	}
	a := &Array{name: name, kind: kind, size: size}
	switch kind {
	case Bool:
		a.bools = make([]bool, size)
	case Byte:
		a.bytes = make([]int8, size)
	case Short:
		a.shorts = make([]int16, size)
	case Int:
		a.ints = make([]int32, size)
	case Float:
		a.floats = make([]float32, size)
	default:
		panic(fmt.Sprintf("props: unknown kind %v for %q", kind, name))
	}
	return a
}

// Name returns the attribute name.
func (a *Array) Name() string { return a.name }

// Kind returns the backing kind.
func (a *Array) Kind() Kind { return a.kind }

// Len returns the fixed number of elements.
func (a *Array) Len() int { return a.size }

func (a *Array) check(i int) {
	if i < 0 || i >= a.size {
		panic(fmt.Sprintf("props: index %d out of range [0,%d) for %q", i, a.size, a.name))
	}
}

// int64At reads element i widened to int64.
func (a *Array) int64At(i int) int64 {
	a.check(i)
	switch a.kind {
	case Bool:
		return boolToInt(a.bools[i])
	case Byte:
		return int64(a.bytes[i])
	case Short:
		return int64(a.shorts[i])
	case Int:
		return int64(a.ints[i])
	default:
		return roundToInt64(float64(a.floats[i]))
	}
}

// float64At reads element i widened to float64.
func (a *Array) float64At(i int) float64 {
	a.check(i)
	switch a.kind {
	case Bool:
		return float64(boolToInt(a.bools[i]))
	case Byte:
		return float64(a.bytes[i])
	case Short:
		return float64(a.shorts[i])
	case Int:
		return float64(a.ints[i])
	default:
		return float64(a.floats[i])
	}
}

// setInt64 narrows v to the backing width.
func (a *Array) setInt64(i int, v int64) {
	a.check(i)
	switch a.kind {
	case Bool:
		a.bools[i] = v != 0
	case Byte:
		a.bytes[i] = int8(v)
	case Short:
		a.shorts[i] = int16(v)
	case Int:
		a.ints[i] = int32(v)
	default:
		a.floats[i] = float32(v)
	}
}

// setFloat64 rounds f for integer backings, then narrows.
func (a *Array) setFloat64(i int, f float64) {
	switch a.kind {
	case Float:
		a.check(i)
		a.floats[i] = float32(f)
	case Bool:
		a.check(i)
		a.bools[i] = f != 0
	default:
		a.setInt64(i, roundToInt64(f))
	}
}

// Bool reads element i as a bool (non-zero is true).
func (a *Array) Bool(i int) bool {
	if a.kind == Bool {
		a.check(i)
		return a.bools[i]
	}
	if a.kind == Float {
		return a.float64At(i) != 0
	}
	return a.int64At(i) != 0
}

// Byte reads element i as a signed 8-bit value.
func (a *Array) Byte(i int) int8 { return int8(a.int64At(i)) }

// Short reads element i as a signed 16-bit value.
func (a *Array) Short(i int) int16 { return int16(a.int64At(i)) }

// Int reads element i as a signed 32-bit value.
func (a *Array) Int(i int) int32 { return int32(a.int64At(i)) }

// Float reads element i as a float32.
func (a *Array) Float(i int) float32 { return float32(a.float64At(i)) }

// SetBool writes v (1 or 0 for numeric backings).
func (a *Array) SetBool(i int, v bool) { a.setInt64(i, boolToInt(v)) }

// SetByte writes v.
func (a *Array) SetByte(i int, v int8) { a.setInt64(i, int64(v)) }

// SetShort writes v, wrapping for a byte backing.
func (a *Array) SetShort(i int, v int16) { a.setInt64(i, int64(v)) }

// SetInt writes v, wrapping for narrower backings.
func (a *Array) SetInt(i int, v int32) { a.setInt64(i, int64(v)) }

// SetFloat writes v, rounding half up and wrapping for integer backings.
func (a *Array) SetFloat(i int, v float32) { a.setFloat64(i, float64(v)) }

// Fill sets every element to v using SetInt semantics.
func (a *Array) Fill(v int32) {
	for i := 0; i < a.size; i++ {
		a.setInt64(i, int64(v))
	}
}

// Clone returns a deep copy, used for snapshots taken between actions.
func (a *Array) Clone() *Array {
	c := &Array{name: a.name, kind: a.kind, size: a.size}
	switch a.kind {
	case Bool:
		c.bools = append([]bool(nil), a.bools...)
	case Byte:
		c.bytes = append([]int8(nil), a.bytes...)
	case Short:
		c.shorts = append([]int16(nil), a.shorts...)
	case Int:
		c.ints = append([]int32(nil), a.ints...)
	case Float:
		c.floats = append([]float32(nil), a.floats...)
	}
	return c
}
