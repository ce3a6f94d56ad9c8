package props

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArray_FloatIntoByteRoundsThenWraps(t *testing.T) {
	a := NewArray("age", Byte, 4)

	a.SetFloat(0, 130.6)
	assert.Equal(t, int8(-125), a.Byte(0), "131 narrowed to int8")

	var wide int32 = 131
	assert.Equal(t, int8(wide), a.Byte(0))
}

func TestArray_IntegerNarrowingWraps(t *testing.T) {
	b := NewArray("b", Byte, 1)
	b.SetInt(0, 300)
	assert.Equal(t, int8(44), b.Byte(0))
	b.SetShort(0, -129)
	assert.Equal(t, int8(127), b.Byte(0))

	s := NewArray("s", Short, 1)
	s.SetInt(0, 70000)
	assert.Equal(t, int16(4464), s.Short(0))
	assert.Equal(t, int32(4464), s.Int(0))
}

func TestArray_WideningPreservesValue(t *testing.T) {
	b := NewArray("b", Byte, 1)
	b.SetByte(0, -5)
	assert.Equal(t, int16(-5), b.Short(0))
	assert.Equal(t, int32(-5), b.Int(0))
	assert.Equal(t, float32(-5), b.Float(0))
	assert.True(t, b.Bool(0))

	i := NewArray("i", Int, 1)
	i.SetInt(0, 123456)
	assert.Equal(t, float32(123456), i.Float(0))
}

func TestArray_FloatBackingReadsRoundHalfUp(t *testing.T) {
	f := NewArray("f", Float, 3)
	f.SetFloat(0, 2.5)
	f.SetFloat(1, -2.5)
	f.SetFloat(2, 2.49)

	assert.Equal(t, int32(3), f.Int(0))
	assert.Equal(t, int32(-2), f.Int(1))
	assert.Equal(t, int32(2), f.Int(2))
	assert.Equal(t, float32(2.5), f.Float(0))
}

func TestArray_NonFiniteFloats(t *testing.T) {
	i := NewArray("i", Int, 3)
	i.SetFloat(0, float32(math.NaN()))
	assert.Equal(t, int32(0), i.Int(0))

	// +Inf saturates to MaxInt64, whose low 32 bits are all ones.
	i.SetFloat(1, float32(math.Inf(1)))
	assert.Equal(t, int32(-1), i.Int(1))

	i.SetFloat(2, float32(math.Inf(-1)))
	assert.Equal(t, int32(0), i.Int(2))
}

func TestArray_BoolBacking(t *testing.T) {
	a := NewArray("infected", Bool, 3)

	a.SetInt(0, 5)
	a.SetFloat(1, 0)
	a.SetFloat(2, 0.2)

	assert.True(t, a.Bool(0))
	assert.Equal(t, int32(1), a.Int(0))
	assert.Equal(t, float32(1), a.Float(0))
	assert.False(t, a.Bool(1))
	assert.True(t, a.Bool(2))

	a.SetBool(1, true)
	assert.Equal(t, int8(1), a.Byte(1))
}

func TestArray_SetBoolIntoNumeric(t *testing.T) {
	f := NewArray("f", Float, 1)
	f.SetBool(0, true)
	assert.Equal(t, float32(1), f.Float(0))
	f.SetBool(0, false)
	assert.False(t, f.Bool(0))
}

func TestArray_LengthAndBounds(t *testing.T) {
	a := NewArray("x", Short, 10)
	assert.Equal(t, 10, a.Len())
	assert.Equal(t, "x", a.Name())
	assert.Equal(t, Short, a.Kind())

	assert.Panics(t, func() { a.Short(10) })
	assert.Panics(t, func() { a.SetInt(-1, 1) })
	assert.Panics(t, func() { a.SetFloat(10, 1) })
	assert.Panics(t, func() { a.Bool(99) })
	assert.NotPanics(t, func() { a.SetShort(9, 1) })
}

func TestArray_Fill(t *testing.T) {
	a := NewArray("member", Int, 5)
	a.Fill(-1)
	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, int32(-1), a.Int(i))
	}
}

func TestArray_CloneIsIndependent(t *testing.T) {
	a := NewArray("x", Float, 2)
	a.SetFloat(0, 1.5)

	c := a.Clone()
	a.SetFloat(0, 9)

	assert.Equal(t, float32(1.5), c.Float(0))
	assert.Equal(t, 2, c.Len())
}

func TestNewArray_InvalidArguments(t *testing.T) {
	assert.Panics(t, func() { NewArray("x", Int, -1) })
	assert.Panics(t, func() { NewArray("x", Kind(42), 1) })
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Bool, Byte, Short, Int, Float} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("long")
	assert.Error(t, err)
	assert.Equal(t, "kind(42)", Kind(42).String())
}
