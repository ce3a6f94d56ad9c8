package props

import (
	"fmt"
	"math"
)

// Kind is the backing storage type of an Array.
type Kind uint8

const (
	Bool Kind = iota + 1
	Byte
	Short
	Int
	Float
)

var kindNames = map[Kind]string{
	Bool:  "bool",
	Byte:  "byte",
	Short: "short",
	Int:   "int",
	Float: "float",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "bool", "boolean":
		return Bool, nil
	case "byte":
		return Byte, nil
	case "short":
		return Short, nil
	case "int":
		return Int, nil
	case "float":
		return Float, nil
	}
	return 0, fmt.Errorf("unknown property kind %q", s)
}

// roundToInt64 converts a float to the nearest integer, rounding halves up.
func roundToInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(math.Floor(f + 0.5))
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
