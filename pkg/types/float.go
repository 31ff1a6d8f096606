package types

import (
	"cmp"
	"io"
	"math"
	"strconv"

	"relstore/pkg/dberror"
	"relstore/pkg/primitives"
)

// Float64Field represents a 64-bit floating point field.
//
// Equals, Hash and Serialize follow the total order of Cmp: -0 equals 0 and
// every NaN equals every other NaN, sorting below all numbers.
type Float64Field struct {
	Value float64
}

func NewFloat64Field(value float64) *Float64Field {
	return &Float64Field{Value: value}
}

func (f *Float64Field) Serialize(w io.Writer) error {
	return serializeUint64(w, canonicalBits(f.Value))
}

func (f *Float64Field) Compare(op primitives.Predicate, other Field) (bool, error) {
	return Compare(f, op, other)
}

func (f *Float64Field) Cmp(other Field) (int, error) {
	switch o := other.(type) {
	case *Float64Field:
		return cmp.Compare(f.Value, o.Value), nil
	case *IntField:
		return cmp.Compare(f.Value, float64(o.Value)), nil
	default:
		return 0, dberror.TypeMismatchf("cannot compare %v with %v", f.Type(), typeOf(other))
	}
}

func (f *Float64Field) Type() Type {
	return FloatType
}

// String returns string representation of the float64
func (f *Float64Field) String() string {
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

func (f *Float64Field) Equals(other Field) bool {
	otherFloat64, ok := other.(*Float64Field)
	if !ok {
		return false
	}
	return cmp.Compare(f.Value, otherFloat64.Value) == 0
}

func (f *Float64Field) Hash() (primitives.HashCode, error) {
	return fnvHash(toBytes64(canonicalBits(f.Value))), nil
}

// canonicalBits maps values that compare equal to the same bit pattern.
func canonicalBits(v float64) uint64 {
	switch {
	case v == 0:
		return 0
	case math.IsNaN(v):
		return math.Float64bits(math.NaN())
	default:
		return math.Float64bits(v)
	}
}
