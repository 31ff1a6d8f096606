package types

import (
	"cmp"
	"io"
	"strconv"

	"relstore/pkg/dberror"
	"relstore/pkg/primitives"
)

// IntField represents a 64-bit signed integer field.
type IntField struct {
	Value int64
}

func NewIntField(value int64) *IntField {
	return &IntField{Value: value}
}

func (f *IntField) Serialize(w io.Writer) error {
	return serializeUint64(w, uint64(f.Value)) // #nosec G115
}

func (f *IntField) Compare(op primitives.Predicate, other Field) (bool, error) {
	return Compare(f, op, other)
}

func (f *IntField) Cmp(other Field) (int, error) {
	switch o := other.(type) {
	case *IntField:
		return cmp.Compare(f.Value, o.Value), nil
	case *Float64Field:
		return cmp.Compare(float64(f.Value), o.Value), nil
	default:
		return 0, dberror.TypeMismatchf("cannot compare %v with %v", f.Type(), typeOf(other))
	}
}

func (f *IntField) Type() Type {
	return IntType
}

func (f *IntField) String() string {
	return strconv.FormatInt(f.Value, 10)
}

func (f *IntField) Equals(other Field) bool {
	otherInt, ok := other.(*IntField)
	if !ok {
		return false
	}
	return f.Value == otherInt.Value
}

func (f *IntField) Hash() (primitives.HashCode, error) {
	return fnvHash(toBytes64(uint64(f.Value))), nil // #nosec G115
}
