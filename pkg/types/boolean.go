package types

import (
	"io"
	"strconv"

	"relstore/pkg/dberror"
	"relstore/pkg/primitives"
)

// BoolField represents a boolean field. false orders before true.
type BoolField struct {
	Value bool
}

func NewBoolField(value bool) *BoolField {
	return &BoolField{Value: value}
}

func (b *BoolField) Serialize(w io.Writer) error {
	_, err := w.Write([]byte{b.byteValue()})
	return err
}

func (b *BoolField) Compare(op primitives.Predicate, other Field) (bool, error) {
	return Compare(b, op, other)
}

func (b *BoolField) Cmp(other Field) (int, error) {
	o, ok := other.(*BoolField)
	if !ok {
		return 0, dberror.TypeMismatchf("cannot compare %v with %v", b.Type(), typeOf(other))
	}
	return int(b.byteValue()) - int(o.byteValue()), nil
}

func (b *BoolField) Type() Type {
	return BoolType
}

func (b *BoolField) String() string {
	return strconv.FormatBool(b.Value)
}

func (b *BoolField) Equals(other Field) bool {
	o, ok := other.(*BoolField)
	if !ok {
		return false
	}
	return b.Value == o.Value
}

func (b *BoolField) Hash() (primitives.HashCode, error) {
	return fnvHash([]byte{b.byteValue()}), nil
}

func (b *BoolField) byteValue() byte {
	if b.Value {
		return 1
	}
	return 0
}
