package types

import (
	"io"

	"relstore/pkg/primitives"
)

// Field is a single comparable value of a tuple.
//
// Equals and Hash are strict about the domain: an IntField never equals a
// FloatField. Cmp and Compare follow the natural order and accept mixed
// numeric domains; any other mix is a type mismatch.
type Field interface {
	Serialize(w io.Writer) error

	Compare(op primitives.Predicate, other Field) (bool, error)

	Cmp(other Field) (int, error)

	Type() Type

	String() string

	Equals(other Field) bool

	Hash() (primitives.HashCode, error)
}

// Compare evaluates a op b for any two fields.
func Compare(a Field, op primitives.Predicate, b Field) (bool, error) {
	c, err := a.Cmp(b)
	if err != nil {
		return false, err
	}
	return op.Holds(c), nil
}
