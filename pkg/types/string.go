package types

import (
	"io"
	"strings"

	"relstore/pkg/dberror"
	"relstore/pkg/primitives"
)

// StringField represents a variable-length string field.
type StringField struct {
	Value string
}

// NewStringField creates a new StringField holding value.
func NewStringField(value string) *StringField {
	return &StringField{Value: value}
}

// Compare performs a comparison operation between this StringField and another
// Field using the specified predicate. Strings compare lexicographically.
func (s *StringField) Compare(op primitives.Predicate, other Field) (bool, error) {
	return Compare(s, op, other)
}

func (s *StringField) Cmp(other Field) (int, error) {
	o, ok := other.(*StringField)
	if !ok {
		return 0, dberror.TypeMismatchf("cannot compare %v with %v", s.Type(), typeOf(other))
	}
	return strings.Compare(s.Value, o.Value), nil
}

// Serialize writes the string as a 4-byte big-endian length followed by its bytes.
func (s *StringField) Serialize(w io.Writer) error {
	if err := serializeUint32(w, uint32(len(s.Value))); err != nil { // #nosec G115
		return err
	}
	_, err := io.WriteString(w, s.Value)
	return err
}

func (s *StringField) Type() Type {
	return StringType
}

func (s *StringField) String() string {
	return s.Value
}

func (s *StringField) Equals(other Field) bool {
	o, ok := other.(*StringField)
	if !ok {
		return false
	}
	return s.Value == o.Value
}

func (s *StringField) Hash() (primitives.HashCode, error) {
	return fnvHash([]byte(s.Value)), nil
}
