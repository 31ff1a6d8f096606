// Package tuple holds the row and schema types shared by the store and the
// relational operators.
package tuple

import (
	"fmt"
	"strings"

	"relstore/pkg/keys"
	"relstore/pkg/primitives"
	"relstore/pkg/types"
)

// Tuple is an immutable row of field values. Its length is fixed at creation
// and matches the arity of the schema it was inserted under.
type Tuple struct {
	fields []types.Field
}

// New creates a tuple holding a copy of fields.
func New(fields ...types.Field) *Tuple {
	f := make([]types.Field, len(fields))
	copy(f, fields)
	return &Tuple{fields: f}
}

// Len returns the number of fields.
func (t *Tuple) Len() int {
	return len(t.fields)
}

// GetField returns the value of the ith field
func (t *Tuple) GetField(i int) (types.Field, error) {
	if i < 0 || i >= len(t.fields) {
		return nil, fmt.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}
	return t.fields[i], nil
}

// Fields returns a copy of the field values.
func (t *Tuple) Fields() []types.Field {
	f := make([]types.Field, len(t.fields))
	copy(f, t.fields)
	return f
}

// Project builds a new tuple from the fields at cols, in that order.
func (t *Tuple) Project(cols []int) (*Tuple, error) {
	f := make([]types.Field, len(cols))
	for i, c := range cols {
		v, err := t.GetField(c)
		if err != nil {
			return nil, err
		}
		f[i] = v
	}
	return &Tuple{fields: f}, nil
}

// Key builds the composite key formed by the fields at cols.
func (t *Tuple) Key(cols []int) (keys.Key, error) {
	f := make([]types.Field, len(cols))
	for i, c := range cols {
		v, err := t.GetField(c)
		if err != nil {
			return keys.Key{}, err
		}
		f[i] = v
	}
	return keys.New(f...), nil
}

// Combine concatenates two tuples, as a join does with a matching pair.
func Combine(t1, t2 *Tuple) *Tuple {
	f := make([]types.Field, 0, len(t1.fields)+len(t2.fields))
	f = append(f, t1.fields...)
	f = append(f, t2.fields...)
	return &Tuple{fields: f}
}

// Equals reports whether both tuples hold equal values in every position.
func (t *Tuple) Equals(other *Tuple) bool {
	if len(t.fields) != len(other.fields) {
		return false
	}
	for i, f := range t.fields {
		if !f.Equals(other.fields[i]) {
			return false
		}
	}
	return true
}

// Hash combines the field hashes. Tuples that are Equal hash the same.
func (t *Tuple) Hash() primitives.HashCode {
	var hash primitives.HashCode
	for _, f := range t.fields {
		fh, _ := f.Hash()
		hash = hash*31 + fh
	}
	return hash
}

// String returns a string representation of this tuple
// Format: field1\tfield2\tfield3\t...\tfieldN
func (t *Tuple) String() string {
	parts := make([]string, len(t.fields))
	for i, f := range t.fields {
		if f == nil {
			parts[i] = "null"
			continue
		}
		parts[i] = f.String()
	}
	return strings.Join(parts, "\t")
}
