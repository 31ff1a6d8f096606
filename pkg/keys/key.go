// Package keys provides the composite key used to address tuples in an index.
package keys

import (
	"bytes"
	"strings"

	"github.com/dchest/siphash"

	"relstore/pkg/dberror"
	"relstore/pkg/types"
)

// SipHash key halves. Fixed so that hashes are stable across processes.
const (
	k0 = 0x736f6d6570736575
	k1 = 0x646f72616e646f6d
)

// Key is an immutable, ordered composite of field values.
type Key struct {
	fields []types.Field
	hash   uint64
}

// New builds a key from fields in order.
func New(fields ...types.Field) Key {
	cp := make([]types.Field, len(fields))
	copy(cp, fields)
	return Key{fields: cp, hash: hashFields(cp)}
}

// FromValues builds a key from Go values, e.g. FromValues("Star_Wars", 1977).
func FromValues(values ...any) (Key, error) {
	fields := make([]types.Field, len(values))
	for i, v := range values {
		f, err := types.FromValue(v)
		if err != nil {
			return Key{}, dberror.TypeMismatchf("key component %d: %v", i, err)
		}
		fields[i] = f
	}
	return Key{fields: fields, hash: hashFields(fields)}, nil
}

// Len returns the number of components.
func (k Key) Len() int {
	return len(k.fields)
}

// At returns the i-th component.
func (k Key) At(i int) types.Field {
	return k.fields[i]
}

// Fields returns a copy of the components.
func (k Key) Fields() []types.Field {
	cp := make([]types.Field, len(k.fields))
	copy(cp, k.fields)
	return cp
}

// Hash returns the SipHash-2-4 of the key's components.
func (k Key) Hash() uint64 {
	return k.hash
}

// Equals reports whether both keys have the same length and equal components.
func (k Key) Equals(other Key) bool {
	if len(k.fields) != len(other.fields) || k.hash != other.hash {
		return false
	}
	for i, f := range k.fields {
		if !f.Equals(other.fields[i]) {
			return false
		}
	}
	return true
}

// Compare orders keys lexicographically by component. A shorter key that is a
// prefix of a longer one orders first.
func (k Key) Compare(other Key) (int, error) {
	n := min(len(k.fields), len(other.fields))
	for i := range n {
		c, err := k.fields[i].Cmp(other.fields[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	return len(k.fields) - len(other.fields), nil
}

func (k Key) String() string {
	parts := make([]string, len(k.fields))
	for i, f := range k.fields {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// hashFields feeds each component's domain tag and binary form into SipHash.
func hashFields(fields []types.Field) uint64 {
	var buf bytes.Buffer
	for _, f := range fields {
		buf.WriteByte(byte(f.Type()))
		_ = f.Serialize(&buf)
	}
	return siphash.Hash(k0, k1, buf.Bytes())
}
