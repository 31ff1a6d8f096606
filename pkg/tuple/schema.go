package tuple

import (
	"slices"
	"strings"

	"relstore/pkg/dberror"
	"relstore/pkg/types"
)

// Schema describes the shape of a table: ordered attribute names, the domain
// of each attribute, and the ordered subset of names forming the primary key.
type Schema struct {
	attrs   []string
	domains []types.Type
	key     []string
	keyCols []int
	columns map[string]int
}

// NewSchema validates and builds a schema.
//
// Returns a schema error when attrs is empty, when attrs and domains differ in
// length, when a name is blank or repeated, or when the key is empty or names
// an unknown attribute.
func NewSchema(attrs []string, domains []types.Type, key []string) (*Schema, error) {
	if len(attrs) < 1 {
		return nil, dberror.Schemaf("must provide at least one attribute")
	}
	if len(attrs) != len(domains) {
		return nil, dberror.Schemaf("attribute names length (%d) must match domains length (%d)",
			len(attrs), len(domains))
	}

	columns := make(map[string]int, len(attrs))
	for i, a := range attrs {
		if a == "" {
			return nil, dberror.Schemaf("attribute %d has an empty name", i)
		}
		if _, dup := columns[a]; dup {
			return nil, dberror.Schemaf("duplicate attribute %s", a)
		}
		if !domains[i].Valid() {
			return nil, dberror.Schemaf("attribute %s has unknown domain %d", a, domains[i])
		}
		columns[a] = i
	}

	if len(key) < 1 {
		return nil, dberror.Schemaf("key must name at least one attribute")
	}
	keyCols := make([]int, len(key))
	seen := make(map[string]bool, len(key))
	for i, k := range key {
		c, ok := columns[k]
		if !ok {
			return nil, dberror.Schemaf("key attribute %s is not an attribute", k)
		}
		if seen[k] {
			return nil, dberror.Schemaf("duplicate key attribute %s", k)
		}
		seen[k] = true
		keyCols[i] = c
	}

	return &Schema{
		attrs:   slices.Clone(attrs),
		domains: slices.Clone(domains),
		key:     slices.Clone(key),
		keyCols: keyCols,
		columns: columns,
	}, nil
}

// Arity returns the number of attributes.
func (s *Schema) Arity() int {
	return len(s.attrs)
}

// Attributes returns a copy of the attribute names.
func (s *Schema) Attributes() []string {
	return slices.Clone(s.attrs)
}

// Types returns a copy of the attribute domains.
func (s *Schema) Types() []types.Type {
	return slices.Clone(s.domains)
}

// Key returns a copy of the key attribute names.
func (s *Schema) Key() []string {
	return slices.Clone(s.key)
}

// KeyColumns returns the positions of the key attributes in key order.
func (s *Schema) KeyColumns() []int {
	return slices.Clone(s.keyCols)
}

// HasAttribute reports whether name is an attribute of the schema.
func (s *Schema) HasAttribute(name string) bool {
	_, ok := s.columns[name]
	return ok
}

// ColumnIndex returns the position of the named attribute.
func (s *Schema) ColumnIndex(name string) (int, error) {
	c, ok := s.columns[name]
	if !ok {
		return -1, dberror.Schemaf("column %s not found", name)
	}
	return c, nil
}

// Columns resolves names to positions, failing on the first unknown name.
func (s *Schema) Columns(names []string) ([]int, error) {
	cols := make([]int, len(names))
	for i, n := range names {
		c, err := s.ColumnIndex(n)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return cols, nil
}

// TypeAt returns the domain at position i.
func (s *Schema) TypeAt(i int) types.Type {
	return s.domains[i]
}

// Compatible reports whether two schemas have the same arity and the same
// domain at every position. Attribute names are not compared.
func (s *Schema) Compatible(other *Schema) bool {
	return slices.Equal(s.domains, other.domains)
}

// String renders the schema as "(attr:TYPE, ...) key(k1, k2)".
func (s *Schema) String() string {
	parts := make([]string, len(s.attrs))
	for i, a := range s.attrs {
		parts[i] = a + ":" + s.domains[i].String()
	}
	return "(" + strings.Join(parts, ", ") + ") key(" + strings.Join(s.key, ", ") + ")"
}
