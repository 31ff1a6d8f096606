package relation

import (
	"relstore/pkg/dberror"
	"relstore/pkg/tuple"
)

// validateCompatibility checks that both tables have the same arity and the
// same domain at each position.
func (t *Table) validateCompatibility(op string, other *Table) error {
	if t.schema.Arity() != other.schema.Arity() {
		return dberror.Incompatiblef("%s has %d attributes, %s has %d",
			t.name, t.schema.Arity(), other.name, other.schema.Arity()).WithOp(op, t.name)
	}
	if !t.schema.Compatible(other.schema) {
		return dberror.Incompatiblef("domains %v and %v differ",
			t.schema.Types(), other.schema.Types()).WithOp(op, t.name)
	}
	return nil
}

// Union returns the rows of t followed by the rows of other. Duplicates are
// kept.
func (t *Table) Union(other *Table) (*Table, error) {
	if err := t.validateCompatibility("Union", other); err != nil {
		return nil, err
	}

	left := t.Tuples()
	right := other.Tuples()
	rows := make([]*tuple.Tuple, 0, len(left)+len(right))
	rows = append(rows, left...)
	rows = append(rows, right...)

	out := t.derive(t.schema, rows)
	t.trace("union", out, "other", other.name)
	return out, nil
}

// Minus returns the rows of t whose value does not occur in other.
func (t *Table) Minus(other *Table) (*Table, error) {
	if err := t.validateCompatibility("Minus", other); err != nil {
		return nil, err
	}

	right := tuple.NewTupleSet()
	for _, r := range other.Tuples() {
		right.Add(r)
	}

	var rows []*tuple.Tuple
	for _, r := range t.Tuples() {
		if !right.Contains(r) {
			rows = append(rows, r)
		}
	}

	out := t.derive(t.schema, rows)
	t.trace("minus", out, "other", other.name)
	return out, nil
}
