package relation

import (
	"slices"

	"relstore/pkg/dberror"
	"relstore/pkg/keys"
	"relstore/pkg/tuple"
	"relstore/pkg/types"
)

// Project keeps the named attributes in the requested order and drops
// duplicate rows. The key carries over when every key attribute survives;
// otherwise the projected attributes form the key.
//
//	movie.Project("title", "year")
func (t *Table) Project(attrs ...string) (*Table, error) {
	cols, err := t.schema.Columns(attrs)
	if err != nil {
		return nil, opError(err, "Project", t.name)
	}

	domains := make([]types.Type, len(cols))
	for i, c := range cols {
		domains[i] = t.schema.TypeAt(c)
	}

	key := t.schema.Key()
	for _, k := range key {
		if !slices.Contains(attrs, k) {
			key = attrs
			break
		}
	}

	schema, err := tuple.NewSchema(attrs, domains, key)
	if err != nil {
		return nil, opError(err, "Project", t.name)
	}

	seen := tuple.NewTupleSet()
	var rows []*tuple.Tuple
	for _, r := range t.Tuples() {
		p, err := r.Project(cols)
		if err != nil {
			return nil, opError(dberror.Schemaf("%v", err), "Project", t.name)
		}
		if seen.Add(p) {
			rows = append(rows, p)
		}
	}

	out := t.derive(schema, rows)
	t.trace("project", out, "attrs", attrs)
	return out, nil
}

// Select keeps the rows for which pred holds.
//
//	movie.Select(func(r *tuple.Tuple) bool { ... })
func (t *Table) Select(pred func(*tuple.Tuple) bool) *Table {
	var rows []*tuple.Tuple
	for _, r := range t.Tuples() {
		if pred(r) {
			rows = append(rows, r)
		}
	}

	out := t.derive(t.schema, rows)
	t.trace("select", out)
	return out
}

// SelectWhere keeps the rows whose attribute satisfies cond under the
// natural order of its domain. A condition with a Literal is coerced with
// types.CoerceLiteral against the attribute's domain first.
//
// Returns a schema error for an unknown attribute and a type mismatch when the
// operand cannot be ordered against the attribute.
func (t *Table) SelectWhere(cond Condition) (*Table, error) {
	col, err := t.schema.ColumnIndex(cond.Attr)
	if err != nil {
		return nil, opError(err, "Select", t.name)
	}
	d := t.schema.TypeAt(col)
	operand := cond.Operand
	if cond.Literal != "" {
		operand = types.CoerceLiteral(d, cond.Literal)
	}
	if operand == nil {
		return nil, dberror.InvalidConditionf("%s has no operand", cond.Attr).WithOp("Select", t.name)
	}
	if !types.Comparable(d, operand.Type()) {
		return nil, dberror.TypeMismatchf("cannot compare %s (%s) with %s (%s)",
			cond.Attr, d, operand, operand.Type()).WithOp("Select", t.name)
	}

	var rows []*tuple.Tuple
	for _, r := range t.Tuples() {
		f, err := r.GetField(col)
		if err != nil {
			return nil, opError(dberror.Schemaf("%v", err), "Select", t.name)
		}
		ok, err := types.Compare(f, cond.Op, operand)
		if err != nil {
			return nil, opError(err, "Select", t.name)
		}
		if ok {
			rows = append(rows, r)
		}
	}

	out := t.derive(t.schema, rows)
	t.trace("select", out, "condition", cond.String())
	return out, nil
}

// SelectString parses cond with ParseCondition and runs SelectWhere.
//
//	movie.SelectString("year > 1977")
func (t *Table) SelectString(cond string) (*Table, error) {
	c, err := ParseCondition(cond)
	if err != nil {
		return nil, opError(err, "Select", t.name)
	}
	return t.SelectWhere(c)
}

// SelectKey returns the row whose full key equals key, found through the
// index. The result has at most one row; it is empty when the key is absent,
// when key is only a prefix, or when the table has no index.
func (t *Table) SelectKey(key keys.Key) *Table {
	var rows []*tuple.Tuple
	if t.index != nil {
		t.mu.RLock()
		if r, ok := t.index.Get(key); ok {
			rows = append(rows, r)
		}
		t.mu.RUnlock()
	}

	out := t.derive(t.schema, rows)
	t.trace("select", out, "key", key.String())
	return out
}
