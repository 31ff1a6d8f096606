package relation

import (
	"fmt"
	"slices"

	"relstore/pkg/dberror"
	"relstore/pkg/iterator"
	"relstore/pkg/tuple"
	"relstore/pkg/types"
)

// matchFunc decides whether a left and a right row join.
type matchFunc func(left, right *tuple.Tuple) (bool, error)

// nestedLoop compares every left row with every right row, rewinding the
// inner cursor for each outer row, and emits the matching pairs in
// left-major order.
func nestedLoop(left []*tuple.Tuple, inner *iterator.SliceIterator[*tuple.Tuple], match matchFunc, emit func(l, r *tuple.Tuple)) error {
	for _, l := range left {
		inner.Rewind()
		for inner.HasNext() {
			r, err := inner.Next()
			if err != nil {
				return err
			}
			ok, err := match(l, r)
			if err != nil {
				return err
			}
			if ok {
				emit(l, r)
			}
		}
	}
	return nil
}

// equiMatch joins rows whose fields at cols1 and cols2 are pairwise equal
// under the natural order. With no columns every pair matches.
func equiMatch(cols1, cols2 []int) matchFunc {
	return func(l, r *tuple.Tuple) (bool, error) {
		for i := range cols1 {
			a, err := l.GetField(cols1[i])
			if err != nil {
				return false, err
			}
			b, err := r.GetField(cols2[i])
			if err != nil {
				return false, err
			}
			c, err := a.Cmp(b)
			if err != nil {
				return false, err
			}
			if c != 0 {
				return false, nil
			}
		}
		return true, nil
	}
}

// equiColumns resolves the two attribute lists of an equi-join and checks
// that paired attributes have comparable domains.
func (t *Table) equiColumns(op string, attrs1, attrs2 []string, other *Table) ([]int, []int, error) {
	if len(attrs1) != len(attrs2) {
		return nil, nil, dberror.Schemaf("join attribute lists differ in length (%d vs %d)",
			len(attrs1), len(attrs2)).WithOp(op, t.name)
	}
	cols1, err := t.schema.Columns(attrs1)
	if err != nil {
		return nil, nil, opError(err, op, t.name)
	}
	cols2, err := other.schema.Columns(attrs2)
	if err != nil {
		return nil, nil, opError(err, op, other.name)
	}
	for i := range cols1 {
		d1, d2 := t.schema.TypeAt(cols1[i]), other.schema.TypeAt(cols2[i])
		if !types.Comparable(d1, d2) {
			return nil, nil, dberror.TypeMismatchf("cannot join %s (%s) with %s (%s)",
				attrs1[i], d1, attrs2[i], d2).WithOp(op, t.name)
		}
	}
	return cols1, cols2, nil
}

// joinSchema builds the result schema of t joined with the columns rightCols
// of other. Right attribute names already in use get "2" appended until they
// are unique. The key is the key of t.
func (t *Table) joinSchema(other *Table, rightCols []int) (*tuple.Schema, error) {
	attrs := t.schema.Attributes()
	domains := t.schema.Types()

	used := make(map[string]bool, len(attrs)+len(rightCols))
	for _, a := range attrs {
		used[a] = true
	}

	otherAttrs := other.schema.Attributes()
	for _, c := range rightCols {
		name := otherAttrs[c]
		for used[name] {
			name += "2"
		}
		used[name] = true
		attrs = append(attrs, name)
		domains = append(domains, other.schema.TypeAt(c))
	}
	return tuple.NewSchema(attrs, domains, t.schema.Key())
}

func allColumns(s *tuple.Schema) []int {
	cols := make([]int, s.Arity())
	for i := range cols {
		cols[i] = i
	}
	return cols
}

// Join is the nested-loop equi-join of t and other on attrs1[i] == attrs2[i].
// The result has every attribute of t followed by every attribute of other.
//
//	movie.Join([]string{"studioName"}, []string{"name"}, studio)
func (t *Table) Join(attrs1, attrs2 []string, other *Table) (*Table, error) {
	cols1, cols2, err := t.equiColumns("Join", attrs1, attrs2, other)
	if err != nil {
		return nil, err
	}
	schema, err := t.joinSchema(other, allColumns(other.schema))
	if err != nil {
		return nil, opError(err, "Join", t.name)
	}

	var rows []*tuple.Tuple
	inner := other.cursor()
	err = nestedLoop(t.Tuples(), inner, equiMatch(cols1, cols2), func(l, r *tuple.Tuple) {
		rows = append(rows, tuple.Combine(l, r))
	})
	if err != nil {
		return nil, opError(err, "Join", t.name)
	}

	out := t.derive(schema, rows)
	t.trace("join", out, "attrs1", attrs1, "attrs2", attrs2, "other", other.name)
	return out, nil
}

// ThetaJoin joins the rows of t and other for which cond holds between an
// attribute of t and an attribute of other.
func (t *Table) ThetaJoin(cond ThetaCondition, other *Table) (*Table, error) {
	col1, err := t.schema.ColumnIndex(cond.Left)
	if err != nil {
		return nil, opError(err, "ThetaJoin", t.name)
	}
	col2, err := other.schema.ColumnIndex(cond.Right)
	if err != nil {
		return nil, opError(err, "ThetaJoin", other.name)
	}
	if d1, d2 := t.schema.TypeAt(col1), other.schema.TypeAt(col2); !types.Comparable(d1, d2) {
		return nil, dberror.TypeMismatchf("cannot compare %s (%s) with %s (%s)",
			cond.Left, d1, cond.Right, d2).WithOp("ThetaJoin", t.name)
	}

	schema, err := t.joinSchema(other, allColumns(other.schema))
	if err != nil {
		return nil, opError(err, "ThetaJoin", t.name)
	}

	match := func(l, r *tuple.Tuple) (bool, error) {
		a, err := l.GetField(col1)
		if err != nil {
			return false, err
		}
		b, err := r.GetField(col2)
		if err != nil {
			return false, err
		}
		return types.Compare(a, cond.Op, b)
	}

	var rows []*tuple.Tuple
	inner := other.cursor()
	err = nestedLoop(t.Tuples(), inner, match, func(l, r *tuple.Tuple) {
		rows = append(rows, tuple.Combine(l, r))
	})
	if err != nil {
		return nil, opError(err, "ThetaJoin", t.name)
	}

	out := t.derive(schema, rows)
	t.trace("join", out, "condition", cond.String(), "other", other.name)
	return out, nil
}

// ThetaJoinString parses cond with ParseThetaCondition and runs ThetaJoin.
//
//	movie.ThetaJoinString("year < year", cinema)
func (t *Table) ThetaJoinString(cond string, other *Table) (*Table, error) {
	c, err := ParseThetaCondition(cond)
	if err != nil {
		return nil, opError(err, "ThetaJoin", t.name)
	}
	return t.ThetaJoin(c, other)
}

// IndexedJoin computes the same result as Join, but looks each left row up
// in the index of other instead of scanning it. The index is used when it
// exists, holds one row per key, is keyed on exactly attrs2 (in any order) and
// the paired domains are identical. Otherwise the nested loop runs.
func (t *Table) IndexedJoin(attrs1, attrs2 []string, other *Table) (*Table, error) {
	cols1, _, err := t.equiColumns("IndexedJoin", attrs1, attrs2, other)
	if err != nil {
		return nil, err
	}
	schema, err := t.joinSchema(other, allColumns(other.schema))
	if err != nil {
		return nil, opError(err, "IndexedJoin", t.name)
	}

	left := t.Tuples()
	var rows []*tuple.Tuple

	other.mu.RLock()
	probe, reason := other.probeColumns(cols1, attrs2, t.schema)
	if reason == "" {
		for _, l := range left {
			key, kerr := l.Key(probe)
			if kerr != nil {
				err = kerr
				break
			}
			if r, ok := other.index.Get(key); ok {
				rows = append(rows, tuple.Combine(l, r))
			}
		}
	}
	other.mu.RUnlock()

	if err != nil {
		return nil, opError(err, "IndexedJoin", t.name)
	}
	if reason != "" {
		t.env.logger(t.name, "join").Info("indexed join falling back to nested loop",
			"other", other.name, "reason", reason)
		return t.Join(attrs1, attrs2, other)
	}

	out := t.derive(schema, rows)
	t.trace("join", out, "attrs1", attrs1, "attrs2", attrs2, "other", other.name, "indexed", true)
	return out, nil
}

// probeColumns maps the key of t's index onto the probing table: the result
// lists, in key order, the left columns paired with each key attribute.
// A non-empty reason means the index cannot answer the join. Callers hold
// t.mu for reading.
func (t *Table) probeColumns(cols1 []int, attrs2 []string, left *tuple.Schema) ([]int, string) {
	if t.index == nil {
		return nil, "no index"
	}
	if t.dupKeys {
		return nil, "index holds duplicate keys"
	}

	key := t.schema.Key()
	if len(key) != len(attrs2) {
		return nil, fmt.Sprintf("index key %v does not match %v", key, attrs2)
	}

	keyCols := t.schema.KeyColumns()
	probe := make([]int, len(key))
	for i, k := range key {
		j := slices.Index(attrs2, k)
		if j < 0 {
			return nil, fmt.Sprintf("index key %v does not match %v", key, attrs2)
		}
		if left.TypeAt(cols1[j]) != t.schema.TypeAt(keyCols[i]) {
			return nil, fmt.Sprintf("domain of %s differs from the index key", k)
		}
		probe[i] = cols1[j]
	}
	return probe, ""
}

// NaturalJoin equi-joins t and other on the attributes they share and keeps
// one copy of each shared attribute. Shared attributes are taken in the order
// of t. Without shared attributes the result is the Cartesian product.
func (t *Table) NaturalJoin(other *Table) (*Table, error) {
	var common []string
	for _, a := range t.schema.Attributes() {
		if other.schema.HasAttribute(a) {
			common = append(common, a)
		}
	}

	cols1, cols2, err := t.equiColumns("NaturalJoin", common, common, other)
	if err != nil {
		return nil, err
	}

	var rightCols []int
	for c := range other.schema.Arity() {
		if !slices.Contains(cols2, c) {
			rightCols = append(rightCols, c)
		}
	}
	schema, err := t.joinSchema(other, rightCols)
	if err != nil {
		return nil, opError(err, "NaturalJoin", t.name)
	}

	var rows []*tuple.Tuple
	var perr error
	inner := other.cursor()
	err = nestedLoop(t.Tuples(), inner, equiMatch(cols1, cols2), func(l, r *tuple.Tuple) {
		rest, err := r.Project(rightCols)
		if err != nil {
			perr = err
			return
		}
		rows = append(rows, tuple.Combine(l, rest))
	})
	if err == nil {
		err = perr
	}
	if err != nil {
		return nil, opError(err, "NaturalJoin", t.name)
	}

	out := t.derive(schema, rows)
	t.trace("join", out, "natural", true, "on", common, "other", other.name)
	return out, nil
}
