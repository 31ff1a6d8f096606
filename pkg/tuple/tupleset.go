package tuple

import (
	"slices"

	"relstore/pkg/primitives"
)

// TupleSet is a hash-based set of tuples compared by value.
// Hash collisions are handled by keeping the tuples of each hash and comparing
// them field by field.
type TupleSet struct {
	tuples map[primitives.HashCode][]*Tuple
	size   int
}

// NewTupleSet creates an empty set.
func NewTupleSet() *TupleSet {
	return &TupleSet{tuples: make(map[primitives.HashCode][]*Tuple)}
}

// Add inserts t and reports whether it was not already present.
func (ts *TupleSet) Add(t *Tuple) bool {
	hash := t.Hash()
	existing := ts.tuples[hash]
	if findTupleInList(t, existing) >= 0 {
		return false
	}
	ts.tuples[hash] = append(existing, t)
	ts.size++
	return true
}

// Contains reports whether a tuple equal to t is in the set.
func (ts *TupleSet) Contains(t *Tuple) bool {
	return findTupleInList(t, ts.tuples[t.Hash()]) >= 0
}

// Len returns the number of distinct tuples.
func (ts *TupleSet) Len() int {
	return ts.size
}

func findTupleInList(t *Tuple, list []*Tuple) int {
	return slices.IndexFunc(list, func(other *Tuple) bool {
		return t.Equals(other)
	})
}
