// Package heap implements the tuple store: an ordered, append-only sequence
// of fixed-arity tuples kept in memory pages.
package heap

import (
	"fmt"
	"iter"

	"relstore/pkg/dberror"
	"relstore/pkg/iterator"
	"relstore/pkg/tuple"
)

// Store keeps tuples in insertion order. It performs no deduplication.
//
// Store is not safe for concurrent mutation; the owning table serialises
// Append against readers.
type Store struct {
	arity int
	pages []*HeapPage
	n     int
}

// NewStore creates an empty store for tuples of the given arity.
func NewStore(arity int) *Store {
	return &Store{arity: arity}
}

// Arity returns the tuple length every row must have.
func (s *Store) Arity() int {
	return s.arity
}

// Append adds t at the end of the store.
func (s *Store) Append(t *tuple.Tuple) error {
	if t == nil {
		return fmt.Errorf("cannot append nil tuple")
	}
	if t.Len() != s.arity {
		return dberror.Schemaf("tuple has %d fields, store arity is %d", t.Len(), s.arity)
	}

	if len(s.pages) == 0 || s.pages[len(s.pages)-1].full() {
		s.pages = append(s.pages, newHeapPage())
	}
	s.pages[len(s.pages)-1].add(t)
	s.n++
	return nil
}

// Len returns the number of stored tuples.
func (s *Store) Len() int {
	return s.n
}

// NumPages returns the number of pages in use.
func (s *Store) NumPages() int {
	return len(s.pages)
}

// At returns the ith tuple in insertion order.
func (s *Store) At(i int) (*tuple.Tuple, error) {
	if i < 0 || i >= s.n {
		return nil, fmt.Errorf("tuple index %d out of bounds [0, %d)", i, s.n)
	}
	return s.pages[i/PageRows].tuples[i%PageRows], nil
}

// All yields the tuples in insertion order. The store must not be appended to
// while iterating.
func (s *Store) All() iter.Seq[*tuple.Tuple] {
	return func(yield func(*tuple.Tuple) bool) {
		for _, p := range s.pages {
			for _, t := range p.tuples {
				if !yield(t) {
					return
				}
			}
		}
	}
}

// Snapshot returns the current rows as a new slice. Tuples are immutable, so
// the slice stays valid after later appends.
func (s *Store) Snapshot() []*tuple.Tuple {
	rows := make([]*tuple.Tuple, 0, s.n)
	for _, p := range s.pages {
		rows = append(rows, p.tuples...)
	}
	return rows
}

// Iterator returns a rewindable cursor over a snapshot of the rows.
func (s *Store) Iterator() *iterator.SliceIterator[*tuple.Tuple] {
	return iterator.NewSliceIterator(s.Snapshot())
}
