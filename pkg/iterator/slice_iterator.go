// Package iterator provides cursor-style iteration over materialized rows.
package iterator

import "fmt"

// SliceIterator provides a generic iterator over a slice of any type T.
// It wraps a slice with a read position and can be rewound, which is what the
// inner side of a nested-loop join needs.
//
// Not thread-safe: use a separate iterator per goroutine.
//
//	it := NewSliceIterator(rows)
//	for it.HasNext() {
//	    row, _ := it.Next()
//	    process(row)
//	}
type SliceIterator[T any] struct {
	data         []T
	currentIndex int
}

// NewSliceIterator creates a new iterator over the given slice.
func NewSliceIterator[T any](data []T) *SliceIterator[T] {
	return &SliceIterator[T]{data: data}
}

// HasNext reports whether at least one more element can be consumed.
func (it *SliceIterator[T]) HasNext() bool {
	return it.currentIndex < len(it.data)
}

// Next returns the next element and advances the position.
func (it *SliceIterator[T]) Next() (T, error) {
	var zero T

	if it.currentIndex >= len(it.data) {
		return zero, fmt.Errorf("no more elements in slice iterator")
	}

	element := it.data[it.currentIndex]
	it.currentIndex++
	return element, nil
}

// Rewind resets the position to the beginning of the slice.
func (it *SliceIterator[T]) Rewind() {
	it.currentIndex = 0
}

// Len returns the total number of elements in the slice.
func (it *SliceIterator[T]) Len() int {
	return len(it.data)
}

// Remaining returns the number of elements left to iterate.
func (it *SliceIterator[T]) Remaining() int {
	return len(it.data) - it.currentIndex
}
