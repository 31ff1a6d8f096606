package heap

import "relstore/pkg/tuple"

// PageRows is the number of tuples a page holds before the store opens a new one.
const PageRows = 256

// HeapPage is a fixed-capacity run of tuples. Pages fill in order and are never
// rewritten once full, so a reader holding a page slice sees stable rows.
type HeapPage struct {
	tuples []*tuple.Tuple
}

func newHeapPage() *HeapPage {
	return &HeapPage{tuples: make([]*tuple.Tuple, 0, PageRows)}
}

// full reports whether the page has no free slot.
func (p *HeapPage) full() bool {
	return len(p.tuples) == PageRows
}

func (p *HeapPage) add(t *tuple.Tuple) {
	p.tuples = append(p.tuples, t)
}
