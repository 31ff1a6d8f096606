// Package linhash implements an in-memory hash index that grows by linear
// hashing: when the load factor passes a threshold, exactly one bucket chain is
// split, so growth is incremental instead of a full rehash.
//
// Addressing uses two moduli. A key's home chain is hash mod mod1; once that
// chain has been split in the current growth phase (its address is below
// isplit) the key lives at hash mod mod2 instead. When every chain of the phase
// has been split, mod1 doubles and the next phase starts.
//
// Buckets live in an arena and chain through arena indices, so chains are
// append-only and cannot form cycles.
package linhash

import (
	"iter"
	"log/slog"
	"sync/atomic"

	"relstore/pkg/keys"
	"relstore/pkg/logging"
	"relstore/pkg/primitives"
)

// Config controls bucket capacity and growth.
type Config struct {
	Slots          int     // key slots per bucket
	Threshold      float64 // load factor above which a split runs
	InitialBuckets int     // home chains at construction, the first mod1
}

// DefaultConfig returns 4 slots per bucket, a 0.75 threshold and 4 initial chains.
func DefaultConfig() Config {
	return Config{Slots: 4, Threshold: 0.75, InitialBuckets: 4}
}

func (c Config) normalize() Config {
	d := DefaultConfig()
	if c.Slots <= 0 {
		c.Slots = d.Slots
	}
	if c.Threshold <= 0 {
		c.Threshold = d.Threshold
	}
	if c.InitialBuckets <= 0 {
		c.InitialBuckets = d.InitialBuckets
	}
	return c
}

type entry[V any] struct {
	key   keys.Key
	value V
}

// bucket holds up to Slots entries in slots[:n]; next is the arena index of the
// overflow bucket or primitives.NoBucket.
type bucket[V any] struct {
	n     int
	slots []entry[V]
	next  int
}

// Index maps composite keys to values of type V.
//
// Put is not safe for concurrent use. Get may run concurrently with other Gets
// as long as no Put is in flight.
type Index[V any] struct {
	name string
	cfg  Config

	arena []bucket[V]
	free  []int // released overflow buckets, reused before growing the arena
	home  []int // arena index of the first bucket of each chain

	mod1, mod2 int
	isplit     int
	live       int
	overflow   int
	splits     int

	lookups atomic.Uint64
	probes  atomic.Uint64

	log *slog.Logger
}

// New creates an empty index with cfg.InitialBuckets home chains.
func New[V any](name string, cfg Config) *Index[V] {
	cfg = cfg.normalize()
	ix := &Index[V]{
		name: name,
		cfg:  cfg,
		mod1: cfg.InitialBuckets,
		mod2: 2 * cfg.InitialBuckets,
		home: make([]int, 0, cfg.InitialBuckets),
		log:  logging.WithIndex(name),
	}
	for range cfg.InitialBuckets {
		ix.home = append(ix.home, ix.newBucket(false))
	}
	return ix
}

// Name returns the name the index was created with.
func (ix *Index[V]) Name() string {
	return ix.name
}

// Put associates value with key and returns the previous value, if any.
// Inserting a new key may split one chain before the entry is placed.
func (ix *Index[V]) Put(key keys.Key, value V) (V, bool) {
	if b, s, ok := ix.find(ix.address(key), key, false); ok {
		prev := ix.arena[b].slots[s].value
		ix.arena[b].slots[s].value = value
		return prev, true
	}

	ix.live++
	if ix.LoadFactor() > ix.cfg.Threshold {
		ix.split()
	}
	ix.place(ix.address(key), entry[V]{key: key, value: value})

	var zero V
	return zero, false
}

// Get returns the value stored for key. It probes the low-modulus chain first
// and then the high-modulus chain when that address differs and exists.
func (ix *Index[V]) Get(key keys.Key) (V, bool) {
	ix.lookups.Add(1)

	h := key.Hash()
	h1 := int(h % uint64(ix.mod1))
	if b, s, ok := ix.find(h1, key, true); ok {
		return ix.arena[b].slots[s].value, true
	}

	h2 := int(h % uint64(ix.mod2))
	if h2 != h1 && h2 < len(ix.home) {
		if b, s, ok := ix.find(h2, key, true); ok {
			return ix.arena[b].slots[s].value, true
		}
	}

	var zero V
	return zero, false
}

// Contains reports whether key is present.
func (ix *Index[V]) Contains(key keys.Key) bool {
	_, ok := ix.Get(key)
	return ok
}

// Size returns the number of distinct keys stored.
func (ix *Index[V]) Size() int {
	return ix.live
}

// Capacity returns the slot capacity implied by the home chains,
// Slots * (mod1 + isplit).
func (ix *Index[V]) Capacity() int {
	return ix.cfg.Slots * (ix.mod1 + ix.isplit)
}

// LoadFactor returns Size / Capacity.
func (ix *Index[V]) LoadFactor() float64 {
	return float64(ix.live) / float64(ix.Capacity())
}

// All yields every entry chain by chain. The index must not be modified while
// iterating.
func (ix *Index[V]) All() iter.Seq2[keys.Key, V] {
	return func(yield func(keys.Key, V) bool) {
		for _, head := range ix.home {
			for b := head; b != primitives.NoBucket; b = ix.arena[b].next {
				bk := &ix.arena[b]
				for _, e := range bk.slots[:bk.n] {
					if !yield(e.key, e.value) {
						return
					}
				}
			}
		}
	}
}

// address is the chain a key belongs to under the current split state.
func (ix *Index[V]) address(key keys.Key) int {
	h := key.Hash()
	a := int(h % uint64(ix.mod1))
	if a < ix.isplit {
		a = int(h % uint64(ix.mod2))
	}
	return a
}

// find walks the chain at addr looking for key and returns the arena index of
// the bucket and the slot holding it.
func (ix *Index[V]) find(addr int, key keys.Key, counted bool) (int, int, bool) {
	for b := ix.home[addr]; b != primitives.NoBucket; b = ix.arena[b].next {
		if counted {
			ix.probes.Add(1)
		}
		bk := &ix.arena[b]
		for s := range bk.n {
			if bk.slots[s].key.Equals(key) {
				return b, s, true
			}
		}
	}
	return primitives.NoBucket, 0, false
}

// place appends e to the first bucket of chain addr with a free slot, linking a
// new overflow bucket when the chain is full.
func (ix *Index[V]) place(addr int, e entry[V]) {
	last := primitives.NoBucket
	for b := ix.home[addr]; b != primitives.NoBucket; b = ix.arena[b].next {
		if ix.arena[b].n < ix.cfg.Slots {
			ix.add(b, e)
			return
		}
		last = b
	}

	nb := ix.newBucket(true)
	ix.arena[last].next = nb
	ix.add(nb, e)
}

func (ix *Index[V]) add(b int, e entry[V]) {
	bk := &ix.arena[b]
	bk.slots[bk.n] = e
	bk.n++
}

// split appends chain mod1+isplit and moves into it the entries of chain isplit
// whose high-modulus address is the new chain.
func (ix *Index[V]) split() {
	from := ix.isplit
	to := ix.mod1 + ix.isplit
	ix.home = append(ix.home, ix.newBucket(false))

	var stay, move []entry[V]
	for b := ix.home[from]; b != primitives.NoBucket; b = ix.arena[b].next {
		bk := &ix.arena[b]
		for _, e := range bk.slots[:bk.n] {
			if int(e.key.Hash()%uint64(ix.mod2)) == to {
				move = append(move, e)
			} else {
				stay = append(stay, e)
			}
		}
	}

	ix.compact(from, stay)
	for _, e := range move {
		ix.place(to, e)
	}

	ix.isplit++
	ix.splits++
	if ix.isplit == ix.mod1 {
		ix.isplit = 0
		ix.mod1 = ix.mod2
		ix.mod2 = 2 * ix.mod1
	}

	ix.log.Debug("split",
		"from", from, "to", to, "moved", len(move), "kept", len(stay),
		"mod1", ix.mod1, "mod2", ix.mod2, "isplit", ix.isplit)
}

// compact rewrites chain addr to hold exactly entries, packed from the home
// bucket onward, and releases overflow buckets that end up empty.
func (ix *Index[V]) compact(addr int, entries []entry[V]) {
	cur := ix.home[addr]
	for {
		bk := &ix.arena[cur]
		n := copy(bk.slots, entries)
		clear(bk.slots[n:])
		bk.n = n
		entries = entries[n:]

		if len(entries) == 0 {
			tail := bk.next
			bk.next = primitives.NoBucket
			ix.release(tail)
			return
		}
		cur = bk.next
	}
}

// newBucket takes a bucket from the free list or grows the arena.
func (ix *Index[V]) newBucket(overflow bool) int {
	if overflow {
		ix.overflow++
	}
	if n := len(ix.free); n > 0 {
		b := ix.free[n-1]
		ix.free = ix.free[:n-1]
		return b
	}
	ix.arena = append(ix.arena, bucket[V]{
		slots: make([]entry[V], ix.cfg.Slots),
		next:  primitives.NoBucket,
	})
	return len(ix.arena) - 1
}

// release returns the overflow chain starting at b to the free list.
func (ix *Index[V]) release(b int) {
	for b != primitives.NoBucket {
		bk := &ix.arena[b]
		next := bk.next
		clear(bk.slots)
		bk.n = 0
		bk.next = primitives.NoBucket
		ix.free = append(ix.free, b)
		ix.overflow--
		b = next
	}
}
