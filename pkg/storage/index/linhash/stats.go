package linhash

import "relstore/pkg/primitives"

// Stats reports index bookkeeping, not memory use.
type Stats struct {
	Keys            int
	Chains          int
	Buckets         int
	OverflowBuckets int
	MaxChainLength  int
	Mod1            int
	Mod2            int
	ISplit          int
	Splits          int
	LoadFactor      float64
	Lookups         uint64
	Probes          uint64
}

// MeanProbes returns the average number of buckets visited per Get.
func (s Stats) MeanProbes() float64 {
	if s.Lookups == 0 {
		return 0
	}
	return float64(s.Probes) / float64(s.Lookups)
}

// Stats returns a snapshot of the index counters.
func (ix *Index[V]) Stats() Stats {
	longest := 0
	for _, head := range ix.home {
		n := 0
		for b := head; b != primitives.NoBucket; b = ix.arena[b].next {
			n++
		}
		longest = max(longest, n)
	}

	return Stats{
		Keys:            ix.live,
		Chains:          len(ix.home),
		Buckets:         len(ix.arena) - len(ix.free),
		OverflowBuckets: ix.overflow,
		MaxChainLength:  longest,
		Mod1:            ix.mod1,
		Mod2:            ix.mod2,
		ISplit:          ix.isplit,
		Splits:          ix.splits,
		LoadFactor:      ix.LoadFactor(),
		Lookups:         ix.lookups.Load(),
		Probes:          ix.probes.Load(),
	}
}

// ResetCounters zeroes the lookup and probe counters.
func (ix *Index[V]) ResetCounters() {
	ix.lookups.Store(0)
	ix.probes.Store(0)
}
