package primitives

// HashCode represents a hash value (e.g., for keys, tuples).
// It is typically computed for fast comparisons or lookups.
type HashCode uint64

// NoBucket marks the end of a bucket chain.
const NoBucket = -1
