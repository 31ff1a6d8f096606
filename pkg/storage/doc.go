// Package storage is the root of the in-memory storage layer.
//
// # Sub-packages
//
//   - [relstore/pkg/storage/heap]          – Tuple store: an append-only
//     sequence of rows kept in fixed-capacity pages.
//   - [relstore/pkg/storage/index/linhash] – Linear-hashing index mapping
//     composite keys to rows, grown one bucket split at a time.
//   - [relstore/pkg/storage/snapshot]      – Whole-table snapshots written as
//     msgpack files, replaced atomically.
package storage
