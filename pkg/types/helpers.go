package types

import (
	"encoding/binary"
	"hash/fnv"
	"io"

	"relstore/pkg/primitives"
)

// fnvHash computes an FNV-1a hash of the given byte slice.
func fnvHash(data []byte) primitives.HashCode {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return primitives.HashCode(h.Sum64())
}

// serializeUint32 writes a uint32 value to the writer in big-endian byte order.
func serializeUint32(w io.Writer, v uint32) error {
	_, err := w.Write(toBytes32(v))
	return err
}

// serializeUint64 writes a uint64 value to the writer in big-endian byte order.
func serializeUint64(w io.Writer, v uint64) error {
	_, err := w.Write(toBytes64(v))
	return err
}

// toBytes32 converts a uint32 value to a 4-byte big-endian slice.
func toBytes32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// toBytes64 converts a uint64 value to an 8-byte big-endian slice.
func toBytes64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// typeOf reports the domain of f, tolerating nil.
func typeOf(f Field) any {
	if f == nil {
		return "nil"
	}
	return f.Type()
}
