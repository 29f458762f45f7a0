// Package codec implements the canonical, deterministic byte encoding
// used to content-address reasoning nodes, edges, and branch snapshots.
//
// The encoding is a tagged, length-prefixed sequence of fields in a
// fixed order chosen by the caller. Sequences preserve insertion order;
// maps are always written as their keys sorted ascending so that two
// logically-equal maps always produce byte-identical output regardless
// of build/insertion order. Floating point fields are written as their
// IEEE-754 bit pattern, never as text, so encoding never depends on
// locale or formatting precision.
package codec

import (
	"encoding/binary"
	"math"
	"sort"
	"time"
)

// Version is the canonical-form version tag. Absence of a leading
// version byte on stored bytes is interpreted as version 1.
type Version byte

// Version1 is the only canonical-form version this package currently
// emits.
const Version1 Version = 1

// Encoder accumulates canonical-form bytes for one record (a node, an
// edge, or a snapshot). Call the Field helpers in the fixed order your
// record type defines, then take Bytes().
type Encoder struct {
	buf []byte
}

// NewEncoder starts a new canonical encoding tagged with version.
func NewEncoder(version Version) *Encoder {
	return &Encoder{buf: []byte{byte(version)}}
}

// Bytes returns the accumulated canonical encoding.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

func (e *Encoder) putUvarint(n uint64) {
	var tmp [binary.MaxVarintLen64]byte
	written := binary.PutUvarint(tmp[:], n)
	e.buf = append(e.buf, tmp[:written]...)
}

// Field writes a tagged, length-prefixed byte field.
func (e *Encoder) Field(tag byte, b []byte) *Encoder {
	e.buf = append(e.buf, tag)
	e.putUvarint(uint64(len(b)))
	e.buf = append(e.buf, b...)
	return e
}

// StringField writes a tagged UTF-8 string field.
func (e *Encoder) StringField(tag byte, s string) *Encoder {
	return e.Field(tag, []byte(s))
}

// Uint64Field writes a tagged fixed-width 8-byte big-endian integer.
func (e *Encoder) Uint64Field(tag byte, v uint64) *Encoder {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return e.Field(tag, b[:])
}

// Int64Field writes a tagged fixed-width 8-byte big-endian integer.
func (e *Encoder) Int64Field(tag byte, v int64) *Encoder {
	return e.Uint64Field(tag, uint64(v))
}

// Float64Field writes a tagged IEEE-754 bit pattern, never locale text.
func (e *Encoder) Float64Field(tag byte, v float64) *Encoder {
	return e.Uint64Field(tag, math.Float64bits(v))
}

// BoolField writes a tagged single byte, 1 for true, 0 for false.
func (e *Encoder) BoolField(tag byte, v bool) *Encoder {
	if v {
		return e.Field(tag, []byte{1})
	}
	return e.Field(tag, []byte{0})
}

// TimeField writes a tagged timestamp as UTC nanoseconds since the
// Unix epoch, a fixed-width integer rather than a formatted string.
func (e *Encoder) TimeField(tag byte, t time.Time) *Encoder {
	return e.Int64Field(tag, t.UTC().UnixNano())
}

// SequenceField writes a tagged, order-preserving sequence of byte
// strings: a count followed by each item length-prefixed in the order
// given. Used for parent/input id lists, where order is significant.
func (e *Encoder) SequenceField(tag byte, items [][]byte) *Encoder {
	e.buf = append(e.buf, tag)
	e.putUvarint(uint64(len(items)))
	for _, item := range items {
		e.putUvarint(uint64(len(item)))
		e.buf = append(e.buf, item...)
	}
	return e
}

// SortedMapField writes a tagged string-to-string map as its entries
// sorted by key ascending, so that the encoding is independent of
// iteration/insertion order.
func (e *Encoder) SortedMapField(tag byte, m map[string]string) *Encoder {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e.buf = append(e.buf, tag)
	e.putUvarint(uint64(len(keys)))
	for _, k := range keys {
		v := m[k]
		e.putUvarint(uint64(len(k)))
		e.buf = append(e.buf, k...)
		e.putUvarint(uint64(len(v)))
		e.buf = append(e.buf, v...)
	}
	return e
}
