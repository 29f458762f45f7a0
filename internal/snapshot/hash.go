package snapshot

import (
	"encoding/binary"
	"math"

	"github.com/nerdcore/reflexsub/pkg/codec"
)

const (
	tagBranchName = 1
	tagCapturedAt = 2
	tagEvents     = 3
	tagVectors    = 4
)

// CanonicalBytes returns the deterministic byte encoding of a snapshot
// used to compute its Hash. The Hash field itself is never part of the
// encoding.
func CanonicalBytes(s BranchSnapshot) []byte {
	enc := codec.NewEncoder(codec.Version1)
	enc.StringField(tagBranchName, s.BranchName)
	enc.TimeField(tagCapturedAt, s.CapturedAt)

	eventBytes := make([][]byte, len(s.Events))
	for i, e := range s.Events {
		eventBytes[i] = e.Payload
	}
	enc.SequenceField(tagEvents, eventBytes)

	vectorBytes := make([][]byte, len(s.Vectors))
	for i, vec := range s.Vectors {
		buf := make([]byte, 8*len(vec))
		for j, f := range vec {
			binary.BigEndian.PutUint64(buf[j*8:], math.Float64bits(f))
		}
		vectorBytes[i] = buf
	}
	enc.SequenceField(tagVectors, vectorBytes)

	return enc.Bytes()
}

// Hash computes the snapshot's content hash over CanonicalBytes.
func Hash(s BranchSnapshot) string {
	return codec.ComputeHash(CanonicalBytes(s))
}

// Verify reports whether s.Hash matches its recomputed content hash.
func Verify(s BranchSnapshot) bool {
	return codec.VerifyHash(CanonicalBytes(s), s.Hash)
}
