package epoch

import (
	"sort"
	"time"

	"github.com/nerdcore/reflexsub/internal/snapshot"
	"github.com/nerdcore/reflexsub/pkg/codec"
)

const (
	tagNumber    = 1
	tagCreatedAt = 2
	tagBranches  = 3
	tagMetadata  = 4
)

// canonicalBytes returns the deterministic encoding of an epoch used
// to compute its content-hash ID. Branches are written sorted by name
// so the encoding never depends on capture order.
func canonicalBytes(number int, createdAt time.Time, branches map[string]snapshot.BranchSnapshot, metadata map[string]string) []byte {
	enc := codec.NewEncoder(codec.Version1)
	enc.Int64Field(tagNumber, int64(number))
	enc.TimeField(tagCreatedAt, createdAt)

	names := make([]string, 0, len(branches))
	for name := range branches {
		names = append(names, name)
	}
	sort.Strings(names)

	branchItems := make([][]byte, len(names))
	for i, name := range names {
		sub := codec.NewEncoder(codec.Version1)
		sub.StringField(1, name)
		sub.StringField(2, branches[name].Hash)
		branchItems[i] = sub.Bytes()
	}
	enc.SequenceField(tagBranches, branchItems)

	enc.SortedMapField(tagMetadata, metadata)
	return enc.Bytes()
}

func computeID(number int, createdAt time.Time, branches map[string]snapshot.BranchSnapshot, metadata map[string]string) string {
	return codec.ComputeHash(canonicalBytes(number, createdAt, branches, metadata))
}
