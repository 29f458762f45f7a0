package snapshot

import (
	"time"
)

// EmbedFunc derives a feature vector from an event's payload. A nil
// EmbedFunc skips vector capture entirely; Capture never fails because
// embedding failed — a failing embed is simply skipped for that event.
type EmbedFunc func(payload []byte) ([]float64, error)

// Capture takes a point-in-time picture of branch: a short read lock
// copies the current events, the lock is released, then the snapshot
// is encoded and hashed outside the lock so submission to the branch
// is never blocked for the duration of hashing.
func Capture(branch *BranchLog, now time.Time, embed EmbedFunc) BranchSnapshot {
	events := branch.snapshotEvents()

	var vectors [][]float64
	if embed != nil {
		vectors = make([][]float64, 0, len(events))
		for _, e := range events {
			v, err := embed(e.Payload)
			if err != nil {
				continue
			}
			vectors = append(vectors, v)
		}
	}

	snap := BranchSnapshot{
		BranchName: branch.Name(),
		CapturedAt: now,
		Events:     events,
		Vectors:    vectors,
	}
	snap.Hash = Hash(snap)
	return snap
}
