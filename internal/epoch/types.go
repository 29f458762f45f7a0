// Package epoch implements the global epoch projector (spec component
// C4): it folds per-branch snapshots into numbered, content-hashed
// epochs, serializes epoch creation, aggregates metrics, and
// reconstructs deterministic replay paths over the reasoning graph.
package epoch

import (
	"time"

	"github.com/nerdcore/reflexsub/internal/snapshot"
)

// Epoch is a numbered, content-hashed bundle of one snapshot per
// participating branch. Numbering is dual: Number is the monotonic
// sequence position; ID is the content hash of the epoch's contents.
type Epoch struct {
	Number    int
	ID        string
	CreatedAt time.Time
	Branches  map[string]snapshot.BranchSnapshot
	Metadata  map[string]string
}

// Metrics aggregates totals across every epoch currently retained.
type Metrics struct {
	TotalEpochs            int
	TotalBranches          int
	TotalEvents            int
	AverageEventsPerBranch float64
	LastEpochTime          time.Time
}
