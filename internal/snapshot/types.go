// Package snapshot implements immutable branch snapshot capture and
// retention policy evaluation (spec components C3): an append-only
// per-branch event log, a hash-verified point-in-time picture of one
// branch, and pluggable ByAge/ByCount/Combined retention policies that
// only ever produce a plan — deletion is left to a collaborator.
package snapshot

import (
	"sync"
	"time"
)

// Event is one opaque append-only record in a branch's event log.
type Event struct {
	Payload []byte
}

// BranchSnapshot is an immutable picture of one named branch at an
// instant: its ordered events, optional embedding-like derived
// features, and a content hash over both.
type BranchSnapshot struct {
	BranchName string
	CapturedAt time.Time
	Events     []Event
	Vectors    [][]float64
	Hash       string
}

// BranchLog is an append-only, thread-safe event log for one branch.
// Capture takes a short read lock to copy the current events, then
// releases it before encoding and hashing, so submission is never
// blocked for the duration of encoding.
type BranchLog struct {
	mu     sync.RWMutex
	name   string
	events []Event
}

// NewBranchLog creates an empty log for the named branch.
func NewBranchLog(name string) *BranchLog {
	return &BranchLog{name: name}
}

// Name returns the branch name.
func (b *BranchLog) Name() string { return b.name }

// Append adds an event to the branch, preserving submission order.
func (b *BranchLog) Append(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

// Len returns the number of events currently in the log.
func (b *BranchLog) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.events)
}

// snapshotEvents copies the current event slice under a short read
// lock, releasing it before the caller does any further work.
func (b *BranchLog) snapshotEvents() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}
