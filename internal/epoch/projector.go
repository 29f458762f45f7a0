package epoch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerdcore/reflexsub/internal/clock"
	"github.com/nerdcore/reflexsub/internal/snapshot"
)

// Hooks are optional, synchronous notification callbacks. They must
// not call back into state-changing operations on the same Projector.
type Hooks struct {
	OnEpochCreated func(Epoch)
}

// Projector folds branch snapshots into numbered, content-hashed
// epochs. CreateEpoch calls are serialized against each other and
// against Clear; readers (LatestEpoch, GetEpoch, EpochsInRange,
// Metrics) may run concurrently with each other but never observe a
// partially-constructed epoch.
type Projector struct {
	mu         sync.RWMutex
	clk        clock.Clock
	allowClear bool
	hooks      Hooks
	epochs     []Epoch
}

// NewProjector constructs an empty Projector. allowClear gates Clear;
// production wiring should leave it false.
func NewProjector(clk clock.Clock, allowClear bool, hooks Hooks) *Projector {
	return &Projector{clk: clk, allowClear: allowClear, hooks: hooks}
}

// CreateEpoch atomically captures a snapshot of every given branch,
// assigns the next sequential epoch number, computes the epoch id as
// a hash of its contents, and appends it to the epoch log. A failure
// during capture leaves the epoch log unchanged.
func (p *Projector) CreateEpoch(ctx context.Context, branches []*snapshot.BranchLog, metadata map[string]string, embed snapshot.EmbedFunc) (Epoch, error) {
	if len(branches) == 0 {
		return Epoch{}, fmt.Errorf("%w: create_epoch requires at least one branch", ErrInvalidArgument)
	}
	seen := make(map[string]bool, len(branches))
	for _, b := range branches {
		if seen[b.Name()] {
			return Epoch{}, fmt.Errorf("%w: duplicate branch %q", ErrInvalidArgument, b.Name())
		}
		seen[b.Name()] = true
	}

	p.mu.Lock()

	now := p.clk.Now()
	results := make([]snapshot.BranchSnapshot, len(branches))
	g, _ := errgroup.WithContext(ctx)
	for i, b := range branches {
		i, b := i, b
		g.Go(func() error {
			results[i] = snapshot.Capture(b, now, embed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.mu.Unlock()
		return Epoch{}, err
	}

	branchMap := make(map[string]snapshot.BranchSnapshot, len(results))
	for _, s := range results {
		branchMap[s.BranchName] = s
	}

	number := len(p.epochs) + 1
	id := computeID(number, now, branchMap, metadata)
	ep := Epoch{
		Number:    number,
		ID:        id,
		CreatedAt: now,
		Branches:  branchMap,
		Metadata:  metadata,
	}
	p.epochs = append(p.epochs, ep)
	p.mu.Unlock()

	if p.hooks.OnEpochCreated != nil {
		p.hooks.OnEpochCreated(ep)
	}
	return ep, nil
}

// LatestEpoch returns the most recently created epoch.
func (p *Projector) LatestEpoch() (Epoch, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.epochs) == 0 {
		return Epoch{}, ErrNotFound
	}
	return p.epochs[len(p.epochs)-1], nil
}

// GetEpoch returns the epoch with the given 1-based number.
func (p *Projector) GetEpoch(number int) (Epoch, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if number < 1 || number > len(p.epochs) {
		return Epoch{}, ErrNotFound
	}
	return p.epochs[number-1], nil
}

// EpochsInRange returns every epoch whose CreatedAt falls within
// [start, end], inclusive on both ends.
func (p *Projector) EpochsInRange(start, end time.Time) []Epoch {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []Epoch
	for _, e := range p.epochs {
		if !e.CreatedAt.Before(start) && !e.CreatedAt.After(end) {
			out = append(out, e)
		}
	}
	return out
}

// Metrics aggregates totals across every epoch currently retained.
func (p *Projector) Metrics() Metrics {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var m Metrics
	m.TotalEpochs = len(p.epochs)

	totalEvents := 0
	totalBranches := 0
	for _, e := range p.epochs {
		for _, snap := range e.Branches {
			totalBranches++
			totalEvents += len(snap.Events)
		}
		if e.CreatedAt.After(m.LastEpochTime) {
			m.LastEpochTime = e.CreatedAt
		}
	}
	m.TotalBranches = totalBranches
	m.TotalEvents = totalEvents
	if totalBranches > 0 {
		m.AverageEventsPerBranch = float64(totalEvents) / float64(totalBranches)
	}
	return m
}

// Clear drops every epoch. It is a test utility gated by allowClear;
// production wiring should leave that false.
func (p *Projector) Clear() error {
	if !p.allowClear {
		return ErrClearDisabled
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.epochs = nil
	return nil
}
