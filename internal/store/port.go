// Package store defines the persistence port the core's components may
// be wired to, plus two concrete adapters: a pure in-memory adapter and
// a SQLite-backed one. The core itself never imports this package
// directly; a collaborator wires a Port to graph.Hooks/epoch.Hooks so
// that persistence happens as a side effect of the synchronous
// notification, never as a direct mutation of internal state.
package store

import (
	"context"
	"errors"

	"github.com/nerdcore/reflexsub/internal/snapshot"
	"github.com/nerdcore/reflexsub/pkg/graph"
)

// ErrNotFound is returned by Get* when no record matches.
var ErrNotFound = errors.New("store: not found")

// Port is the abstract persistence boundary. Implementations are
// opaque to the core: their errors propagate unchanged, and the core
// never retries.
type Port interface {
	PutNode(ctx context.Context, n graph.Node) error
	GetNode(ctx context.Context, id graph.NodeID) (graph.Node, error)
	IterNodes(ctx context.Context) ([]graph.Node, error)

	PutEdge(ctx context.Context, e graph.TransitionEdge) error
	GetEdge(ctx context.Context, id graph.EdgeID) (graph.TransitionEdge, error)
	IterEdges(ctx context.Context) ([]graph.TransitionEdge, error)

	PutSnapshot(ctx context.Context, s snapshot.BranchSnapshot) error
	GetSnapshot(ctx context.Context, branch string, hash string) (snapshot.BranchSnapshot, error)
	IterSnapshots(ctx context.Context, branch string) ([]snapshot.BranchSnapshot, error)

	Close() error
}
