package store

import (
	"context"
	"sync"

	"github.com/nerdcore/reflexsub/internal/snapshot"
	"github.com/nerdcore/reflexsub/pkg/graph"
)

// MemoryPort is a pure in-memory Port, useful for tests and for
// collaborators that don't need durability across process restarts.
type MemoryPort struct {
	mu        sync.RWMutex
	nodes     map[graph.NodeID]graph.Node
	edges     map[graph.EdgeID]graph.TransitionEdge
	snapshots map[string][]snapshot.BranchSnapshot
}

// NewMemoryPort returns an empty MemoryPort.
func NewMemoryPort() *MemoryPort {
	return &MemoryPort{
		nodes:     make(map[graph.NodeID]graph.Node),
		edges:     make(map[graph.EdgeID]graph.TransitionEdge),
		snapshots: make(map[string][]snapshot.BranchSnapshot),
	}
}

func (m *MemoryPort) PutNode(_ context.Context, n graph.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[n.ID] = n
	return nil
}

func (m *MemoryPort) GetNode(_ context.Context, id graph.NodeID) (graph.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	if !ok {
		return graph.Node{}, ErrNotFound
	}
	return n, nil
}

func (m *MemoryPort) IterNodes(_ context.Context) ([]graph.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]graph.Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		out = append(out, n)
	}
	return out, nil
}

func (m *MemoryPort) PutEdge(_ context.Context, e graph.TransitionEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[e.ID] = e
	return nil
}

func (m *MemoryPort) GetEdge(_ context.Context, id graph.EdgeID) (graph.TransitionEdge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.edges[id]
	if !ok {
		return graph.TransitionEdge{}, ErrNotFound
	}
	return e, nil
}

func (m *MemoryPort) IterEdges(_ context.Context) ([]graph.TransitionEdge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]graph.TransitionEdge, 0, len(m.edges))
	for _, e := range m.edges {
		out = append(out, e)
	}
	return out, nil
}

func (m *MemoryPort) PutSnapshot(_ context.Context, s snapshot.BranchSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[s.BranchName] = append(m.snapshots[s.BranchName], s)
	return nil
}

func (m *MemoryPort) GetSnapshot(_ context.Context, branch string, hash string) (snapshot.BranchSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.snapshots[branch] {
		if s.Hash == hash {
			return s, nil
		}
	}
	return snapshot.BranchSnapshot{}, ErrNotFound
}

func (m *MemoryPort) IterSnapshots(_ context.Context, branch string) ([]snapshot.BranchSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]snapshot.BranchSnapshot, len(m.snapshots[branch]))
	copy(out, m.snapshots[branch])
	return out, nil
}

func (m *MemoryPort) Close() error { return nil }

var _ Port = (*MemoryPort)(nil)
