package graph

import (
	"fmt"
	"sort"
	"sync"
)

// Hooks holds optional synchronous subscriber callbacks. Handlers fire
// from inside the triggering call while the Dag is no longer locked;
// they must not call back into AddNode/AddEdge on the same Dag
// (non-reentrant, per spec's fan-out design note).
type Hooks struct {
	OnNodeAdded func(Node)
	OnEdgeAdded func(TransitionEdge)
}

// Dag is an in-memory, content-addressed, append-only event graph.
// Nodes and edges are stored in two flat maps keyed by id; relationships
// are expressed by id, never by direct pointer, so there is no cyclic
// ownership between the node and edge collections themselves.
//
// A single sync.RWMutex gives the readers-writer discipline the spec
// requires: queries and VerifyIntegrity take a read lock, AddNode/
// AddEdge take a write lock and build the new state before installing
// it, so a failed call leaves the Dag byte-identical to its pre-call
// state.
type Dag struct {
	mu sync.RWMutex

	nodes map[NodeID]*Node
	edges map[EdgeID]*TransitionEdge

	succ          map[NodeID]map[NodeID]bool // direct successor node ids
	hasIncoming   map[NodeID]bool
	hasOutgoing   map[NodeID]bool
	incomingEdges map[NodeID][]EdgeID
	outgoingEdges map[NodeID][]EdgeID

	hooks Hooks
}

// New creates an empty Dag.
func New(hooks Hooks) *Dag {
	return &Dag{
		nodes:         make(map[NodeID]*Node),
		edges:         make(map[EdgeID]*TransitionEdge),
		succ:          make(map[NodeID]map[NodeID]bool),
		hasIncoming:   make(map[NodeID]bool),
		hasOutgoing:   make(map[NodeID]bool),
		incomingEdges: make(map[NodeID][]EdgeID),
		outgoingEdges: make(map[NodeID][]EdgeID),
		hooks:         hooks,
	}
}

// AddNode appends a node to the graph. It fails with ErrDuplicateID if
// the id is already present, ErrUnknownNode if any parent id does not
// yet exist, or ErrIntegrityViolation if the supplied hash does not
// match the recomputed canonical hash.
func (d *Dag) AddNode(n Node) error {
	if n.ID.IsZero() {
		return fmt.Errorf("%w: node id is zero", ErrInvalidArgument)
	}

	wantHash, err := HashNode(n)
	if err != nil {
		return err
	}
	if n.Hash == "" {
		n.Hash = wantHash
	} else if n.Hash != wantHash {
		return fmt.Errorf("%w: node %s hash mismatch", ErrIntegrityViolation, n.ID)
	}

	d.mu.Lock()

	if _, exists := d.nodes[n.ID]; exists {
		d.mu.Unlock()
		return fmt.Errorf("%w: node %s", ErrDuplicateID, n.ID)
	}
	for _, pid := range n.ParentIDs {
		if _, exists := d.nodes[pid]; !exists {
			d.mu.Unlock()
			return fmt.Errorf("%w: parent %s of node %s", ErrUnknownNode, pid, n.ID)
		}
	}

	stored := n
	d.nodes[n.ID] = &stored
	d.mu.Unlock()

	if d.hooks.OnNodeAdded != nil {
		d.hooks.OnNodeAdded(stored)
	}
	return nil
}

// AddEdge appends a transition edge. It fails with ErrUnknownNode if an
// input or the output does not exist, ErrCyclicEdge if accepting it
// would introduce a cycle, ErrDuplicateID if the edge id is already
// present, or ErrIntegrityViolation on a hash mismatch.
func (d *Dag) AddEdge(e TransitionEdge) error {
	if e.ID.IsZero() {
		return fmt.Errorf("%w: edge id is zero", ErrInvalidArgument)
	}
	if len(e.InputIDs) == 0 {
		return fmt.Errorf("%w: edge %s has no inputs", ErrInvalidArgument, e.ID)
	}
	if e.Confidence != nil && (*e.Confidence < 0 || *e.Confidence > 1) {
		return fmt.Errorf("%w: edge %s confidence out of [0,1]", ErrInvalidArgument, e.ID)
	}
	if e.DurationMs != nil && *e.DurationMs < 0 {
		return fmt.Errorf("%w: edge %s duration is negative", ErrInvalidArgument, e.ID)
	}

	wantHash, err := HashEdge(e)
	if err != nil {
		return err
	}
	if e.Hash == "" {
		e.Hash = wantHash
	} else if e.Hash != wantHash {
		return fmt.Errorf("%w: edge %s hash mismatch", ErrIntegrityViolation, e.ID)
	}

	d.mu.Lock()

	if _, exists := d.edges[e.ID]; exists {
		d.mu.Unlock()
		return fmt.Errorf("%w: edge %s", ErrDuplicateID, e.ID)
	}
	if _, exists := d.nodes[e.OutputID]; !exists {
		d.mu.Unlock()
		return fmt.Errorf("%w: output %s of edge %s", ErrUnknownNode, e.OutputID, e.ID)
	}
	for _, in := range e.InputIDs {
		if _, exists := d.nodes[in]; !exists {
			d.mu.Unlock()
			return fmt.Errorf("%w: input %s of edge %s", ErrUnknownNode, in, e.ID)
		}
	}

	if d.reaches(e.OutputID, e.InputIDs) {
		d.mu.Unlock()
		return fmt.Errorf("%w: edge %s", ErrCyclicEdge, e.ID)
	}

	stored := e
	d.edges[e.ID] = &stored

	for _, in := range e.InputIDs {
		if d.succ[in] == nil {
			d.succ[in] = make(map[NodeID]bool)
		}
		d.succ[in][e.OutputID] = true
		d.hasOutgoing[in] = true
		d.outgoingEdges[in] = append(d.outgoingEdges[in], e.ID)
	}
	d.hasIncoming[e.OutputID] = true
	d.incomingEdges[e.OutputID] = append(d.incomingEdges[e.OutputID], e.ID)
	d.mu.Unlock()

	if d.hooks.OnEdgeAdded != nil {
		d.hooks.OnEdgeAdded(stored)
	}
	return nil
}

// reaches performs a BFS from start over existing outgoing edges and
// reports whether it visits any node in targets. Caller must hold at
// least the write lock (reaches itself takes no lock).
func (d *Dag) reaches(start NodeID, targets []NodeID) bool {
	want := make(map[NodeID]bool, len(targets))
	for _, t := range targets {
		want[t] = true
	}

	visited := map[NodeID]bool{start: true}
	queue := []NodeID{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if want[cur] {
			return true
		}
		for next := range d.succ[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// GetNode looks up a node by id.
func (d *Dag) GetNode(id NodeID) (Node, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.nodes[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: node %s", ErrNotFound, id)
	}
	return *n, nil
}

// GetEdge looks up an edge by id.
func (d *Dag) GetEdge(id EdgeID) (TransitionEdge, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.edges[id]
	if !ok {
		return TransitionEdge{}, fmt.Errorf("%w: edge %s", ErrNotFound, id)
	}
	return *e, nil
}

// NodesByType returns all nodes whose TypeName matches, ordered by
// CreatedAt ascending then id, for deterministic output.
func (d *Dag) NodesByType(typeName string) []Node {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []Node
	for _, n := range d.nodes {
		if n.TypeName == typeName {
			out = append(out, *n)
		}
	}
	sortNodes(out)
	return out
}

// RootNodes returns nodes with no incoming edge.
func (d *Dag) RootNodes() []Node {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []Node
	for id, n := range d.nodes {
		if !d.hasIncoming[id] {
			out = append(out, *n)
		}
	}
	sortNodes(out)
	return out
}

// LeafNodes returns nodes with no outgoing edge.
func (d *Dag) LeafNodes() []Node {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []Node
	for id, n := range d.nodes {
		if !d.hasOutgoing[id] {
			out = append(out, *n)
		}
	}
	sortNodes(out)
	return out
}

// IncomingEdges returns the edges whose OutputID is id, sorted by
// CreatedAt then id; epoch.ReplayPathTo walks them backward from a node.
func (d *Dag) IncomingEdges(id NodeID) []TransitionEdge {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := d.incomingEdges[id]
	out := make([]TransitionEdge, 0, len(ids))
	for _, eid := range ids {
		out = append(out, *d.edges[eid])
	}
	sortEdges(out)
	return out
}

// OutgoingEdges returns the edges that list id among their InputIDs.
func (d *Dag) OutgoingEdges(id NodeID) []TransitionEdge {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := d.outgoingEdges[id]
	out := make([]TransitionEdge, 0, len(ids))
	for _, eid := range ids {
		out = append(out, *d.edges[eid])
	}
	sortEdges(out)
	return out
}

// NodeCount returns the number of nodes, O(1).
func (d *Dag) NodeCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.nodes)
}

// EdgeCount returns the number of edges, O(1).
func (d *Dag) EdgeCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.edges)
}

// VerifyIntegrity recomputes every node and edge hash and rechecks
// acyclicity. It is a pure reader.
func (d *Dag) VerifyIntegrity() []Violation {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var violations []Violation
	for id, n := range d.nodes {
		want, err := HashNode(*n)
		if err != nil {
			violations = append(violations, Violation{Kind: ErrIntegrityViolation, Subject: id.String(), Detail: err.Error()})
			continue
		}
		if want != n.Hash {
			violations = append(violations, Violation{Kind: ErrIntegrityViolation, Subject: id.String(), Detail: "node hash does not match recomputed hash"})
		}
	}
	for id, e := range d.edges {
		want, err := HashEdge(*e)
		if err != nil {
			violations = append(violations, Violation{Kind: ErrIntegrityViolation, Subject: id.String(), Detail: err.Error()})
			continue
		}
		if want != e.Hash {
			violations = append(violations, Violation{Kind: ErrIntegrityViolation, Subject: id.String(), Detail: "edge hash does not match recomputed hash"})
		}
	}
	if d.hasCycleLocked() {
		violations = append(violations, Violation{Kind: ErrCyclicEdge, Detail: "graph contains a cycle"})
	}
	return violations
}

// hasCycleLocked runs Kahn's algorithm over the full graph; caller must
// hold at least the read lock.
func (d *Dag) hasCycleLocked() bool {
	indeg := make(map[NodeID]int, len(d.nodes))
	for id := range d.nodes {
		indeg[id] = 0
	}
	for _, targets := range d.succ {
		for t := range targets {
			indeg[t]++
		}
	}

	var queue []NodeID
	for id, deg := range indeg {
		if deg == 0 {
			queue = append(queue, id)
		}
	}

	visited := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		visited++
		for next := range d.succ[cur] {
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return visited != len(d.nodes)
}

func sortNodes(nodes []Node) {
	sort.Slice(nodes, func(i, j int) bool {
		if !nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
		}
		return nodes[i].ID.String() < nodes[j].ID.String()
	})
}

func sortEdges(edges []TransitionEdge) {
	sort.Slice(edges, func(i, j int) bool {
		if !edges[i].CreatedAt.Equal(edges[j].CreatedAt) {
			return edges[i].CreatedAt.Before(edges[j].CreatedAt)
		}
		return edges[i].ID.String() < edges[j].ID.String()
	})
}
