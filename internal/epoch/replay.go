package epoch

import (
	"errors"
	"fmt"

	"github.com/nerdcore/reflexsub/pkg/graph"
)

// ReplayPathTo reconstructs a deterministic path of edges from some
// root to node, by walking backward from node over incoming edges —
// at each step taking the earliest incoming edge (already sorted by
// CreatedAt then id by IncomingEdges) and continuing from its
// lexicographically-smallest input — until a node with no incoming
// edge (a root) is reached, then reversing the collected edges.
func ReplayPathTo(dag *graph.Dag, nodeID graph.NodeID) ([]graph.TransitionEdge, error) {
	if _, err := dag.GetNode(nodeID); err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return nil, fmt.Errorf("%w: node %s", ErrNotFound, nodeID)
		}
		return nil, err
	}

	var path []graph.TransitionEdge
	visited := map[graph.NodeID]bool{nodeID: true}
	current := nodeID

	for {
		incoming := dag.IncomingEdges(current)
		if len(incoming) == 0 {
			break
		}
		chosen := incoming[0]
		path = append(path, chosen)

		next := smallestInputID(chosen.InputIDs)
		if visited[next] {
			return nil, fmt.Errorf("%w: node %s", ErrUnreachable, nodeID)
		}
		visited[next] = true
		current = next
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

func smallestInputID(ids []graph.NodeID) graph.NodeID {
	smallest := ids[0]
	for _, id := range ids[1:] {
		if id.String() < smallest.String() {
			smallest = id
		}
	}
	return smallest
}
