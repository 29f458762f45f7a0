package epoch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nerdcore/reflexsub/pkg/graph"
)

func mustAddNode(t *testing.T, dag *graph.Dag, typeName string, createdAt time.Time, parents ...graph.NodeID) graph.Node {
	t.Helper()
	n := graph.Node{
		ID:        graph.NewNodeID(),
		TypeName:  typeName,
		Payload:   graph.BytesPayload(typeName),
		ParentIDs: parents,
		CreatedAt: createdAt,
	}
	require.NoError(t, dag.AddNode(n))
	stored, err := dag.GetNode(n.ID)
	require.NoError(t, err)
	return stored
}

func mustAddEdge(t *testing.T, dag *graph.Dag, inputs []graph.NodeID, output graph.NodeID, op string, createdAt time.Time) graph.TransitionEdge {
	t.Helper()
	e := graph.TransitionEdge{
		ID:            graph.NewEdgeID(),
		InputIDs:      inputs,
		OutputID:      output,
		OperationName: op,
		Metadata:      map[string]string{},
		CreatedAt:     createdAt,
	}
	require.NoError(t, dag.AddEdge(e))
	stored, err := dag.GetEdge(e.ID)
	require.NoError(t, err)
	return stored
}

func TestReplayPathTo_LinearChainFromRoot(t *testing.T) {
	dag := graph.New(graph.Hooks{})
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	root := mustAddNode(t, dag, "draft", base)
	mid := mustAddNode(t, dag, "critique", base.Add(time.Minute), root.ID)
	e1 := mustAddEdge(t, dag, []graph.NodeID{root.ID}, mid.ID, "critique", base.Add(time.Minute))

	leaf := mustAddNode(t, dag, "improvement", base.Add(2*time.Minute), mid.ID)
	e2 := mustAddEdge(t, dag, []graph.NodeID{mid.ID}, leaf.ID, "improve", base.Add(2*time.Minute))

	path, err := ReplayPathTo(dag, leaf.ID)
	require.NoError(t, err)
	require.Len(t, path, 2)
	require.Equal(t, e1.ID, path[0].ID)
	require.Equal(t, e2.ID, path[1].ID)
	require.Equal(t, leaf.ID, path[len(path)-1].OutputID)
	require.Contains(t, path[0].InputIDs, root.ID)
}

func TestReplayPathTo_RootNodeReturnsEmptyPath(t *testing.T) {
	dag := graph.New(graph.Hooks{})
	root := mustAddNode(t, dag, "draft", time.Now().UTC())

	path, err := ReplayPathTo(dag, root.ID)
	require.NoError(t, err)
	require.Empty(t, path)
}

func TestReplayPathTo_UnknownNodeReturnsNotFound(t *testing.T) {
	dag := graph.New(graph.Hooks{})
	_, err := ReplayPathTo(dag, graph.NewNodeID())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReplayPathTo_DeterministicUnderMultipleParents(t *testing.T) {
	dag := graph.New(graph.Hooks{})
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rootA := mustAddNode(t, dag, "draft", base)
	rootB := mustAddNode(t, dag, "draft", base)
	merged := mustAddNode(t, dag, "synthesis", base.Add(time.Minute), rootA.ID, rootB.ID)
	mustAddEdge(t, dag, []graph.NodeID{rootA.ID, rootB.ID}, merged.ID, "merge", base.Add(time.Minute))

	path1, err := ReplayPathTo(dag, merged.ID)
	require.NoError(t, err)
	path2, err := ReplayPathTo(dag, merged.ID)
	require.NoError(t, err)
	require.Equal(t, path1, path2, "replay path must be deterministic across calls")
	require.Len(t, path1, 1)
}
