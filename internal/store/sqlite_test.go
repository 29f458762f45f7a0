package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nerdcore/reflexsub/internal/snapshot"
	"github.com/nerdcore/reflexsub/pkg/graph"
)

func openTestSQLitePort(t *testing.T) *SQLitePort {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reflexsub.db")
	port, err := OpenSQLitePort(path)
	require.NoError(t, err)
	t.Cleanup(func() { port.Close() })
	return port
}

func TestSQLitePort_NodeRoundTripPreservesParentsAndPayload(t *testing.T) {
	ctx := context.Background()
	port := openTestSQLitePort(t)

	parent := graph.NewNodeID()
	n := graph.Node{
		ID:        graph.NewNodeID(),
		TypeName:  "draft",
		Payload:   graph.JSONPayload{Value: map[string]interface{}{"text": "hello"}},
		ParentIDs: []graph.NodeID{parent},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Hash:      "abc123",
	}
	require.NoError(t, port.PutNode(ctx, n))

	got, err := port.GetNode(ctx, n.ID)
	require.NoError(t, err)
	require.Equal(t, n.TypeName, got.TypeName)
	require.Equal(t, []graph.NodeID{parent}, got.ParentIDs)
	require.Equal(t, n.Hash, got.Hash)

	payload, ok := got.Payload.(graph.JSONPayload)
	require.True(t, ok)
	asMap, ok := payload.Value.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "hello", asMap["text"])
}

func TestSQLitePort_PutNode_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	port := openTestSQLitePort(t)

	id := graph.NewNodeID()
	n := graph.Node{ID: id, TypeName: "draft", Payload: graph.BytesPayload("v1"), CreatedAt: time.Now().UTC(), Hash: "h1"}
	require.NoError(t, port.PutNode(ctx, n))

	n.TypeName = "critique"
	n.Hash = "h2"
	require.NoError(t, port.PutNode(ctx, n))

	got, err := port.GetNode(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "critique", got.TypeName)
	require.Equal(t, "h2", got.Hash)
}

func TestSQLitePort_EdgeRoundTripPreservesOptionalFields(t *testing.T) {
	ctx := context.Background()
	port := openTestSQLitePort(t)

	conf := 0.87
	dur := int64(1200)
	e := graph.TransitionEdge{
		ID:            graph.NewEdgeID(),
		InputIDs:      []graph.NodeID{graph.NewNodeID(), graph.NewNodeID()},
		OutputID:      graph.NewNodeID(),
		OperationName: "critique",
		Metadata:      map[string]string{"model": "x"},
		Confidence:    &conf,
		DurationMs:    &dur,
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
		Hash:          "edgehash",
	}
	require.NoError(t, port.PutEdge(ctx, e))

	got, err := port.GetEdge(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, got.InputIDs, 2)
	require.NotNil(t, got.Confidence)
	require.InDelta(t, conf, *got.Confidence, 0.0001)
	require.NotNil(t, got.DurationMs)
	require.Equal(t, dur, *got.DurationMs)
	require.Equal(t, "x", got.Metadata["model"])
}

func TestSQLitePort_EdgeWithoutOptionalFieldsRoundTrips(t *testing.T) {
	ctx := context.Background()
	port := openTestSQLitePort(t)

	e := graph.TransitionEdge{
		ID:            graph.NewEdgeID(),
		InputIDs:      []graph.NodeID{graph.NewNodeID()},
		OutputID:      graph.NewNodeID(),
		OperationName: "draft",
		Metadata:      map[string]string{},
		CreatedAt:     time.Now().UTC(),
		Hash:          "edgehash2",
	}
	require.NoError(t, port.PutEdge(ctx, e))

	got, err := port.GetEdge(ctx, e.ID)
	require.NoError(t, err)
	require.Nil(t, got.Confidence)
	require.Nil(t, got.DurationMs)
}

func TestSQLitePort_SnapshotRoundTripAndOrdering(t *testing.T) {
	ctx := context.Background()
	port := openTestSQLitePort(t)

	older := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	newer := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, port.PutSnapshot(ctx, snapshot.BranchSnapshot{
		BranchName: "main", CapturedAt: newer, Hash: "newer",
		Events: []snapshot.Event{{Payload: []byte("e1")}},
	}))
	require.NoError(t, port.PutSnapshot(ctx, snapshot.BranchSnapshot{
		BranchName: "main", CapturedAt: older, Hash: "older",
	}))

	snaps, err := port.IterSnapshots(ctx, "main")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	require.Equal(t, "older", snaps[0].Hash)
	require.Equal(t, "newer", snaps[1].Hash)
	require.Len(t, snaps[1].Events, 1)
}

func TestSQLitePort_PutSnapshot_DuplicateHashIsNoOp(t *testing.T) {
	ctx := context.Background()
	port := openTestSQLitePort(t)

	snap := snapshot.BranchSnapshot{BranchName: "main", CapturedAt: time.Now().UTC(), Hash: "dup"}
	require.NoError(t, port.PutSnapshot(ctx, snap))
	require.NoError(t, port.PutSnapshot(ctx, snap))

	snaps, err := port.IterSnapshots(ctx, "main")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
}

func TestSQLitePort_GetNode_NotFound(t *testing.T) {
	port := openTestSQLitePort(t)
	_, err := port.GetNode(context.Background(), graph.NewNodeID())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLitePort_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	port1, err := OpenSQLitePort(path)
	require.NoError(t, err)
	require.NoError(t, port1.Close())

	port2, err := OpenSQLitePort(path)
	require.NoError(t, err)
	defer port2.Close()

	nodes, err := port2.IterNodes(context.Background())
	require.NoError(t, err)
	require.Empty(t, nodes)
}
