package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nerdcore/reflexsub/internal/snapshot"
	"github.com/nerdcore/reflexsub/pkg/graph"
)

func TestMemoryPort_NodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	port := NewMemoryPort()
	defer port.Close()

	n := graph.Node{
		ID:        graph.NewNodeID(),
		TypeName:  "draft",
		Payload:   graph.BytesPayload("hello"),
		CreatedAt: time.Now().UTC(),
		Hash:      "deadbeef",
	}
	require.NoError(t, port.PutNode(ctx, n))

	got, err := port.GetNode(ctx, n.ID)
	require.NoError(t, err)
	require.Equal(t, n.ID, got.ID)
	require.Equal(t, n.TypeName, got.TypeName)
}

func TestMemoryPort_GetNode_NotFound(t *testing.T) {
	port := NewMemoryPort()
	defer port.Close()
	_, err := port.GetNode(context.Background(), graph.NewNodeID())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPort_SnapshotsScopedByBranch(t *testing.T) {
	ctx := context.Background()
	port := NewMemoryPort()
	defer port.Close()

	now := time.Now().UTC()
	require.NoError(t, port.PutSnapshot(ctx, snapshot.BranchSnapshot{BranchName: "main", CapturedAt: now, Hash: "h1"}))
	require.NoError(t, port.PutSnapshot(ctx, snapshot.BranchSnapshot{BranchName: "other", CapturedAt: now, Hash: "h2"}))

	mainSnaps, err := port.IterSnapshots(ctx, "main")
	require.NoError(t, err)
	require.Len(t, mainSnaps, 1)
	require.Equal(t, "h1", mainSnaps[0].Hash)
}

func TestMemoryPort_GetSnapshot_NotFound(t *testing.T) {
	port := NewMemoryPort()
	defer port.Close()
	_, err := port.GetSnapshot(context.Background(), "main", "nonexistent")
	require.ErrorIs(t, err, ErrNotFound)
}
