package epoch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nerdcore/reflexsub/internal/clock"
	"github.com/nerdcore/reflexsub/internal/snapshot"
)

func TestCreateEpoch_NumbersAreMonotonicContiguous(t *testing.T) {
	clk := clock.NewLogical(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	p := NewProjector(clk, false, Hooks{})

	branch := snapshot.NewBranchLog("main")
	branch.Append(snapshot.Event{Payload: []byte("e1")})

	var numbers []int
	for i := 0; i < 3; i++ {
		ep, err := p.CreateEpoch(context.Background(), []*snapshot.BranchLog{branch}, nil, nil)
		require.NoError(t, err)
		numbers = append(numbers, ep.Number)
		clk.Advance(time.Minute)
	}

	require.Equal(t, []int{1, 2, 3}, numbers)

	latest, err := p.LatestEpoch()
	require.NoError(t, err)
	require.Equal(t, 3, latest.Number)

	require.Equal(t, 3, p.Metrics().TotalEpochs)
}

func TestCreateEpoch_RejectsEmptyBranchSet(t *testing.T) {
	p := NewProjector(clock.Wall{}, false, Hooks{})
	_, err := p.CreateEpoch(context.Background(), nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateEpoch_RejectsDuplicateBranchNames(t *testing.T) {
	p := NewProjector(clock.Wall{}, false, Hooks{})
	a := snapshot.NewBranchLog("main")
	b := snapshot.NewBranchLog("main")
	_, err := p.CreateEpoch(context.Background(), []*snapshot.BranchLog{a, b}, nil, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateEpoch_IDIsDeterministicForSameContents(t *testing.T) {
	clk := clock.NewLogical(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	p1 := NewProjector(clk, false, Hooks{})
	branch1 := snapshot.NewBranchLog("main")
	branch1.Append(snapshot.Event{Payload: []byte("x")})
	ep1, err := p1.CreateEpoch(context.Background(), []*snapshot.BranchLog{branch1}, map[string]string{"k": "v"}, nil)
	require.NoError(t, err)

	p2 := NewProjector(clk, false, Hooks{})
	branch2 := snapshot.NewBranchLog("main")
	branch2.Append(snapshot.Event{Payload: []byte("x")})
	ep2, err := p2.CreateEpoch(context.Background(), []*snapshot.BranchLog{branch2}, map[string]string{"k": "v"}, nil)
	require.NoError(t, err)

	require.Equal(t, ep1.ID, ep2.ID)
}

func TestGetEpoch_OutOfRangeReturnsNotFound(t *testing.T) {
	p := NewProjector(clock.Wall{}, false, Hooks{})
	_, err := p.GetEpoch(1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLatestEpoch_EmptyProjectorReturnsNotFound(t *testing.T) {
	p := NewProjector(clock.Wall{}, false, Hooks{})
	_, err := p.LatestEpoch()
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEpochsInRange_FiltersByCreatedAtInclusive(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := clock.NewLogical(start)
	p := NewProjector(clk, false, Hooks{})
	branch := snapshot.NewBranchLog("main")

	_, err := p.CreateEpoch(context.Background(), []*snapshot.BranchLog{branch}, nil, nil)
	require.NoError(t, err)
	clk.Advance(time.Hour)
	_, err = p.CreateEpoch(context.Background(), []*snapshot.BranchLog{branch}, nil, nil)
	require.NoError(t, err)
	clk.Advance(time.Hour)
	_, err = p.CreateEpoch(context.Background(), []*snapshot.BranchLog{branch}, nil, nil)
	require.NoError(t, err)

	epochs := p.EpochsInRange(start, start.Add(time.Hour))
	require.Len(t, epochs, 2)
}

func TestMetrics_AveragesEventsPerBranch(t *testing.T) {
	clk := clock.NewLogical(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	p := NewProjector(clk, false, Hooks{})

	a := snapshot.NewBranchLog("a")
	a.Append(snapshot.Event{Payload: []byte("1")})
	a.Append(snapshot.Event{Payload: []byte("2")})
	b := snapshot.NewBranchLog("b")
	b.Append(snapshot.Event{Payload: []byte("1")})

	_, err := p.CreateEpoch(context.Background(), []*snapshot.BranchLog{a, b}, nil, nil)
	require.NoError(t, err)

	m := p.Metrics()
	require.Equal(t, 1, m.TotalEpochs)
	require.Equal(t, 2, m.TotalBranches)
	require.Equal(t, 3, m.TotalEvents)
	require.InDelta(t, 1.5, m.AverageEventsPerBranch, 0.0001)
}

func TestClear_DisabledByDefault(t *testing.T) {
	p := NewProjector(clock.Wall{}, false, Hooks{})
	err := p.Clear()
	require.ErrorIs(t, err, ErrClearDisabled)
}

func TestClear_AllowedWhenEnabled(t *testing.T) {
	clk := clock.NewLogical(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	p := NewProjector(clk, true, Hooks{})
	branch := snapshot.NewBranchLog("main")
	_, err := p.CreateEpoch(context.Background(), []*snapshot.BranchLog{branch}, nil, nil)
	require.NoError(t, err)

	require.NoError(t, p.Clear())
	_, err = p.LatestEpoch()
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateEpoch_FiresOnEpochCreatedHook(t *testing.T) {
	clk := clock.NewLogical(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	var fired Epoch
	hooks := Hooks{OnEpochCreated: func(e Epoch) { fired = e }}
	p := NewProjector(clk, false, hooks)

	branch := snapshot.NewBranchLog("main")
	ep, err := p.CreateEpoch(context.Background(), []*snapshot.BranchLog{branch}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, ep.ID, fired.ID)
}
