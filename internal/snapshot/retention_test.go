package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func snapAt(branch string, t time.Time, hash string) BranchSnapshot {
	return BranchSnapshot{BranchName: branch, CapturedAt: t, Hash: hash}
}

func TestByAge_BoundaryInclusive(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	exactBoundary := now.Add(-7 * 24 * time.Hour)
	justOutside := exactBoundary.Add(-time.Second)

	snaps := []BranchSnapshot{
		snapAt("main", exactBoundary, "h1"),
		snapAt("main", justOutside, "h2"),
	}

	plan := Evaluate(now, snaps, ByAge(7*24*time.Hour), false)
	require.Len(t, plan.ToKeep, 1)
	require.Equal(t, "h1", plan.ToKeep[0].Hash)
	require.Len(t, plan.ToDelete, 1)
	require.Equal(t, "h2", plan.ToDelete[0].Hash)
}

func TestByAge_ZeroMaxAgeDeletesAllPastSnapshots(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	snaps := []BranchSnapshot{
		snapAt("main", now.Add(-time.Second), "h1"),
		snapAt("main", now.Add(-time.Hour), "h2"),
	}
	plan := Evaluate(now, snaps, ByAge(0), false)
	require.Empty(t, plan.ToKeep)
	require.Len(t, plan.ToDelete, 2)
}

func TestByCount_KeepsNNewest(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	snaps := []BranchSnapshot{
		snapAt("main", now.Add(-3*time.Hour), "oldest"),
		snapAt("main", now.Add(-1*time.Hour), "newest"),
		snapAt("main", now.Add(-2*time.Hour), "middle"),
	}

	plan := Evaluate(now, snaps, ByCount(2), false)
	require.Len(t, plan.ToKeep, 2)
	kept := map[string]bool{}
	for _, s := range plan.ToKeep {
		kept[s.Hash] = true
	}
	require.True(t, kept["newest"])
	require.True(t, kept["middle"])
	require.Len(t, plan.ToDelete, 1)
	require.Equal(t, "oldest", plan.ToDelete[0].Hash)
}

func TestByCount_ZeroDeletesAll(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	snaps := []BranchSnapshot{snapAt("main", now, "h1")}
	plan := Evaluate(now, snaps, ByCount(0), false)
	require.Empty(t, plan.ToKeep)
	require.Len(t, plan.ToDelete, 1)
}

func TestByCount_TieBrokenByHashDescending(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	sameTime := now.Add(-time.Hour)
	snaps := []BranchSnapshot{
		snapAt("main", sameTime, "aaa"),
		snapAt("main", sameTime, "zzz"),
	}
	plan := Evaluate(now, snaps, ByCount(1), false)
	require.Len(t, plan.ToKeep, 1)
	require.Equal(t, "zzz", plan.ToKeep[0].Hash)
}

func TestEvaluate_EmptyInputProducesEmptyPlan(t *testing.T) {
	plan := Evaluate(time.Now().UTC(), nil, ByCount(5), false)
	require.Empty(t, plan.ToKeep)
	require.Empty(t, plan.ToDelete)
}

// TestCombined_IsIntersectionOfAgeAndCount is spec property: the kept
// set under Combined always equals the intersection of what ByAge and
// ByCount would each keep independently.
func TestCombined_IsIntersectionOfAgeAndCount(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	snaps := []BranchSnapshot{
		snapAt("main", now.Add(-1*time.Hour), "recent-a"),
		snapAt("main", now.Add(-2*time.Hour), "recent-b"),
		snapAt("main", now.Add(-240*time.Hour), "ancient"),
	}

	maxAge := 24 * time.Hour
	count := 1

	agePlan := Evaluate(now, snaps, ByAge(maxAge), false)
	countPlan := Evaluate(now, snaps, ByCount(count), false)
	combinedPlan := Evaluate(now, snaps, Combined(maxAge, count), false)

	ageKept := map[string]bool{}
	for _, s := range agePlan.ToKeep {
		ageKept[s.Hash] = true
	}
	countKept := map[string]bool{}
	for _, s := range countPlan.ToKeep {
		countKept[s.Hash] = true
	}

	for _, s := range combinedPlan.ToKeep {
		require.True(t, ageKept[s.Hash], "combined kept %s but age policy would not", s.Hash)
		require.True(t, countKept[s.Hash], "combined kept %s but count policy would not", s.Hash)
	}
	for hash := range ageKept {
		if countKept[hash] {
			found := false
			for _, s := range combinedPlan.ToKeep {
				if s.Hash == hash {
					found = true
				}
			}
			require.True(t, found, "combined dropped %s though both policies kept it", hash)
		}
	}
}

func TestEvaluate_DryRunStillProducesFullPartition(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	snaps := []BranchSnapshot{snapAt("main", now, "h1")}
	plan := Evaluate(now, snaps, ByCount(0), true)
	require.True(t, plan.IsDryRun)
	require.Len(t, plan.ToDelete, 1, "dry run still computes what would be deleted")
}
