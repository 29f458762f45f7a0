package snapshot

import (
	"sort"
	"time"
)

// Policy decides, for a set of snapshots from the same branch, which
// ones are worth keeping. Keep returns a parallel boolean slice: true
// at index i means snaps[i] survives. Policy never deletes anything
// itself — Evaluate turns its decision into a RetentionPlan.
type Policy interface {
	Keep(now time.Time, snaps []BranchSnapshot) []bool
}

// RetentionPlan is the pure result of evaluating a Policy: which
// snapshots to keep, which to delete, and whether this was a dry run.
// Deletion itself is always left to a collaborator.
type RetentionPlan struct {
	ToKeep   []BranchSnapshot
	ToDelete []BranchSnapshot
	IsDryRun bool
}

// Evaluate applies policy to snaps and partitions them into a plan,
// preserving the input order within each partition.
func Evaluate(now time.Time, snaps []BranchSnapshot, policy Policy, dryRun bool) RetentionPlan {
	plan := RetentionPlan{IsDryRun: dryRun}
	if len(snaps) == 0 {
		return plan
	}

	keep := policy.Keep(now, snaps)
	for i, s := range snaps {
		if i < len(keep) && keep[i] {
			plan.ToKeep = append(plan.ToKeep, s)
		} else {
			plan.ToDelete = append(plan.ToDelete, s)
		}
	}
	return plan
}

// byAgePolicy keeps every snapshot whose CapturedAt is no older than
// MaxAge relative to now. The age boundary is inclusive: a snapshot
// captured exactly MaxAge ago is kept.
type byAgePolicy struct {
	maxAge time.Duration
}

// ByAge builds a Policy that keeps snapshots within maxAge of now.
func ByAge(maxAge time.Duration) Policy {
	return byAgePolicy{maxAge: maxAge}
}

func (p byAgePolicy) Keep(now time.Time, snaps []BranchSnapshot) []bool {
	cutoff := now.Add(-p.maxAge)
	keep := make([]bool, len(snaps))
	for i, s := range snaps {
		keep[i] = !s.CapturedAt.Before(cutoff)
	}
	return keep
}

// byCountPolicy keeps the n most recently captured snapshots, ties
// broken by CapturedAt descending then by Hash descending so the
// decision is deterministic regardless of input order.
type byCountPolicy struct {
	n int
}

// ByCount builds a Policy that keeps the n newest snapshots.
func ByCount(n int) Policy {
	return byCountPolicy{n: n}
}

func (p byCountPolicy) Keep(_ time.Time, snaps []BranchSnapshot) []bool {
	keep := make([]bool, len(snaps))
	if p.n <= 0 {
		return keep
	}

	order := make([]int, len(snaps))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		sa, sb := snaps[order[a]], snaps[order[b]]
		if !sa.CapturedAt.Equal(sb.CapturedAt) {
			return sa.CapturedAt.After(sb.CapturedAt)
		}
		return sa.Hash > sb.Hash
	})

	limit := p.n
	if limit > len(order) {
		limit = len(order)
	}
	for _, idx := range order[:limit] {
		keep[idx] = true
	}
	return keep
}

// combinedPolicy keeps a snapshot only when both the age policy and
// the count policy would keep it — the intersection of their kept
// sets, never the union.
type combinedPolicy struct {
	age   Policy
	count Policy
}

// Combined builds a Policy requiring both maxAge and n to agree a
// snapshot survives.
func Combined(maxAge time.Duration, n int) Policy {
	return combinedPolicy{age: ByAge(maxAge), count: ByCount(n)}
}

func (p combinedPolicy) Keep(now time.Time, snaps []BranchSnapshot) []bool {
	byAge := p.age.Keep(now, snaps)
	byCount := p.count.Keep(now, snaps)
	keep := make([]bool, len(snaps))
	for i := range snaps {
		keep[i] = byAge[i] && byCount[i]
	}
	return keep
}
