package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerdcore/reflexsub/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture and inspect per-branch snapshots",
}

var snapshotCaptureCmd = &cobra.Command{
	Use:   "capture <branch>",
	Short: "Capture a point-in-time snapshot of a branch and persist it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch := app.branchLog(args[0])
		snap := snapshot.Capture(branch, app.clk.Now(), nil)
		if err := app.store.PutSnapshot(context.Background(), snap); err != nil {
			return fmt.Errorf("failed to persist snapshot: %w", err)
		}
		fmt.Printf("%s events=%d hash=%s\n", snap.BranchName, len(snap.Events), snap.Hash)
		return nil
	},
}

var (
	retainMaxAge time.Duration
	retainKeep   int
	retainDryRun bool
)

var snapshotRetainCmd = &cobra.Command{
	Use:   "retain <branch>",
	Short: "Evaluate a retention plan for a branch's stored snapshots",
	Long: `Prints which snapshots the chosen policy would keep and delete.
reflexctl never deletes a snapshot itself: execution of a non-dry-run
plan is left to a collaborator with direct storage access.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch := args[0]
		snaps, err := app.store.IterSnapshots(context.Background(), branch)
		if err != nil {
			return fmt.Errorf("failed to list snapshots: %w", err)
		}

		maxAge := retainMaxAge
		if maxAge == 0 {
			maxAge = app.cfg.Snapshot.DefaultMaxAge
		}
		keep := retainKeep
		if keep == 0 {
			keep = app.cfg.Snapshot.DefaultKeepCount
		}

		plan := snapshot.Evaluate(app.clk.Now(), snaps, snapshot.Combined(maxAge, keep), retainDryRun)
		fmt.Printf("keep=%d delete=%d dry_run=%v\n", len(plan.ToKeep), len(plan.ToDelete), plan.IsDryRun)
		for _, s := range plan.ToDelete {
			fmt.Printf("  delete %s captured_at=%s\n", s.Hash, s.CapturedAt.Format(time.RFC3339))
		}
		return nil
	},
}

func init() {
	snapshotRetainCmd.Flags().DurationVar(&retainMaxAge, "max-age", 0, "Override snapshot.default_max_age")
	snapshotRetainCmd.Flags().IntVar(&retainKeep, "keep", 0, "Override snapshot.default_keep_count")
	snapshotRetainCmd.Flags().BoolVar(&retainDryRun, "dry-run", true, "Compute the plan without marking anything for deletion")

	snapshotCmd.AddCommand(snapshotCaptureCmd, snapshotRetainCmd)
}
