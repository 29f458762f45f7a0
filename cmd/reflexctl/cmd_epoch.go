package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerdcore/reflexsub/internal/snapshot"
)

var epochCmd = &cobra.Command{
	Use:   "epoch",
	Short: "Fold branch snapshots into numbered, content-hashed epochs",
}

var epochCreateCmd = &cobra.Command{
	Use:   "create <branch> [branch...]",
	Short: "Capture every named branch and fold them into a new epoch",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		branches := make([]*snapshot.BranchLog, len(args))
		for i, name := range args {
			branches[i] = app.branchLog(name)
		}
		ep, err := app.epoch.CreateEpoch(context.Background(), branches, nil, nil)
		if err != nil {
			return fmt.Errorf("failed to create epoch: %w", err)
		}
		fmt.Printf("epoch #%d id=%s branches=%d\n", ep.Number, ep.ID, len(ep.Branches))
		return nil
	},
}

var epochShowCmd = &cobra.Command{
	Use:   "show <number>",
	Short: "Show one epoch by its 1-based sequential number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid epoch number %q: %w", args[0], err)
		}
		ep, err := app.epoch.GetEpoch(n)
		if err != nil {
			return fmt.Errorf("failed to get epoch: %w", err)
		}
		fmt.Printf("epoch #%d id=%s created_at=%s\n", ep.Number, ep.ID, ep.CreatedAt.Format(time.RFC3339))

		names := make([]string, 0, len(ep.Branches))
		for name := range ep.Branches {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b := ep.Branches[name]
			fmt.Printf("  branch %s events=%d hash=%s\n", name, len(b.Events), b.Hash)
		}
		return nil
	},
}

var epochMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print aggregate epoch metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := app.epoch.Metrics()
		fmt.Printf("total_epochs=%d total_branches=%d total_events=%d average_events_per_branch=%.2f last_epoch_time=%s\n",
			m.TotalEpochs, m.TotalBranches, m.TotalEvents, m.AverageEventsPerBranch, m.LastEpochTime.Format(time.RFC3339))
		return nil
	},
}

func init() {
	epochCmd.AddCommand(epochCreateCmd, epochShowCmd, epochMetricsCmd)
}
