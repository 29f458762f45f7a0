package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerdcore/reflexsub/internal/epoch"
)

var replayCmd = &cobra.Command{
	Use:   "replay <node-id>",
	Short: "Replay the deterministic derivation path that produced a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNodeID(args[0])
		if err != nil {
			return fmt.Errorf("invalid node id %q: %w", args[0], err)
		}

		path, err := epoch.ReplayPathTo(app.dag, id)
		if err != nil {
			return fmt.Errorf("failed to replay path: %w", err)
		}
		if len(path) == 0 {
			fmt.Println("(root node, no derivation edges)")
			return nil
		}
		for i, e := range path {
			fmt.Printf("%d. %s: %v -> %s\n", i+1, e.OperationName, e.InputIDs, e.OutputID)
		}
		return nil
	},
}
