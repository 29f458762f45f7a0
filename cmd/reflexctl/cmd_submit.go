package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nerdcore/reflexsub/internal/snapshot"
	"github.com/nerdcore/reflexsub/pkg/graph"
)

var (
	submitTypeName string
	submitParents  []string
	submitBranch   string
	submitOp       string
)

var submitCmd = &cobra.Command{
	Use:   "submit <payload>",
	Short: "Add a node (and, if parents are given, its transition edge) to the graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		node := graph.Node{
			ID:        graph.NewNodeID(),
			TypeName:  submitTypeName,
			Payload:   graph.BytesPayload(args[0]),
			CreatedAt: app.clk.Now(),
		}

		var parentIDs []graph.NodeID
		for _, p := range submitParents {
			id, err := parseNodeID(p)
			if err != nil {
				return fmt.Errorf("invalid --parent %q: %w", p, err)
			}
			parentIDs = append(parentIDs, id)
		}
		node.ParentIDs = parentIDs

		if err := app.dag.AddNode(node); err != nil {
			return fmt.Errorf("failed to add node: %w", err)
		}

		if len(parentIDs) > 0 {
			edge := graph.TransitionEdge{
				ID:            graph.NewEdgeID(),
				InputIDs:      parentIDs,
				OutputID:      node.ID,
				OperationName: submitOp,
				CreatedAt:     app.clk.Now(),
			}
			if err := app.dag.AddEdge(edge); err != nil {
				return fmt.Errorf("failed to add edge: %w", err)
			}
		}

		if submitBranch != "" {
			app.branchLog(submitBranch).Append(snapshot.Event{Payload: []byte(args[0])})
		}

		fmt.Println(node.ID.String())
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitTypeName, "type", "event", "Node type name")
	submitCmd.Flags().StringSliceVar(&submitParents, "parent", nil, "Parent node id (repeatable); when set, a transition edge is also added")
	submitCmd.Flags().StringVar(&submitOp, "op", "submit", "Operation name for the transition edge")
	submitCmd.Flags().StringVar(&submitBranch, "branch", "", "Branch name to also append this payload to as an event")
}

func parseNodeID(s string) (graph.NodeID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return graph.NodeID{}, err
	}
	return graph.NodeID(u), nil
}
