// Package main implements reflexctl, a thin demonstration CLI over the
// reasoning substrate: submit events, capture branch snapshots, fold
// them into epochs, replay a node's derivation, and run PCM frames
// through the adaptive speech-activity detector. It is a collaborator,
// never imported by internal/ or pkg/ packages.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdcore/reflexsub/internal/clock"
	"github.com/nerdcore/reflexsub/internal/config"
	"github.com/nerdcore/reflexsub/internal/epoch"
	"github.com/nerdcore/reflexsub/internal/logging"
	"github.com/nerdcore/reflexsub/internal/snapshot"
	"github.com/nerdcore/reflexsub/internal/store"
	"github.com/nerdcore/reflexsub/pkg/graph"
)

var (
	workspace  string
	configPath string
	verbose    bool

	app *application
)

// application bundles the wired substrate a subcommand operates on.
// Built once in rootCmd's PersistentPreRunE, mirroring the teacher's
// root-level global-state convention.
type application struct {
	cfg   *config.Config
	log   *logging.Logger
	store store.Port
	clk   clock.Clock
	dag   *graph.Dag
	epoch *epoch.Projector

	branchesMu sync.Mutex
	branches   map[string]*snapshot.BranchLog
}

func newApplication(cfg *config.Config) (*application, error) {
	log, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	var port store.Port
	switch cfg.Store.Driver {
	case "sqlite":
		port, err = store.OpenSQLitePort(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
	default:
		port = store.NewMemoryPort()
	}

	a := &application{
		cfg:      cfg,
		log:      log,
		store:    port,
		clk:      clock.Wall{},
		branches: make(map[string]*snapshot.BranchLog),
	}

	a.dag = graph.New(graph.Hooks{
		OnNodeAdded: func(n graph.Node) {
			if err := port.PutNode(context.Background(), n); err != nil {
				a.log.For(logging.CategoryStore).Error("persist node failed", zap.Error(err))
			}
		},
		OnEdgeAdded: func(e graph.TransitionEdge) {
			if err := port.PutEdge(context.Background(), e); err != nil {
				a.log.For(logging.CategoryStore).Error("persist edge failed", zap.Error(err))
			}
		},
	})

	a.epoch = epoch.NewProjector(a.clk, cfg.Epoch.AllowClear, epoch.Hooks{
		OnEpochCreated: func(ep epoch.Epoch) {
			for _, snap := range ep.Branches {
				if err := port.PutSnapshot(context.Background(), snap); err != nil {
					a.log.For(logging.CategoryStore).Error("persist snapshot failed", zap.Error(err))
				}
			}
		},
	})

	return a, nil
}

func (a *application) branchLog(name string) *snapshot.BranchLog {
	a.branchesMu.Lock()
	defer a.branchesMu.Unlock()
	b, ok := a.branches[name]
	if !ok {
		b = snapshot.NewBranchLog(name)
		a.branches[name] = b
	}
	return b
}

var rootCmd = &cobra.Command{
	Use:   "reflexctl",
	Short: "reflexctl - reasoning substrate demonstration CLI",
	Long: `reflexctl exercises the versioned, content-addressed reasoning graph:
submit events into the Merkle-DAG, capture per-branch snapshots, fold
snapshots into numbered epochs, replay a node's derivation path, and
run raw PCM frames through the adaptive speech-activity detector.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			ws := workspace
			if ws == "" {
				ws, _ = os.Getwd()
			}
			path = filepath.Join(ws, "reflexsub.yaml")
		}

		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if verbose {
			cfg.Logging.Development = true
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		a, err := newApplication(cfg)
		if err != nil {
			return err
		}
		app = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app == nil {
			return
		}
		_ = app.log.Sync()
		if err := app.store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close store: %v\n", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to reflexsub.yaml (default: <workspace>/reflexsub.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable development-mode logging")

	rootCmd.AddCommand(
		submitCmd,
		snapshotCmd,
		epochCmd,
		replayCmd,
		vadCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
