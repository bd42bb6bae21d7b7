package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mhoffmann/hiersearch/internal/config"
	"github.com/mhoffmann/hiersearch/internal/hierarchy"
	"github.com/mhoffmann/hiersearch/internal/store"
	"github.com/mhoffmann/hiersearch/internal/strategy"
)

var (
	runConfigPath    string
	runHierarchyPath string
	runDataDir       string
	runID            string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Enumerate the full move schedule against a hierarchy",
	Long: `Drives the search schedule to exhaustion: every macro iteration is
expanded against the hierarchy's current candidate nodes and each emitted
move is appended to the run's trace file. Checkpoints are written
periodically so an interrupted run can be resumed.`,
	RunE: runSearch,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Search configuration file (required)")
	runCmd.Flags().StringVar(&runHierarchyPath, "hierarchy", "", "Hierarchy file (required)")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "./data", "Base directory for run state")
	runCmd.Flags().StringVar(&runID, "run-id", "", "Run identifier (default: random)")

	runCmd.MarkFlagRequired("config")
	runCmd.MarkFlagRequired("hierarchy")
	rootCmd.AddCommand(runCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return err
	}

	ix, err := hierarchy.Load(runHierarchyPath)
	if err != nil {
		return err
	}

	id := runID
	if id == "" {
		id = uuid.New().String()
	}

	ckStore, err := store.NewFSStore(runDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	tw, err := store.NewTraceWriter(runDataDir, id, false)
	if err != nil {
		return fmt.Errorf("failed to create trace writer: %w", err)
	}
	defer tw.Close()

	strat := cfg.Strategy()

	slog.Info("Starting enumeration",
		"run_id", id,
		"nodes", ix.Len(),
		"macro_iterations", strat.MacroCount(),
	)

	start := time.Now()
	emitted, macros, err := driveSearch(cfg, ix, strat, ckStore, tw, id, 0)
	if err != nil {
		return err
	}

	slog.Info("Enumeration complete",
		"run_id", id,
		"elapsed", time.Since(start),
		"macro_iterations", macros,
		"moves", emitted,
	)

	fmt.Printf("Run %s: %d macro iterations, %d moves (%s)\n", id, macros, emitted, tw.Path())
	return nil
}

// driveSearch serves macro iterations until the strategy is exhausted,
// re-deriving the candidate set from the hierarchy before each one and
// recording every emitted move. Returns the updated emitted-move count
// and the number of macro iterations served in this call.
func driveSearch(
	cfg config.SearchConfig,
	ix *hierarchy.Index,
	strat *strategy.Strategy,
	ckStore store.Store,
	tw *store.TraceWriter,
	id string,
	emitted int,
) (int, int, error) {
	order := cfg.OrderFunc()
	macros := 0

	for !strat.Done() {
		clusters := order(ix, ix.Root())
		macroCursor := strat.Cursor()

		it := strat.MacroIteration(clusters)
		for !it.Done() {
			s := it.Next()
			if s.Sentinel() {
				break
			}
			if err := tw.Write(moveRecord(macroCursor, s, ix)); err != nil {
				return emitted, macros, fmt.Errorf("failed to record move: %w", err)
			}
			strat.StepTracker[strategy.StepKey{Node: s.Target, Operation: s.Operation}] = macroCursor
			emitted++
		}
		macros++

		if cfg.CheckpointInterval > 0 && macros%cfg.CheckpointInterval == 0 {
			if err := saveProgress(ckStore, tw, strat, cfg, id, emitted); err != nil {
				return emitted, macros, err
			}
		}
	}

	if err := saveProgress(ckStore, tw, strat, cfg, id, emitted); err != nil {
		return emitted, macros, err
	}
	return emitted, macros, nil
}

func saveProgress(ckStore store.Store, tw *store.TraceWriter, strat *strategy.Strategy, cfg config.SearchConfig, id string, emitted int) error {
	ck := store.NewCheckpoint(id, strat.Cursor(), strat.MacroCount(), emitted, cfg)
	if err := ckStore.SaveCheckpoint(id, ck); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush trace: %w", err)
	}
	return nil
}

func moveRecord(macro int, s strategy.Step, ix *hierarchy.Index) store.MoveRecord {
	rec := store.MoveRecord{
		Macro:     macro,
		Index:     s.Index,
		Operation: s.Operation.String(),
		Target:    int32(s.Target),
		Bits:      s.Params.Refine.BitMin,
		Branches:  s.Params.Refine.BranchMin,
		Depth:     s.Params.Refine.DepthMin,
	}
	if len(s.Overlap) > 0 {
		rec.Overlap = s.Overlap[0]
	}
	if node, ok := ix.Node(s.Target); ok {
		rec.TargetName = node.Name
	}
	return rec
}
