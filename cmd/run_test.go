package main

import (
	"testing"

	"github.com/mhoffmann/hiersearch/internal/config"
	"github.com/mhoffmann/hiersearch/internal/hierarchy"
	"github.com/mhoffmann/hiersearch/internal/store"
	"github.com/mhoffmann/hiersearch/internal/strategy"
)

func testHierarchy(t *testing.T) *hierarchy.Index {
	t.Helper()

	ix := hierarchy.NewIndex("root")
	if _, err := ix.Add(ix.Root(), "a"); err != nil {
		t.Fatalf("Failed to build hierarchy: %v", err)
	}
	if _, err := ix.Add(ix.Root(), "b"); err != nil {
		t.Fatalf("Failed to build hierarchy: %v", err)
	}
	return ix
}

func TestDriveSearchEmitsFullCrossProduct(t *testing.T) {
	cfg := config.Default()
	cfg.BitSearchLimit = 2 // 2 bits x 2 ops = 4 macro iterations
	cfg.CheckpointInterval = 1

	ix := testHierarchy(t)
	strat := cfg.Strategy()

	dataDir := t.TempDir()
	ckStore, err := store.NewFSStore(dataDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	tw, err := store.NewTraceWriter(dataDir, "run-x", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}

	emitted, macros, err := driveSearch(cfg, ix, strat, ckStore, tw, "run-x", 0)
	if err != nil {
		t.Fatalf("driveSearch failed: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if macros != 4 {
		t.Errorf("Expected 4 macro iterations, got %d", macros)
	}
	// 3 hierarchy nodes per macro iteration.
	if emitted != 12 {
		t.Errorf("Expected 12 moves, got %d", emitted)
	}
	if !strat.Done() {
		t.Error("Expected strategy exhausted")
	}

	ck, err := ckStore.LoadCheckpoint("run-x")
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if ck.Cursor != 4 || ck.StepsEmitted != 12 {
		t.Errorf("Unexpected final checkpoint: cursor=%d steps=%d", ck.Cursor, ck.StepsEmitted)
	}

	tr, err := store.NewTraceReader(dataDir, "run-x")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	records, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(records) != 12 {
		t.Fatalf("Expected 12 trace records, got %d", len(records))
	}
	if records[0].Macro != 0 || records[0].Index != 0 {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if records[0].TargetName != "root" {
		t.Errorf("Expected dive order to start at the root, got %q", records[0].TargetName)
	}
}

func TestDriveSearchResumeContinuesSchedule(t *testing.T) {
	cfg := config.Default()
	cfg.BitSearchLimit = 3 // 3 bits x 2 ops = 6 macro iterations

	ix := testHierarchy(t)
	dataDir := t.TempDir()
	ckStore, err := store.NewFSStore(dataDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	// Fresh run produces the reference trace.
	full := cfg.Strategy()
	tw, err := store.NewTraceWriter(dataDir, "full", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	fullEmitted, _, err := driveSearch(cfg, ix, full, ckStore, tw, "full", 0)
	if err != nil {
		t.Fatalf("driveSearch failed: %v", err)
	}
	tw.Close()

	// Interrupted run: rebuild the schedule, jump to the midpoint, and
	// finish.
	resumed := cfg.Strategy()
	resumed.MacroCount()
	resumed.Seek(3)

	tw, err = store.NewTraceWriter(dataDir, "resumed", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	emitted, macros, err := driveSearch(cfg, ix, resumed, ckStore, tw, "resumed", 9)
	if err != nil {
		t.Fatalf("driveSearch failed: %v", err)
	}
	tw.Close()

	if macros != 3 {
		t.Errorf("Expected 3 remaining macro iterations, got %d", macros)
	}
	if emitted != fullEmitted {
		t.Errorf("Expected resumed total %d to match full run, got %d", fullEmitted, emitted)
	}
}

func TestMoveRecordFields(t *testing.T) {
	ix := testHierarchy(t)
	a, _ := ix.Lookup("a")

	s := strategy.Step{
		Index:     2,
		Target:    a,
		Operation: strategy.Split,
		Overlap:   []float64{0.5},
		Params: strategy.Params{
			Refine: strategy.Refinement{BitMin: 2, BitMax: 2, BranchMin: 1, BranchMax: 1, DepthMin: 1, DepthMax: 1},
		},
	}

	rec := moveRecord(5, s, ix)

	if rec.Macro != 5 || rec.Index != 2 {
		t.Errorf("Unexpected position fields: %+v", rec)
	}
	if rec.Operation != "split" {
		t.Errorf("Expected operation split, got %q", rec.Operation)
	}
	if rec.TargetName != "a" {
		t.Errorf("Expected target name resolved, got %q", rec.TargetName)
	}
	if rec.Overlap != 0.5 || rec.Bits != 2 || rec.Branches != 1 || rec.Depth != 1 {
		t.Errorf("Unexpected parameter fields: %+v", rec)
	}
}
