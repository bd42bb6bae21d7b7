package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mhoffmann/hiersearch/internal/config"
)

// setupTestStore creates a temporary directory and returns an FSStore for testing.
func setupTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()

	tempDir := t.TempDir()
	fsStore, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}

	return fsStore, tempDir
}

// createTestCheckpoint creates a checkpoint with test data.
func createTestCheckpoint(runID string) *Checkpoint {
	cfg := config.Default()
	cfg.BitSearchLimit = 3
	cfg.Overlaps = []float64{0, 1}
	return NewCheckpoint(runID, 4, 12, 36, cfg)
}

func TestNewFSStore(t *testing.T) {
	tempDir := t.TempDir()

	fsStore, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	if fsStore == nil {
		t.Fatal("Expected non-nil store")
	}

	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		t.Fatal("Base directory was not created")
	}
}

func TestSaveAndLoadCheckpoint(t *testing.T) {
	fsStore, _ := setupTestStore(t)

	runID := "test-run-123"
	checkpoint := createTestCheckpoint(runID)

	if err := fsStore.SaveCheckpoint(runID, checkpoint); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	loaded, err := fsStore.LoadCheckpoint(runID)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}

	if loaded.RunID != runID {
		t.Errorf("Expected RunID %q, got %q", runID, loaded.RunID)
	}
	if loaded.Cursor != checkpoint.Cursor {
		t.Errorf("Expected cursor %d, got %d", checkpoint.Cursor, loaded.Cursor)
	}
	if loaded.MacroCount != checkpoint.MacroCount {
		t.Errorf("Expected macro count %d, got %d", checkpoint.MacroCount, loaded.MacroCount)
	}
	if loaded.StepsEmitted != checkpoint.StepsEmitted {
		t.Errorf("Expected steps emitted %d, got %d", checkpoint.StepsEmitted, loaded.StepsEmitted)
	}
	if loaded.Config.BitSearchLimit != 3 {
		t.Errorf("Expected embedded config to round-trip, got bit limit %d", loaded.Config.BitSearchLimit)
	}
	if len(loaded.Config.Overlaps) != 2 {
		t.Errorf("Expected 2 overlaps, got %d", len(loaded.Config.Overlaps))
	}
}

func TestSaveCheckpointValidation(t *testing.T) {
	fsStore, _ := setupTestStore(t)

	if err := fsStore.SaveCheckpoint("", createTestCheckpoint("x")); err == nil {
		t.Error("Expected error for empty runID")
	}
	if err := fsStore.SaveCheckpoint("run", nil); err == nil {
		t.Error("Expected error for nil checkpoint")
	}
}

func TestSaveCheckpointOverwrites(t *testing.T) {
	fsStore, _ := setupTestStore(t)
	runID := "overwrite-run"

	first := createTestCheckpoint(runID)
	if err := fsStore.SaveCheckpoint(runID, first); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	second := createTestCheckpoint(runID)
	second.Cursor = 9
	if err := fsStore.SaveCheckpoint(runID, second); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := fsStore.LoadCheckpoint(runID)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if loaded.Cursor != 9 {
		t.Errorf("Expected overwritten cursor 9, got %d", loaded.Cursor)
	}
}

func TestLoadCheckpointNotFound(t *testing.T) {
	fsStore, _ := setupTestStore(t)

	_, err := fsStore.LoadCheckpoint("no-such-run")
	if err == nil {
		t.Fatal("Expected error for missing checkpoint")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}

func TestListCheckpoints(t *testing.T) {
	fsStore, tempDir := setupTestStore(t)

	infos, err := fsStore.ListCheckpoints()
	if err != nil {
		t.Fatalf("ListCheckpoints failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("Expected empty listing, got %d entries", len(infos))
	}

	for _, runID := range []string{"run-a", "run-b"} {
		if err := fsStore.SaveCheckpoint(runID, createTestCheckpoint(runID)); err != nil {
			t.Fatalf("SaveCheckpoint failed: %v", err)
		}
	}

	// Directories without a checkpoint are skipped.
	if err := os.MkdirAll(filepath.Join(tempDir, "runs", "stray"), 0755); err != nil {
		t.Fatalf("Failed to create stray directory: %v", err)
	}

	infos, err = fsStore.ListCheckpoints()
	if err != nil {
		t.Fatalf("ListCheckpoints failed: %v", err)
	}
	if len(infos) != 2 {
		t.Errorf("Expected 2 checkpoints, got %d", len(infos))
	}
}

func TestDeleteCheckpoint(t *testing.T) {
	fsStore, _ := setupTestStore(t)
	runID := "delete-run"

	if err := fsStore.SaveCheckpoint(runID, createTestCheckpoint(runID)); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	if err := fsStore.DeleteCheckpoint(runID); err != nil {
		t.Fatalf("DeleteCheckpoint failed: %v", err)
	}

	if _, err := fsStore.LoadCheckpoint(runID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected checkpoint to be gone, got %v", err)
	}

	if err := fsStore.DeleteCheckpoint(runID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected NotFoundError on second delete, got %v", err)
	}
}

func TestCheckpointTimestampSurvivesRoundTrip(t *testing.T) {
	fsStore, _ := setupTestStore(t)
	runID := "ts-run"

	checkpoint := createTestCheckpoint(runID)
	if err := fsStore.SaveCheckpoint(runID, checkpoint); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	loaded, err := fsStore.LoadCheckpoint(runID)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if !loaded.Timestamp.Truncate(time.Millisecond).Equal(checkpoint.Timestamp.Truncate(time.Millisecond)) {
		t.Errorf("Timestamp changed across round trip: %v vs %v", checkpoint.Timestamp, loaded.Timestamp)
	}
}
