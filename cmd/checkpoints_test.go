package main

import (
	"testing"
	"time"

	"github.com/mhoffmann/hiersearch/internal/store"
)

func infoAt(runID string, age time.Duration, now time.Time) store.CheckpointInfo {
	return store.CheckpointInfo{
		RunID:     runID,
		Timestamp: now.Add(-age),
	}
}

func TestSelectCheckpointsForDeletionByAge(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	infos := []store.CheckpointInfo{
		infoAt("old", 10*24*time.Hour, now),
		infoAt("recent", 2*24*time.Hour, now),
	}

	toDelete := selectCheckpointsForDeletion(infos, 0, 7, now)

	if len(toDelete) != 1 {
		t.Fatalf("Expected 1 deletion candidate, got %d", len(toDelete))
	}
	if toDelete[0].RunID != "old" {
		t.Errorf("Expected 'old' to be selected, got %q", toDelete[0].RunID)
	}
}

func TestSelectCheckpointsForDeletionKeepLast(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	infos := []store.CheckpointInfo{
		infoAt("c", 1*time.Hour, now),
		infoAt("a", 3*time.Hour, now),
		infoAt("b", 2*time.Hour, now),
	}

	toDelete := selectCheckpointsForDeletion(infos, 2, 0, now)

	if len(toDelete) != 1 {
		t.Fatalf("Expected 1 deletion candidate, got %d", len(toDelete))
	}
	if toDelete[0].RunID != "a" {
		t.Errorf("Expected oldest run 'a' to be selected, got %q", toDelete[0].RunID)
	}
}

func TestSelectCheckpointsForDeletionNoDuplicates(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	infos := []store.CheckpointInfo{
		infoAt("ancient", 30*24*time.Hour, now),
		infoAt("fresh", time.Hour, now),
	}

	// 'ancient' matches both the age cutoff and the keep-last policy;
	// it must be listed once.
	toDelete := selectCheckpointsForDeletion(infos, 1, 7, now)

	if len(toDelete) != 1 {
		t.Fatalf("Expected 1 deletion candidate, got %d", len(toDelete))
	}
	if toDelete[0].RunID != "ancient" {
		t.Errorf("Expected 'ancient', got %q", toDelete[0].RunID)
	}
}

func TestSelectCheckpointsForDeletionEmptyPolicy(t *testing.T) {
	now := time.Now()
	infos := []store.CheckpointInfo{infoAt("a", time.Hour, now)}

	if got := selectCheckpointsForDeletion(infos, 0, 0, now); len(got) != 0 {
		t.Errorf("Expected no candidates without a policy, got %d", len(got))
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("abc"); got != "abc" {
		t.Errorf("Expected short IDs unchanged, got %q", got)
	}
	if got := shortID("0123456789abcdef"); got != "0123456789ab..." {
		t.Errorf("Expected truncated ID, got %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
