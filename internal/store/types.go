package store

import (
	"fmt"
	"time"

	"github.com/mhoffmann/hiersearch/internal/config"
)

// Checkpoint is the resumable state of an enumeration run. It holds the
// strategy cursor and the configuration the schedule was built from;
// the schedule itself is deterministic and is rebuilt on resume rather
// than stored.
type Checkpoint struct {
	// RunID identifies the run this checkpoint belongs to.
	RunID string `json:"runId"`

	// Cursor is the strategy's macro cursor: the next macro iteration
	// to serve.
	Cursor int `json:"cursor"`

	// MacroCount is the total number of macro iterations in the
	// schedule at checkpoint time.
	MacroCount int `json:"macroCount"`

	// StepsEmitted counts the steps written to the trace so far.
	StepsEmitted int `json:"stepsEmitted"`

	// Timestamp records when the checkpoint was written.
	Timestamp time.Time `json:"timestamp"`

	// Config is the search configuration the schedule derives from.
	// Resume refuses checkpoints whose config would not reproduce the
	// same schedule.
	Config config.SearchConfig `json:"config"`
}

// NewCheckpoint captures the current run state.
func NewCheckpoint(runID string, cursor, macroCount, stepsEmitted int, cfg config.SearchConfig) *Checkpoint {
	return &Checkpoint{
		RunID:        runID,
		Cursor:       cursor,
		MacroCount:   macroCount,
		StepsEmitted: stepsEmitted,
		Timestamp:    time.Now(),
		Config:       cfg,
	}
}

// CheckpointInfo is checkpoint metadata for listings.
type CheckpointInfo struct {
	RunID        string    `json:"runId"`
	Cursor       int       `json:"cursor"`
	MacroCount   int       `json:"macroCount"`
	StepsEmitted int       `json:"stepsEmitted"`
	Timestamp    time.Time `json:"timestamp"`
}

// ToInfo strips the checkpoint down to listing metadata.
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		RunID:        c.RunID,
		Cursor:       c.Cursor,
		MacroCount:   c.MacroCount,
		StepsEmitted: c.StepsEmitted,
		Timestamp:    c.Timestamp,
	}
}

// Validate checks that the checkpoint is internally consistent.
func (c *Checkpoint) Validate() error {
	if c.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if c.Cursor < 0 {
		return &ValidationError{Field: "Cursor", Reason: "cannot be negative"}
	}
	if c.MacroCount < 0 {
		return &ValidationError{Field: "MacroCount", Reason: "cannot be negative"}
	}
	if c.Cursor > c.MacroCount {
		return &ValidationError{Field: "Cursor", Reason: "cannot exceed MacroCount"}
	}
	if c.StepsEmitted < 0 {
		return &ValidationError{Field: "StepsEmitted", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	return nil
}

// ValidationError reports an inconsistent checkpoint field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks whether resuming under cfg reproduces the same
// schedule this checkpoint's cursor refers to. Every field that feeds
// the build must match; knobs that only pass through (acceptance
// policy, checkpoint interval) may differ.
func (c *Checkpoint) IsCompatible(cfg config.SearchConfig) error {
	if err := compareInt("BitSearchMin", c.Config.BitSearchMin, cfg.BitSearchMin); err != nil {
		return err
	}
	if err := compareInt("BitSearchLimit", c.Config.BitSearchLimit, cfg.BitSearchLimit); err != nil {
		return err
	}
	if err := compareInt("BranchDepthMin", c.Config.BranchDepthMin, cfg.BranchDepthMin); err != nil {
		return err
	}
	if err := compareInt("BranchDepthLimit", c.Config.BranchDepthLimit, cfg.BranchDepthLimit); err != nil {
		return err
	}
	if err := compareInt("BranchLimit", c.Config.BranchLimit, cfg.BranchLimit); err != nil {
		return err
	}
	if c.Config.EnableMerge != cfg.EnableMerge {
		return &CompatibilityError{Field: "EnableMerge",
			Expected: fmt.Sprintf("%t", c.Config.EnableMerge), Actual: fmt.Sprintf("%t", cfg.EnableMerge)}
	}
	if c.Config.EnableSplit != cfg.EnableSplit {
		return &CompatibilityError{Field: "EnableSplit",
			Expected: fmt.Sprintf("%t", c.Config.EnableSplit), Actual: fmt.Sprintf("%t", cfg.EnableSplit)}
	}
	if len(c.Config.Overlaps) != len(cfg.Overlaps) {
		return &CompatibilityError{Field: "Overlaps",
			Expected: fmt.Sprintf("%d values", len(c.Config.Overlaps)), Actual: fmt.Sprintf("%d values", len(cfg.Overlaps))}
	}
	for i := range c.Config.Overlaps {
		if c.Config.Overlaps[i] != cfg.Overlaps[i] {
			return &CompatibilityError{Field: "Overlaps",
				Expected: fmt.Sprintf("%g", c.Config.Overlaps[i]), Actual: fmt.Sprintf("%g", cfg.Overlaps[i])}
		}
	}
	return nil
}

func compareInt(field string, expected, actual int) error {
	if expected != actual {
		return &CompatibilityError{
			Field:    field,
			Expected: fmt.Sprintf("%d", expected),
			Actual:   fmt.Sprintf("%d", actual),
		}
	}
	return nil
}

// CompatibilityError reports a config mismatch between a checkpoint and
// the configuration offered for resume.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
