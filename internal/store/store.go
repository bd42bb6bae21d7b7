package store

// Store persists search-run checkpoints.
//
// Error conventions:
//   - nil on success
//   - a *NotFoundError (match with errors.Is(err, ErrNotFound)) when the
//     run has no checkpoint
//   - wrapped errors with context for I/O and serialization failures
type Store interface {
	// SaveCheckpoint atomically writes the checkpoint for a run,
	// replacing any previous one.
	SaveCheckpoint(runID string, checkpoint *Checkpoint) error

	// LoadCheckpoint reads the checkpoint for a run.
	LoadCheckpoint(runID string) (*Checkpoint, error)

	// ListCheckpoints returns metadata for every stored checkpoint.
	ListCheckpoints() ([]CheckpointInfo, error)

	// DeleteCheckpoint removes a run's checkpoint together with its
	// trace file.
	DeleteCheckpoint(runID string) error
}

// ErrNotFound is the target for errors.Is checks on missing
// checkpoints.
var ErrNotFound = &NotFoundError{}

// NotFoundError reports a missing checkpoint.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "checkpoint not found: " + e.RunID
	}
	return "checkpoint not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
