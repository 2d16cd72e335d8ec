package store

// Store defines the interface for fit-result persistence.
// Implementations must be thread-safe and handle concurrent access
// gracefully.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if a record doesn't exist (for Load/Delete)
//   - Return descriptive errors for I/O, serialization, or validation failures
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveResult atomically saves the record for the given job. An
	// existing record for this jobID is overwritten. Implementations
	// should use atomic write strategies (e.g., temp file + rename) to
	// prevent corruption.
	SaveResult(jobID string, record *ResultRecord) error

	// LoadResult retrieves the record for the given job.
	// Returns ErrNotFound if no record exists for this jobID.
	LoadResult(jobID string) (*ResultRecord, error)

	// ListResults returns metadata for all persisted results. The
	// returned slice may be empty.
	ListResults() ([]ResultInfo, error)

	// DeleteResult removes the record and all associated artifacts for
	// the given job (result.json, trace.jsonl, plot.png).
	// Returns ErrNotFound if no record exists for this jobID.
	DeleteResult(jobID string) error
}

// ErrNotFound is returned when a requested result does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing result record.
type NotFoundError struct {
	JobID string
}

func (e *NotFoundError) Error() string {
	if e.JobID != "" {
		return "result not found: " + e.JobID
	}
	return "result not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
