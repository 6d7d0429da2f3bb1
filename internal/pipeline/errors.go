package pipeline

import (
	"errors"
	"fmt"
)

// ErrMissingArtifact is returned by a stage's Command method when an
// artifact from an earlier stage is absent from the run state. With the
// default plan this indicates a programming error, not a user error: the
// orchestrator only invokes a stage after its predecessors succeeded.
var ErrMissingArtifact = errors.New("required artifact from an earlier stage is missing")

// StageError wraps a stage failure with the name of the stage that failed.
// The pipeline aborts on the first StageError; callers use errors.As to
// recover the stage name and errors.Is/As on the wrapped error to
// distinguish exit failures from start failures and cancellation.
type StageError struct {
	// Stage is the short name of the failed stage.
	Stage string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *StageError) Unwrap() error {
	return e.Err
}
