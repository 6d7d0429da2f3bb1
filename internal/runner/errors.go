package runner

import (
	"errors"
	"fmt"
)

// ErrEmptyCommand is returned when a Command has no program to run.
var ErrEmptyCommand = errors.New("empty command: no program specified")

// ExitError is returned when an external tool starts successfully but exits
// with a non-zero status. It carries the rendered command line and the exit
// code so failures can be reported without re-parsing tool output.
type ExitError struct {
	// Command is the full command line that was executed.
	Command string

	// ExitCode is the tool's exit status.
	ExitCode int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with code %d", e.Command, e.ExitCode)
}
