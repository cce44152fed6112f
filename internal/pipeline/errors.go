package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline submission. Match them with errors.Is.
var (
	// ErrEmptyPipeline indicates no commands were submitted
	ErrEmptyPipeline = errors.New("no commands provided")

	// ErrInvalidCommand indicates a command could not be tokenized or was empty
	ErrInvalidCommand = errors.New("invalid command")

	// ErrSpawnFailed indicates the OS could not find or start a command
	ErrSpawnFailed = errors.New("failed to spawn command")
)

// CommandError describes a stage that could not be started.
type CommandError struct {
	// Stage is the zero-based position of the command in the pipeline.
	Stage      int
	Command    string
	Executable string
	// Suggestion is a similarly named executable on $PATH, if any.
	Suggestion string
	Kind       error
	Cause      error
}

func (e *CommandError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrInvalidCommand) && e.Cause == nil:
		return fmt.Sprintf("stage %d: the command is empty", e.Stage+1)
	case errors.Is(e.Kind, ErrInvalidCommand):
		return fmt.Sprintf("stage %d: failed to parse %q: %v", e.Stage+1, e.Command, e.Cause)
	case e.Suggestion != "":
		return fmt.Sprintf("command %q is not found (did you mean %q?)", e.Executable, e.Suggestion)
	case e.isNotFound():
		return fmt.Sprintf("command %q is not found", e.Executable)
	default:
		return fmt.Sprintf("failed to start %q: %v", e.Executable, e.Cause)
	}
}

// Unwrap returns the sentinel kind and the underlying cause.
func (e *CommandError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func (e *CommandError) isNotFound() bool {
	return e.Cause != nil && isNotFound(e.Cause)
}
