package cli

import (
	"errors"
	"fmt"
)

// Exit codes for the litmus-sb binary
const (
	ExitSuccess      = 0 // Bounded run finished, or stopped by a signal
	ExitFailure      = 1 // The run itself failed (synchronization violation, affinity)
	ExitCommandError = 2 // Bad flags or config file
)

// ExitError carries the process exit code for an error returned by a command
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps err with an exit code
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
