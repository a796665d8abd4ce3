package litmus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ehrlich-b/go-litmus/internal/affinity"
	"github.com/ehrlich-b/go-litmus/internal/ordering"
)

// Error represents a structured harness error with context
type Error struct {
	Op     string    // Operation that failed (e.g., "NEW", "RUN", "PIN")
	Worker int       // Worker id (-1 if not applicable)
	Trial  int64     // Trial number (-1 if not applicable)
	Code   ErrorCode // High-level error category
	Msg    string    // Human-readable message
	Inner  error     // Wrapped error
}

// Error implements the error interface
func (e *Error) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Worker >= 0 {
		parts = append(parts, fmt.Sprintf("worker=%d", e.Worker))
	}
	if e.Trial >= 0 {
		parts = append(parts, fmt.Sprintf("trial=%d", e.Trial))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("litmus: %s (%s)", msg, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("litmus: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is matches another *Error with the same code
func (e *Error) Is(target error) bool {
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// ErrorCode represents high-level error categories
type ErrorCode string

const (
	ErrCodeInvalidParameters ErrorCode = "invalid parameters"
	ErrCodeUnknownOrdering   ErrorCode = "unknown ordering"
	ErrCodeSyncViolation     ErrorCode = "synchronization violation"
	ErrCodeAlreadyRunning    ErrorCode = "harness already running"
	ErrCodeAffinity          ErrorCode = "cpu affinity failure"
	ErrCodeConfig            ErrorCode = "config error"
)

// Sentinel errors for errors.Is
var (
	ErrInvalidParameters = &Error{Code: ErrCodeInvalidParameters, Worker: -1, Trial: -1}
	ErrUnknownOrdering   = &Error{Code: ErrCodeUnknownOrdering, Worker: -1, Trial: -1}
	ErrSyncViolation     = &Error{Code: ErrCodeSyncViolation, Worker: -1, Trial: -1}
	ErrAlreadyRunning    = &Error{Code: ErrCodeAlreadyRunning, Worker: -1, Trial: -1}
	ErrAffinity          = &Error{Code: ErrCodeAffinity, Worker: -1, Trial: -1}
	ErrConfig            = &Error{Code: ErrCodeConfig, Worker: -1, Trial: -1}
)

// NewError creates a new structured error
func NewError(op string, code ErrorCode, msg string) *Error {
	return &Error{
		Op:     op,
		Worker: -1,
		Trial:  -1,
		Code:   code,
		Msg:    msg,
	}
}

// NewWorkerError creates an error tied to a worker and trial.
// Pass -1 for either when it does not apply.
func NewWorkerError(op string, worker int, trial int64, code ErrorCode, msg string) *Error {
	return &Error{
		Op:     op,
		Worker: worker,
		Trial:  trial,
		Code:   code,
		Msg:    msg,
	}
}

// WrapError wraps an existing error with harness context
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}

	// If it's already a structured error, just update the operation
	var le *Error
	if errors.As(inner, &le) {
		return &Error{
			Op:     op,
			Worker: le.Worker,
			Trial:  le.Trial,
			Code:   le.Code,
			Msg:    le.Msg,
			Inner:  le.Inner,
		}
	}

	return &Error{
		Op:     op,
		Worker: -1,
		Trial:  -1,
		Code:   mapErrorToCode(inner),
		Msg:    inner.Error(),
		Inner:  inner,
	}
}

// mapErrorToCode maps errors from the internal packages to error codes
func mapErrorToCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ordering.ErrUnknownMode):
		return ErrCodeUnknownOrdering
	case errors.Is(err, affinity.ErrUnsupported):
		return ErrCodeAffinity
	default:
		return ErrCodeInvalidParameters
	}
}

// IsCode checks if an error matches a specific error code
func IsCode(err error, code ErrorCode) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}
