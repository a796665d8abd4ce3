package litmus

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ehrlich-b/go-litmus/internal/affinity"
	"github.com/ehrlich-b/go-litmus/internal/ordering"
)

func TestStructuredError(t *testing.T) {
	err := NewError("NEW", ErrCodeInvalidParameters, "need two cpus")

	if err.Op != "NEW" {
		t.Errorf("Expected Op=NEW, got %s", err.Op)
	}
	if err.Code != ErrCodeInvalidParameters {
		t.Errorf("Expected Code=ErrCodeInvalidParameters, got %s", err.Code)
	}

	expected := "litmus: need two cpus (op=NEW)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
}

func TestWorkerError(t *testing.T) {
	err := NewWorkerError("RUN", 1, 42, ErrCodeSyncViolation, "duplicate completion")

	expected := "litmus: duplicate completion (op=RUN, worker=1, trial=42)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, ErrSyncViolation) {
		t.Error("Expected worker error to match ErrSyncViolation")
	}
	if errors.Is(err, ErrConfig) {
		t.Error("Expected worker error not to match ErrConfig")
	}
}

func TestErrorWithoutMessage(t *testing.T) {
	err := &Error{Code: ErrCodeAlreadyRunning, Worker: -1, Trial: -1}
	if err.Error() != "litmus: harness already running" {
		t.Errorf("Expected code text as message, got %q", err.Error())
	}
}

func TestWrapError(t *testing.T) {
	_, inner := ordering.ParseStrict("Consume")
	err := WrapError("PARSE", inner)

	if err.Code != ErrCodeUnknownOrdering {
		t.Errorf("Expected Code=ErrCodeUnknownOrdering, got %s", err.Code)
	}
	if !errors.Is(err, ordering.ErrUnknownMode) {
		t.Error("Expected wrapped error to satisfy errors.Is for ErrUnknownMode")
	}
	if !IsCode(err, ErrCodeUnknownOrdering) {
		t.Error("Expected IsCode to match")
	}

	aff := WrapError("PIN", fmt.Errorf("worker 0: %w", affinity.ErrUnsupported))
	if aff.Code != ErrCodeAffinity {
		t.Errorf("Expected Code=ErrCodeAffinity, got %s", aff.Code)
	}

	if WrapError("NOP", nil) != nil {
		t.Error("Expected WrapError(nil) to return nil")
	}
}

func TestWrapStructured(t *testing.T) {
	inner := NewWorkerError("RUN", 0, 7, ErrCodeSyncViolation, "stale trial")
	wrapped := WrapError("MAIN", fmt.Errorf("context: %w", inner))

	if wrapped.Op != "MAIN" {
		t.Errorf("Expected Op=MAIN, got %s", wrapped.Op)
	}
	if wrapped.Worker != 0 || wrapped.Trial != 7 {
		t.Errorf("Expected worker/trial to carry over, got %d/%d", wrapped.Worker, wrapped.Trial)
	}
	if !IsCode(wrapped, ErrCodeSyncViolation) {
		t.Error("Expected code to carry over")
	}
}

func TestIsCodeForeignError(t *testing.T) {
	if IsCode(errors.New("plain"), ErrCodeConfig) {
		t.Error("Expected plain error not to match any code")
	}
}
