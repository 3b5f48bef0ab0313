package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("root")
	err := (&DomainError{
		Category: ErrCatData,
		Code:     "CODE",
		Message:  "message",
	}).WithCause(cause)

	if err.Unwrap() != cause {
		t.Fatalf("expected cause to be unwrapped")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to match cause")
	}

	match := &DomainError{Category: ErrCatData, Code: "CODE"}
	if !errors.Is(err, match) {
		t.Fatalf("expected errors.Is to match category and code")
	}
	if got := err.Error(); got != "[data] CODE: message (root)" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := &DomainError{Category: ErrCatProgramming, Code: "X", Message: "msg"}
	err.WithDetail("k", "v")
	if err.Details == nil || err.Details["k"] != "v" {
		t.Fatalf("expected details to be set")
	}
}

func TestIsRecoverable(t *testing.T) {
	if !IsRecoverable(ErrData(CodeMalformedValue, "m")) {
		t.Fatalf("data errors should be recoverable")
	}
	if !IsRecoverable(fmt.Errorf("wrapped: %w", ErrStructure(CodeMissingAttribute, "m"))) {
		t.Fatalf("wrapped structure errors should be recoverable")
	}
	if IsRecoverable(ErrProgramming(CodeUnsupportedType, "m")) {
		t.Fatalf("programming errors must not be recoverable")
	}
	if IsRecoverable(errors.New("plain")) {
		t.Fatalf("plain errors must not be recoverable")
	}
}

func TestGetCategory(t *testing.T) {
	if GetCategory(ErrStorage("C", "m")) != ErrCatStorage {
		t.Fatalf("expected storage category")
	}
	if GetCategory(errors.New("plain")) != ErrCatInternal {
		t.Fatalf("expected internal category for non-domain error")
	}
	if !IsCategory(ErrNotFound("tool", "x"), ErrCatNotFound) {
		t.Fatalf("expected category match")
	}
}
