package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	err := ErrValidation(CodePhaseUnknown, "unknown phase")
	want := "[validation] PHASE_UNKNOWN: unknown phase"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestDomainError_Is(t *testing.T) {
	err := ErrGate(CodeRequirementsMissing, "blocked")
	target := &DomainError{Category: ErrCatGate, Code: CodeRequirementsMissing}
	if !errors.Is(err, target) {
		t.Fatalf("expected errors.Is match on category and code")
	}
	other := &DomainError{Category: ErrCatGate, Code: CodeValidationGate}
	if errors.Is(err, other) {
		t.Fatalf("expected mismatch on different code")
	}
	if errors.Is(err, errors.New("plain")) {
		t.Fatalf("expected mismatch on non-domain error")
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := ErrState(CodeStateCorrupted, "bad checksum").
		WithDetail("path", "/tmp/state.json").
		WithDetail("attempt", 2)
	if err.Details["path"] != "/tmp/state.json" {
		t.Fatalf("expected path detail")
	}
	if err.Details["attempt"] != 2 {
		t.Fatalf("expected attempt detail")
	}
}

func TestGetCategory(t *testing.T) {
	if GetCategory(ErrNotFound("protocol", "x")) != ErrCatNotFound {
		t.Fatalf("expected not_found category")
	}
	if GetCategory(errors.New("plain")) != ErrCatInternal {
		t.Fatalf("expected plain errors classified internal")
	}

	// Wrapped domain errors still classify.
	wrapped := fmt.Errorf("loading: %w", ErrState(CodeStateCorrupted, "bad"))
	if !IsCategory(wrapped, ErrCatState) {
		t.Fatalf("expected wrapped error to keep its category")
	}
}
