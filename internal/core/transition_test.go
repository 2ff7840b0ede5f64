package core

import (
	"errors"
	"testing"
)

func TestTransitioner_AgentCompleted(t *testing.T) {
	r := testRegistry(t)
	state := newTestState(t, r, "test_protocol")
	tr := NewTransitioner(r)

	if err := tr.AgentCompleted(state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.PhaseStatus != GateWorking {
		t.Fatalf("expected working status, got %s", state.PhaseStatus)
	}
	if !state.PhaseState("x").AgentCompleted {
		t.Fatalf("expected agent_completed recorded for phase x")
	}

	// Idempotent: a second call is a no-op, not an error.
	if err := tr.AgentCompleted(state); err != nil {
		t.Fatalf("expected idempotent agent completion, got %v", err)
	}
}

func TestTransitioner_AgentCompleted_NoWorkflow(t *testing.T) {
	tr := NewTransitioner(testRegistry(t))
	err := tr.AgentCompleted(EmptyState())
	if err == nil {
		t.Fatalf("expected error with no active workflow")
	}
	var domErr *DomainError
	if !errors.As(err, &domErr) || domErr.Code != CodeNoActiveWorkflow {
		t.Fatalf("expected NO_ACTIVE_WORKFLOW, got %v", err)
	}
}

func TestTransitioner_CompletePhase_Advances(t *testing.T) {
	r := testRegistry(t)
	state := newTestState(t, r, "test_protocol")
	tr := NewTransitioner(r)

	if err := tr.CompletePhase(state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.CurrentPhase != "y" {
		t.Fatalf("expected phase y, got %s", state.CurrentPhase)
	}
	if state.PhaseStatus != GateAgentRequired {
		t.Fatalf("expected gate re-closed on phase entry, got %s", state.PhaseStatus)
	}
	if state.RequiredAgent != "agent-y" {
		t.Fatalf("expected required agent agent-y, got %s", state.RequiredAgent)
	}
	if state.PhaseState("x").Status != PhaseCompleted {
		t.Fatalf("expected phase x marked completed")
	}
	if state.PhaseState("y").Status != PhaseInProgress {
		t.Fatalf("expected phase y in progress")
	}
}

func TestTransitioner_CompletePhase_Terminal(t *testing.T) {
	r := testRegistry(t)
	state := newTestState(t, r, "test_protocol")
	tr := NewTransitioner(r)

	for i := 0; i < 3; i++ {
		if err := tr.CompletePhase(state); err != nil {
			t.Fatalf("phase %d: unexpected error: %v", i, err)
		}
	}
	if !state.Terminal() {
		t.Fatalf("expected terminal workflow")
	}
	if state.CurrentPhase != "" {
		t.Fatalf("expected empty current phase, got %s", state.CurrentPhase)
	}
	if state.RequiredAgent != "" {
		t.Fatalf("expected no required agent in terminal state")
	}

	// Terminal state is absorbing.
	err := tr.CompletePhase(state)
	var domErr *DomainError
	if !errors.As(err, &domErr) || domErr.Code != CodeWorkflowTerminal {
		t.Fatalf("expected WORKFLOW_TERMINAL, got %v", err)
	}
	if err := tr.AgentCompleted(state); err == nil {
		t.Fatalf("expected agent completion rejected in terminal state")
	}
}

func TestTransitioner_CompletePhase_ValidationGateBlocks(t *testing.T) {
	r := NewEmptyRegistry()
	proto := testProtocol()
	proto.ValidationGates = map[Phase][]string{
		"y": {"lint"},
	}
	if err := r.Register(proto); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state := newTestState(t, r, "test_protocol")
	tr := NewTransitioner(r)

	err := tr.CompletePhase(state)
	if err == nil {
		t.Fatalf("expected block on unpassed validation gate")
	}
	missing := MissingFromError(err)
	if len(missing) != 1 || missing[0] != "validation:lint" {
		t.Fatalf("expected missing validation:lint, got %v", missing)
	}
	// Refused completion must not advance or lose the current phase.
	if state.CurrentPhase != "x" {
		t.Fatalf("expected workflow still in phase x, got %s", state.CurrentPhase)
	}
	if state.PhaseState("x").Status != PhaseInProgress {
		t.Fatalf("expected phase x reverted to in progress")
	}

	// Executed is not passed.
	if err := state.MarkValidation("lint", ValidationExecuted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.CompletePhase(state); err == nil {
		t.Fatalf("expected executed validation to still block")
	}

	if err := state.MarkValidation("lint", ValidationPassed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.CompletePhase(state); err != nil {
		t.Fatalf("expected completion after validation passed, got %v", err)
	}
	if state.CurrentPhase != "y" {
		t.Fatalf("expected phase y, got %s", state.CurrentPhase)
	}
}

func TestTransitioner_EnterPhase_EnforcesDAG(t *testing.T) {
	r := testRegistry(t)
	state := newTestState(t, r, "test_protocol")
	tr := NewTransitioner(r)

	// z requires y, which requires x; neither is completed.
	err := tr.EnterPhase(state, "z")
	if err == nil {
		t.Fatalf("expected block entering z from x")
	}
	var domErr *DomainError
	if !errors.As(err, &domErr) || domErr.Code != CodeRequirementsMissing {
		t.Fatalf("expected PHASE_REQUIREMENTS_MISSING, got %v", err)
	}
	missing := MissingFromError(err)
	if len(missing) != 1 || missing[0] != "y" {
		t.Fatalf("expected missing [y], got %v", missing)
	}

	// Satisfy the chain and jump.
	state.PhaseState("x").Status = PhaseCompleted
	state.PhaseState("y").Status = PhaseCompleted
	if err := tr.EnterPhase(state, "z"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.CurrentPhase != "z" {
		t.Fatalf("expected phase z, got %s", state.CurrentPhase)
	}
	if state.PhaseStatus != GateWorking {
		t.Fatalf("expected agentless phase to open working, got %s", state.PhaseStatus)
	}
}

func TestTransitioner_EnterPhase_UnknownPhase(t *testing.T) {
	r := testRegistry(t)
	state := newTestState(t, r, "test_protocol")
	err := NewTransitioner(r).EnterPhase(state, "nope")
	var domErr *DomainError
	if !errors.As(err, &domErr) || domErr.Code != CodePhaseUnknown {
		t.Fatalf("expected PHASE_UNKNOWN, got %v", err)
	}
}

func TestTransitioner_EnterPhase_CompletesCurrent(t *testing.T) {
	r := testRegistry(t)
	state := newTestState(t, r, "test_protocol")
	tr := NewTransitioner(r)

	if err := tr.EnterPhase(state, "y"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.PhaseState("x").Status != PhaseCompleted {
		t.Fatalf("expected leaving x to complete it")
	}
	if state.RequiredAgent != "agent-y" {
		t.Fatalf("expected required agent agent-y")
	}
}

func TestTransitioner_ValidatePhaseEntry(t *testing.T) {
	r := testRegistry(t)
	state := newTestState(t, r, "test_protocol")
	tr := NewTransitioner(r)

	missing, err := tr.ValidatePhaseEntry(state, "test_protocol", "y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(missing) != 1 || missing[0] != "x" {
		t.Fatalf("expected missing [x], got %v", missing)
	}

	// Pure query: must not mutate state.
	if state.CurrentPhase != "x" || state.PhaseStatus != GateAgentRequired {
		t.Fatalf("expected state unchanged by validation query")
	}

	state.PhaseState("x").Status = PhaseCompleted
	missing, err = tr.ValidatePhaseEntry(state, "test_protocol", "y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("expected no missing requirements, got %v", missing)
	}

	if _, err := tr.ValidatePhaseEntry(state, "missing_protocol", "y"); err == nil {
		t.Fatalf("expected error for unknown protocol")
	}
	if _, err := tr.ValidatePhaseEntry(state, "test_protocol", "nope"); err == nil {
		t.Fatalf("expected error for unknown phase")
	}
}

func TestMissingFromError(t *testing.T) {
	err := blockedEntry("y", []string{"x", "validation:lint"})
	missing := MissingFromError(err)
	if len(missing) != 2 || missing[0] != "x" || missing[1] != "validation:lint" {
		t.Fatalf("unexpected missing list: %v", missing)
	}
	if MissingFromError(ErrState(CodeNoActiveWorkflow, "nope")) != nil {
		t.Fatalf("expected nil for non-block errors")
	}
	if MissingFromError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}
