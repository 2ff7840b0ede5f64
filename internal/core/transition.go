package core

import (
	"fmt"
	"strings"
)

// Transitioner advances the workflow state machine. All operations mutate
// the supplied state in place; the caller owns persistence through the
// session store.
type Transitioner struct {
	registry *Registry
}

// NewTransitioner creates a transitioner backed by a protocol registry.
func NewTransitioner(registry *Registry) *Transitioner {
	return &Transitioner{registry: registry}
}

// AgentCompleted marks the current phase's required agent as executed and
// opens the gate for free work (phase_status = working).
func (t *Transitioner) AgentCompleted(state *WorkflowState) error {
	if !state.Active() {
		return ErrState(CodeNoActiveWorkflow, "no active workflow")
	}
	if state.Terminal() {
		return ErrState(CodeWorkflowTerminal, "workflow already completed")
	}
	state.PhaseState(state.CurrentPhase).AgentCompleted = true
	state.PhaseStatus = GateWorking
	return nil
}

// CompletePhase marks the current phase completed and advances to the next
// phase in declaration order. Completing the last phase makes the workflow
// terminal; terminal state is absorbing and a further call fails.
func (t *Transitioner) CompletePhase(state *WorkflowState) error {
	if !state.Active() {
		return ErrState(CodeNoActiveWorkflow, "no active workflow")
	}
	if state.Terminal() {
		return ErrState(CodeWorkflowTerminal, "workflow already completed")
	}
	proto, err := t.registry.Lookup(state.Protocol)
	if err != nil {
		return err
	}
	current := state.CurrentPhase
	if !proto.HasPhase(current) {
		return ErrValidation(CodePhaseUnknown,
			fmt.Sprintf("current phase %q not in protocol %q", current, proto.Name))
	}

	next := proto.NextPhase(current)
	if next == "" {
		state.PhaseState(current).Status = PhaseCompleted
		state.CurrentPhase = ""
		state.PhaseStatus = GateCompleted
		state.RequiredAgent = ""
		return nil
	}

	// The completion below counts toward next's prerequisites, so check
	// entry against the state as it will be after completing current.
	state.PhaseState(current).Status = PhaseCompleted
	if missing := t.missingRequirements(proto, state, next); len(missing) > 0 {
		state.PhaseState(current).Status = PhaseInProgress
		return blockedEntry(next, missing)
	}

	t.enter(proto, state, next)
	return nil
}

// EnterPhase jumps the workflow to the named phase, for protocols where
// phases are entered by external trigger rather than linear completion.
// The DAG and any validation gates are enforced; a refusal carries the
// missing prerequisites.
func (t *Transitioner) EnterPhase(state *WorkflowState, phase Phase) error {
	if !state.Active() {
		return ErrState(CodeNoActiveWorkflow, "no active workflow")
	}
	if state.Terminal() {
		return ErrState(CodeWorkflowTerminal, "workflow already completed")
	}
	proto, err := t.registry.Lookup(state.Protocol)
	if err != nil {
		return err
	}
	if !proto.HasPhase(phase) {
		return ErrValidation(CodePhaseUnknown,
			fmt.Sprintf("unknown phase %q for protocol %q", phase, proto.Name))
	}
	if missing := t.missingRequirements(proto, state, phase); len(missing) > 0 {
		return blockedEntry(phase, missing)
	}

	if current := state.CurrentPhase; current != "" && current != phase {
		state.PhaseState(current).Status = PhaseCompleted
	}
	t.enter(proto, state, phase)
	return nil
}

// ValidatePhaseEntry is the pure query form: it reports the unsatisfied
// prerequisites for entering a phase without mutating state. An unknown
// protocol or phase is an error, never a silent pass.
func (t *Transitioner) ValidatePhaseEntry(state *WorkflowState, protocolName string, phase Phase) ([]string, error) {
	proto, err := t.registry.Lookup(protocolName)
	if err != nil {
		return nil, err
	}
	if !proto.HasPhase(phase) {
		return nil, ErrValidation(CodePhaseUnknown,
			fmt.Sprintf("unknown phase %q for protocol %q", phase, proto.Name))
	}
	return t.missingRequirements(proto, state, phase), nil
}

// enter positions the workflow at the given phase with the gate reset.
func (t *Transitioner) enter(proto *Protocol, state *WorkflowState, phase Phase) {
	state.CurrentPhase = phase
	state.RequiredAgent = proto.AgentFor(phase)
	state.PhaseState(phase).Status = PhaseInProgress
	if state.RequiredAgent == "" {
		state.PhaseStatus = GateWorking
	} else {
		state.PhaseStatus = GateAgentRequired
	}
}

// missingRequirements joins the protocol's phase DAG and validation gates
// against the state. Phase prerequisites must be completed; gated
// validations must have passed.
func (t *Transitioner) missingRequirements(proto *Protocol, state *WorkflowState, phase Phase) []string {
	var missing []string
	done := state.CompletedPhases()
	for _, req := range proto.RequirementsOf(phase) {
		if !done[req] {
			missing = append(missing, string(req))
		}
	}
	for _, name := range proto.ValidationGates[phase] {
		if !state.ValidationPassed(name) {
			missing = append(missing, "validation:"+name)
		}
	}
	return missing
}

func blockedEntry(phase Phase, missing []string) error {
	return ErrGate(CodeRequirementsMissing,
		fmt.Sprintf("phase %q requires completion of: %s",
			phase, strings.Join(missing, ", "))).
		WithDetail("phase", string(phase)).
		WithDetail("missing", missing)
}

// MissingFromError extracts the missing-prerequisite list from a blocked
// entry error, for structured rendering.
func MissingFromError(err error) []string {
	var domErr *DomainError
	if !asDomainError(err, &domErr) || domErr.Code != CodeRequirementsMissing {
		return nil
	}
	if m, ok := domErr.Details["missing"].([]string); ok {
		return m
	}
	return nil
}
