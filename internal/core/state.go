package core

import (
	"time"

	"github.com/google/uuid"
)

// PhaseStatus is the per-phase lifecycle: pending → in_progress →
// {completed | failed}.
type PhaseStatus string

const (
	PhasePending    PhaseStatus = "pending"
	PhaseInProgress PhaseStatus = "in_progress"
	PhaseCompleted  PhaseStatus = "completed"
	PhaseFailed     PhaseStatus = "failed"
)

// ValidPhaseStatus checks a phase status string.
func ValidPhaseStatus(s PhaseStatus) bool {
	switch s {
	case PhasePending, PhaseInProgress, PhaseCompleted, PhaseFailed:
		return true
	default:
		return false
	}
}

// GateStatus is the gate state of the current phase. agent_required and
// working alternate within a phase; completed marks the whole workflow
// terminal.
type GateStatus string

const (
	GateAgentRequired GateStatus = "agent_required"
	GateWorking       GateStatus = "working"
	GateCompleted     GateStatus = "completed"
)

// ValidationStatus records the latest outcome of a named validation.
type ValidationStatus string

const (
	ValidationExecuted ValidationStatus = "executed"
	ValidationPassed   ValidationStatus = "passed"
	ValidationFailed   ValidationStatus = "failed"
)

// ValidValidationStatus checks a validation status string.
func ValidValidationStatus(s ValidationStatus) bool {
	switch s {
	case ValidationExecuted, ValidationPassed, ValidationFailed:
		return true
	default:
		return false
	}
}

// PhaseState tracks one phase within an active workflow.
type PhaseState struct {
	Status         PhaseStatus `json:"status"`
	AgentCompleted bool        `json:"agent_completed"`
	Result         string      `json:"result,omitempty"`
}

// Context carries free-form auxiliary fields. The engine persists them
// unchanged; only the CLI mutators touch them.
type Context struct {
	UserRequest    string   `json:"user_request,omitempty"`
	Intent         string   `json:"intent,omitempty"`
	ComponentType  string   `json:"component_type,omitempty"`
	ComponentName  string   `json:"component_name,omitempty"`
	GeneratedFiles []string `json:"generated_files,omitempty"`
}

// WorkflowState is the persisted state of one workflow instance. Exactly
// one is live per session; initializing a new workflow discards the prior
// document.
type WorkflowState struct {
	WorkflowID    string                      `json:"workflow_id"`
	Protocol      string                      `json:"protocol"`
	Intent        string                      `json:"intent,omitempty"`
	CurrentPhase  Phase                       `json:"current_phase,omitempty"`
	PhaseStatus   GateStatus                  `json:"phase_status"`
	RequiredAgent string                      `json:"required_agent,omitempty"`
	Phases        map[Phase]*PhaseState       `json:"phases"`
	Validations   map[string]ValidationStatus `json:"validations,omitempty"`
	Context       Context                     `json:"context"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// NewWorkflowState creates session state positioned at the protocol's
// starting phase with the gate closed. startPhase may be empty to use the
// protocol's first phase.
func NewWorkflowState(p *Protocol, startPhase Phase) (*WorkflowState, error) {
	if startPhase == "" {
		startPhase = p.FirstPhase()
	}
	if !p.HasPhase(startPhase) {
		return nil, ErrValidation(CodePhaseUnknown,
			"unknown phase "+string(startPhase)+" for protocol "+p.Name)
	}

	state := &WorkflowState{
		WorkflowID:    uuid.New().String(),
		Protocol:      p.Name,
		CurrentPhase:  startPhase,
		PhaseStatus:   GateAgentRequired,
		RequiredAgent: p.AgentFor(startPhase),
		Phases:        make(map[Phase]*PhaseState, len(p.Phases)),
		Validations:   make(map[string]ValidationStatus),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	for _, phase := range p.Phases {
		state.Phases[phase] = &PhaseState{Status: PhasePending}
	}
	state.Phases[startPhase].Status = PhaseInProgress

	// Phases with no agent requirement open straight into free work.
	if state.RequiredAgent == "" {
		state.PhaseStatus = GateWorking
	}
	return state, nil
}

// EmptyState returns the default document for a session with no workflow.
// Corrupt or absent persisted state degrades to this.
func EmptyState() *WorkflowState {
	return &WorkflowState{
		Phases:      make(map[Phase]*PhaseState),
		Validations: make(map[string]ValidationStatus),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// Active reports whether a workflow is in flight or terminal (i.e. the
// session holds a real workflow document).
func (s *WorkflowState) Active() bool {
	return s != nil && s.Protocol != ""
}

// Terminal reports whether the workflow has completed its final phase.
// Terminal state is absorbing.
func (s *WorkflowState) Terminal() bool {
	return s.Active() && s.CurrentPhase == "" && s.PhaseStatus == GateCompleted
}

// PhaseState returns the tracked state for a phase, creating the entry if
// the persisted document predates the phase (defensive on schema drift).
func (s *WorkflowState) PhaseState(phase Phase) *PhaseState {
	if ps, ok := s.Phases[phase]; ok {
		return ps
	}
	ps := &PhaseState{Status: PhasePending}
	if s.Phases == nil {
		s.Phases = make(map[Phase]*PhaseState)
	}
	s.Phases[phase] = ps
	return ps
}

// CompletedPhases returns the set of phases whose status is completed.
func (s *WorkflowState) CompletedPhases() map[Phase]bool {
	done := make(map[Phase]bool)
	for phase, ps := range s.Phases {
		if ps.Status == PhaseCompleted {
			done[phase] = true
		}
	}
	return done
}

// MarkValidation upserts a validation outcome. Last write wins; no history
// is retained.
func (s *WorkflowState) MarkValidation(name string, status ValidationStatus) error {
	if !ValidValidationStatus(status) {
		return ErrValidation(CodeInvalidStatus, "invalid validation status: "+string(status))
	}
	if s.Validations == nil {
		s.Validations = make(map[string]ValidationStatus)
	}
	s.Validations[name] = status
	return nil
}

// ValidationPassed reports whether a named validation's latest status is
// passed.
func (s *WorkflowState) ValidationPassed(name string) bool {
	return s.Validations[name] == ValidationPassed
}

// AddGeneratedFile tracks a generated artifact, deduplicated.
func (s *WorkflowState) AddGeneratedFile(path string) {
	for _, f := range s.Context.GeneratedFiles {
		if f == path {
			return
		}
	}
	s.Context.GeneratedFiles = append(s.Context.GeneratedFiles, path)
}
