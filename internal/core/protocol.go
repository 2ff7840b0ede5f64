package core

import (
	"fmt"
	"sort"
)

// Phase is a named step within a protocol.
type Phase string

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// Protocol is an immutable workflow template: an ordered phase list, a
// per-phase agent requirement, and a dependency DAG over the phases.
// The DAG is acyclic by construction: Registry.Register rejects any
// requirement that does not precede its phase in declaration order.
type Protocol struct {
	Name string `yaml:"name"`

	// Phases in execution order. Order is authoritative for next-phase
	// computation.
	Phases []Phase `yaml:"phases"`

	// PhaseAgents maps a phase to the agent that must execute before free
	// work is allowed in it. Phases absent from the map (or mapped to "")
	// require no agent, only a script or manual action.
	PhaseAgents map[Phase]string `yaml:"phase_agents"`

	// PhaseRequirements maps a phase to the phases that must be completed
	// before it can be entered.
	PhaseRequirements map[Phase][]Phase `yaml:"phase_requirements"`

	// ValidationGates maps a phase to named validations that must have
	// passed before the phase can be entered. Joined with the state's
	// validation ledger by the transitioner.
	ValidationGates map[Phase][]string `yaml:"validation_gates"`

	// AgentAliases maps an agent identifier to alternate identifiers the
	// gate accepts as the same agent.
	AgentAliases map[string][]string `yaml:"agent_aliases"`
}

// FirstPhase returns the protocol's entry phase.
func (p *Protocol) FirstPhase() Phase {
	if len(p.Phases) == 0 {
		return ""
	}
	return p.Phases[0]
}

// HasPhase reports whether the protocol declares the given phase.
func (p *Protocol) HasPhase(phase Phase) bool {
	for _, ph := range p.Phases {
		if ph == phase {
			return true
		}
	}
	return false
}

// PhaseIndex returns the declaration index of a phase, or -1.
func (p *Protocol) PhaseIndex(phase Phase) int {
	for i, ph := range p.Phases {
		if ph == phase {
			return i
		}
	}
	return -1
}

// NextPhase returns the phase following the given one in declaration
// order, or empty string if it is the last phase.
func (p *Protocol) NextPhase(phase Phase) Phase {
	idx := p.PhaseIndex(phase)
	if idx < 0 || idx >= len(p.Phases)-1 {
		return ""
	}
	return p.Phases[idx+1]
}

// AgentFor returns the required agent for a phase, or empty string when
// the phase needs none.
func (p *Protocol) AgentFor(phase Phase) string {
	return p.PhaseAgents[phase]
}

// RequirementsOf returns the phases that must be completed before entry.
func (p *Protocol) RequirementsOf(phase Phase) []Phase {
	return p.PhaseRequirements[phase]
}

// Registry is a static catalog of protocols. Lookups never fall back to a
// default; only the classifier chooses defaults.
type Registry struct {
	protocols map[string]*Protocol
	order     []string
}

// NewRegistry creates a registry seeded with the builtin protocols.
func NewRegistry() *Registry {
	r := &Registry{protocols: make(map[string]*Protocol)}
	for _, p := range builtinProtocols() {
		// Builtins are declared consistently; a failure here is a
		// programming error.
		if err := r.Register(p); err != nil {
			panic(fmt.Sprintf("builtin protocol %q: %v", p.Name, err))
		}
	}
	return r
}

// NewEmptyRegistry creates a registry with no protocols. Used by tests and
// overlay loading.
func NewEmptyRegistry() *Registry {
	return &Registry{protocols: make(map[string]*Protocol)}
}

// Register validates and adds a protocol. Validation enforces the DAG
// invariants: every referenced phase exists, every requirement precedes
// its phase in declaration order (which rules out cycles), and agents are
// only assigned to declared phases.
func (r *Registry) Register(p *Protocol) error {
	if p.Name == "" {
		return ErrValidation(CodeInvalidProtocol, "protocol name cannot be empty")
	}
	if len(p.Phases) == 0 {
		return ErrValidation(CodeInvalidProtocol,
			fmt.Sprintf("protocol %q declares no phases", p.Name))
	}
	seen := make(map[Phase]int, len(p.Phases))
	for i, ph := range p.Phases {
		if _, dup := seen[ph]; dup {
			return ErrValidation(CodeInvalidProtocol,
				fmt.Sprintf("protocol %q declares phase %q twice", p.Name, ph))
		}
		seen[ph] = i
	}
	for phase, reqs := range p.PhaseRequirements {
		idx, ok := seen[phase]
		if !ok {
			return ErrValidation(CodeInvalidProtocol,
				fmt.Sprintf("protocol %q: requirement target %q is not a declared phase", p.Name, phase))
		}
		for _, req := range reqs {
			reqIdx, ok := seen[req]
			if !ok {
				return ErrValidation(CodeInvalidProtocol,
					fmt.Sprintf("protocol %q: phase %q requires unknown phase %q", p.Name, phase, req))
			}
			if reqIdx >= idx {
				return ErrValidation(CodeInvalidProtocol,
					fmt.Sprintf("protocol %q: phase %q requires %q which does not precede it", p.Name, phase, req))
			}
		}
	}
	for phase := range p.PhaseAgents {
		if _, ok := seen[phase]; !ok {
			return ErrValidation(CodeInvalidProtocol,
				fmt.Sprintf("protocol %q: agent assigned to unknown phase %q", p.Name, phase))
		}
	}
	for phase := range p.ValidationGates {
		if _, ok := seen[phase]; !ok {
			return ErrValidation(CodeInvalidProtocol,
				fmt.Sprintf("protocol %q: validation gate on unknown phase %q", p.Name, phase))
		}
	}
	if _, exists := r.protocols[p.Name]; !exists {
		r.order = append(r.order, p.Name)
	}
	r.protocols[p.Name] = p
	return nil
}

// Lookup returns the protocol with the given name.
func (r *Registry) Lookup(name string) (*Protocol, error) {
	p, ok := r.protocols[name]
	if !ok {
		return nil, &DomainError{
			Category: ErrCatNotFound,
			Code:     CodeProtocolNotFound,
			Message:  fmt.Sprintf("unknown protocol: %s", name),
		}
	}
	return p, nil
}

// Has reports whether a protocol exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.protocols[name]
	return ok
}

// PhasesOf returns the ordered phase list for a protocol, or nil when the
// protocol is unknown.
func (r *Registry) PhasesOf(name string) []Phase {
	p, ok := r.protocols[name]
	if !ok {
		return nil
	}
	phases := make([]Phase, len(p.Phases))
	copy(phases, p.Phases)
	return phases
}

// RequirementsOf returns the prerequisite phases for entering a phase.
func (r *Registry) RequirementsOf(name string, phase Phase) []Phase {
	p, ok := r.protocols[name]
	if !ok {
		return nil
	}
	return p.RequirementsOf(phase)
}

// Names returns registered protocol names in registration order for
// builtins, with overlay additions appended.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// builtinProtocols returns the static protocol catalog.
func builtinProtocols() []*Protocol {
	return []*Protocol{
		{
			Name:   "skill_creation",
			Phases: []Phase{"semantic", "execute", "verify"},
			PhaseAgents: map[Phase]string{
				"semantic": "phase-semantic-agent",
				"execute":  "phase-execute-agent",
				"verify":   "phase-verify-agent",
			},
			PhaseRequirements: map[Phase][]Phase{
				"execute": {"semantic"},
				"verify":  {"execute"},
			},
		},
		{
			Name:   "verify_workflow",
			Phases: []Phase{"static_validation", "form_audit", "content_quality", "report"},
			PhaseAgents: map[Phase]string{
				"static_validation": "static-validator-agent",
				"form_audit":        "form-auditor-agent",
				"content_quality":   "content-quality-agent",
				"report":            "report-generator-agent",
			},
			PhaseRequirements: map[Phase][]Phase{
				"form_audit":      {"static_validation"},
				"content_quality": {"form_audit"},
				"report":          {"content_quality"},
			},
			ValidationGates: map[Phase][]string{
				"form_audit":      {"validate_all"},
				"content_quality": {"form_selection_audit"},
			},
		},
		{
			Name:   "refactor_workflow",
			Phases: []Phase{"analysis", "plan", "execute", "verify"},
			PhaseAgents: map[Phase]string{
				"analysis": "refactor-analyzer-agent",
				"plan":     "refactor-planner-agent",
				"execute":  "refactor-executor-agent",
				"verify":   "phase-verify-agent",
			},
			PhaseRequirements: map[Phase][]Phase{
				"plan":    {"analysis"},
				"execute": {"plan"},
				"verify":  {"execute"},
			},
		},
		{
			// Read-only analysis runs with no agent gating; phases advance
			// by script or manual action.
			Name:   "analyze_only",
			Phases: []Phase{"init", "analysis", "complete"},
			PhaseRequirements: map[Phase][]Phase{
				"complete": {"analysis"},
			},
		},
	}
}

// SortedValidationNames returns the validation names gated anywhere in the
// protocol, sorted for stable display.
func (p *Protocol) SortedValidationNames() []string {
	set := make(map[string]struct{})
	for _, names := range p.ValidationGates {
		for _, n := range names {
			set[n] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
