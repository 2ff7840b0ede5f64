package core

import (
	"fmt"
	"strings"
)

// Action describes an attempted operation presented to the gate. Agent is
// the identity of the agent being invoked, when the action is an agent
// invocation; Tool is the host tool name, kept for diagnostics only.
type Action struct {
	Tool  string
	Agent string
}

// Decision is the gate's verdict on an action.
type Decision struct {
	Allowed       bool
	Reason        string
	CurrentPhase  Phase
	RequiredAgent string
}

// Allow constructs an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Gate decides whether an action is permitted given the session's current
// workflow state. It is the system's core safety property: no free-form
// work until the mandated agent for the current phase has run. On
// malformed or unknown state it fails open; a corrupt document must never
// deadlock a session.
type Gate struct {
	registry *Registry
}

// NewGate creates a gate backed by a protocol registry.
func NewGate(registry *Registry) *Gate {
	return &Gate{registry: registry}
}

// Check applies the decision table to the given state and action.
func (g *Gate) Check(state *WorkflowState, action Action) Decision {
	// No active workflow: nothing to enforce.
	if !state.Active() {
		return Allow()
	}

	switch state.PhaseStatus {
	case GateCompleted:
		// Workflow terminal: all actions free.
		return Allow()

	case GateWorking:
		return Allow()

	case GateAgentRequired:
		required := state.RequiredAgent
		if required == "" {
			// Phase declares no agent; there is nothing to wait for.
			return Allow()
		}
		if action.Agent != "" && g.agentMatches(state, required, action.Agent) {
			return Allow()
		}
		return Decision{
			Allowed:       false,
			CurrentPhase:  state.CurrentPhase,
			RequiredAgent: required,
			Reason: fmt.Sprintf(
				"phase %q requires agent %q to execute before free work is allowed",
				state.CurrentPhase, required),
		}

	default:
		// Unrecognized status: fail open rather than lock the session.
		return Allow()
	}
}

// agentMatches compares an invoked agent identity against the required
// one. Accepted forms: exact match, a declared alias of the required
// agent, or a qualified name whose last segment matches either
// ("plugin:agent"). Plain substring matching is deliberately not accepted.
func (g *Gate) agentMatches(state *WorkflowState, required, invoked string) bool {
	candidates := []string{required}
	if g.registry != nil {
		if p, err := g.registry.Lookup(state.Protocol); err == nil {
			candidates = append(candidates, p.AgentAliases[required]...)
		}
	}

	name := invoked
	if idx := strings.LastIndex(invoked, ":"); idx >= 0 {
		name = invoked[idx+1:]
	}
	for _, c := range candidates {
		if invoked == c || name == c {
			return true
		}
	}
	return false
}
