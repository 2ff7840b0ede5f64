package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gateflow/gateflow/internal/core"
)

var agentCompletedCmd = &cobra.Command{
	Use:   "agent-completed",
	Short: "Mark the current phase's required agent as executed",
	Long: `Record that the mandated agent for the current phase has run. The gate
opens for free work (phase status becomes working). Idempotent.`,
	Args: cobra.NoArgs,
	RunE: runAgentCompleted,
}

var completePhaseCmd = &cobra.Command{
	Use:   "complete-phase",
	Short: "Complete the current phase and advance the workflow",
	Long: `Mark the current phase completed and move to the next phase in protocol
order, resetting the gate to agent_required. Completing the final phase
makes the workflow terminal. One-shot advance per call.`,
	Args: cobra.NoArgs,
	RunE: runCompletePhase,
}

var enterPhaseCmd = &cobra.Command{
	Use:   "enter-phase <phase>",
	Short: "Jump to a phase, enforcing its prerequisites",
	Long: `Enter the named phase directly, for protocols driven by external
triggers rather than linear completion. Blocked (exit 2) with the missing
prerequisite list when the phase's requirements are not all completed.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnterPhase,
}

func init() {
	rootCmd.AddCommand(agentCompletedCmd)
	rootCmd.AddCommand(completePhaseCmd)
	rootCmd.AddCommand(enterPhaseCmd)
}

func runAgentCompleted(cmd *cobra.Command, _ []string) error {
	registry, store, workflowState, err := loadEngine(cmd)
	if err != nil {
		return err
	}

	if err := core.NewTransitioner(registry).AgentCompleted(workflowState); err != nil {
		return err
	}
	if err := store.Save(cmd.Context(), workflowState); err != nil {
		return err
	}

	newLogger().WithSession(store.SessionID()).WithPhase(string(workflowState.CurrentPhase)).
		Info("agent completed, gate open")

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s Agent completed for phase %q\n", green("✓"), workflowState.CurrentPhase)
	fmt.Println("  Phase status → working (free work allowed)")
	return nil
}

func runCompletePhase(cmd *cobra.Command, _ []string) error {
	registry, store, workflowState, err := loadEngine(cmd)
	if err != nil {
		return err
	}

	completed := workflowState.CurrentPhase
	if err := core.NewTransitioner(registry).CompletePhase(workflowState); err != nil {
		return blockOrError(err)
	}
	if err := store.Save(cmd.Context(), workflowState); err != nil {
		return err
	}

	log := newLogger().WithSession(store.SessionID()).WithProtocol(workflowState.Protocol)
	green := color.New(color.FgGreen).SprintFunc()

	if workflowState.Terminal() {
		log.Info("workflow completed")
		fmt.Printf("%s Workflow %q completed\n", green("✓"), workflowState.Protocol)
		return nil
	}

	log.Info("phase completed",
		"completed", string(completed),
		"next", string(workflowState.CurrentPhase))

	fmt.Printf("%s Phase %q completed\n", green("✓"), completed)
	fmt.Printf("  Next phase: %s\n", workflowState.CurrentPhase)
	if workflowState.RequiredAgent != "" {
		fmt.Printf("  Required agent: %s\n", workflowState.RequiredAgent)
	}
	return nil
}

func runEnterPhase(cmd *cobra.Command, args []string) error {
	registry, store, workflowState, err := loadEngine(cmd)
	if err != nil {
		return err
	}

	phase := core.Phase(args[0])
	if err := core.NewTransitioner(registry).EnterPhase(workflowState, phase); err != nil {
		return blockOrError(err)
	}
	if err := store.Save(cmd.Context(), workflowState); err != nil {
		return err
	}

	newLogger().WithSession(store.SessionID()).WithPhase(string(phase)).Info("entered phase")

	fmt.Printf("Entered phase %q (status: %s)\n", phase, workflowState.PhaseStatus)
	return nil
}

// loadEngine wires the registry, store, and freshly loaded state for a
// mutating command.
func loadEngine(cmd *cobra.Command) (*core.Registry, core.SessionStore, *core.WorkflowState, error) {
	registry, err := newRegistry()
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := newStore()
	if err != nil {
		return nil, nil, nil, err
	}
	workflowState, err := store.Load(cmd.Context())
	if err != nil {
		return nil, nil, nil, err
	}
	return registry, store, workflowState, nil
}

// blockOrError converts a missing-prerequisite refusal into a Block (exit
// 2) with a structured diagnostic; other errors pass through as-is.
func blockOrError(err error) error {
	var domErr *core.DomainError
	if errors.As(err, &domErr) && domErr.Code == core.CodeRequirementsMissing {
		missing := core.MissingFromError(err)
		fmt.Fprintf(os.Stderr, "BLOCKED: %s\n", domErr.Message)
		if len(missing) > 0 {
			fmt.Fprintf(os.Stderr, "  Missing: %s\n", strings.Join(missing, ", "))
		}
		return &BlockError{Reason: domErr.Message}
	}
	return err
}
