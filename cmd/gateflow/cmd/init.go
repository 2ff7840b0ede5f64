package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gateflow/gateflow/internal/core"
)

var (
	initIntent  string
	initRequest string
)

var initCmd = &cobra.Command{
	Use:   "init <protocol> [phase]",
	Short: "Initialize session state for a workflow protocol",
	Long: `Create session state positioned at the protocol's first phase (or the
given phase) with the gate closed. Any prior workflow in the session is
discarded; its in-flight phase is not merged.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initIntent, "intent", "", "classified intent (CREATE, VERIFY, REFACTOR)")
	initCmd.Flags().StringVar(&initRequest, "request", "", "original request text to record in context")
}

func runInit(cmd *cobra.Command, args []string) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}
	proto, err := registry.Lookup(args[0])
	if err != nil {
		return err
	}

	var startPhase core.Phase
	if len(args) == 2 {
		startPhase = core.Phase(args[1])
	}
	workflowState, err := core.NewWorkflowState(proto, startPhase)
	if err != nil {
		return err
	}
	if initIntent != "" {
		workflowState.Intent = initIntent
		workflowState.Context.Intent = initIntent
	}
	if initRequest != "" {
		workflowState.Context.UserRequest = initRequest
	}

	store, err := newStore()
	if err != nil {
		return err
	}
	if err := store.Save(cmd.Context(), workflowState); err != nil {
		return err
	}

	newLogger().WithSession(store.SessionID()).WithProtocol(proto.Name).
		Info("workflow initialized", "phase", string(workflowState.CurrentPhase))

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s Workflow initialized: %s\n", green("✓"), proto.Name)
	fmt.Printf("  Phase: %s\n", workflowState.CurrentPhase)
	fmt.Printf("  Status: %s\n", workflowState.PhaseStatus)
	if workflowState.RequiredAgent != "" {
		fmt.Printf("  Required agent: %s\n", workflowState.RequiredAgent)
	}
	return nil
}
