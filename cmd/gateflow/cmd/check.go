package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gateflow/gateflow/internal/core"
)

var (
	checkTool  string
	checkAgent string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Ask the phase gate whether an action is permitted",
	Long: `Consult the gate for the session's current phase. Exit code 0 allows
the action; exit code 2 blocks it with a diagnostic on stderr naming the
required agent. Hook hosts rely on this exit-code contract.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkTool, "tool", "", "host tool attempting the action")
	checkCmd.Flags().StringVar(&checkAgent, "agent", "", "agent identity being invoked, if any")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}
	store, err := newStore()
	if err != nil {
		return err
	}
	workflowState, err := store.Load(cmd.Context())
	if err != nil {
		return err
	}

	decision := core.NewGate(registry).Check(workflowState, core.Action{
		Tool:  checkTool,
		Agent: checkAgent,
	})

	log := newLogger().WithSession(store.SessionID())
	if decision.Allowed {
		log.Debug("gate allowed action", "tool", checkTool, "agent", checkAgent)
		return nil
	}

	log.Info("gate blocked action",
		"tool", checkTool,
		"agent", checkAgent,
		"phase", string(decision.CurrentPhase),
		"required_agent", decision.RequiredAgent)

	fmt.Fprintln(os.Stderr, "BLOCKED: phase requires agent execution first")
	fmt.Fprintf(os.Stderr, "  Current phase: %s\n", decision.CurrentPhase)
	fmt.Fprintf(os.Stderr, "  Required agent: %s\n", decision.RequiredAgent)
	return &BlockError{Reason: decision.Reason}
}
