package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gateflow/gateflow/internal/core"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show workflow status",
	Long:  "Display the current state of the session's workflow, including per-phase progress and validations.",
	RunE:  runStatus,
}

var statusJSON bool

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	workflowState, err := store.Load(cmd.Context())
	if err != nil {
		return err
	}

	if statusJSON {
		return OutputJSON(workflowState)
	}

	if !workflowState.Active() {
		fmt.Println("No active workflow")
		return nil
	}

	registry, err := newRegistry()
	if err != nil {
		return err
	}

	fmt.Printf("Workflow ID: %s\n", workflowState.WorkflowID)
	fmt.Printf("Protocol: %s\n", workflowState.Protocol)
	if workflowState.Intent != "" {
		fmt.Printf("Intent: %s\n", workflowState.Intent)
	}
	if workflowState.Terminal() {
		fmt.Printf("Status: %s\n", color.GreenString("completed"))
	} else {
		fmt.Printf("Current Phase: %s\n", workflowState.CurrentPhase)
		fmt.Printf("Phase Status: %s\n", workflowState.PhaseStatus)
		if workflowState.PhaseStatus == core.GateAgentRequired && workflowState.RequiredAgent != "" {
			fmt.Printf("Required Agent: %s\n", workflowState.RequiredAgent)
		}
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PHASE\tSTATUS\tAGENT\t")
	for _, phase := range registry.PhasesOf(workflowState.Protocol) {
		ps := workflowState.PhaseState(phase)
		marker := ""
		if phase == workflowState.CurrentPhase {
			marker = " ◀"
		}
		agent := "-"
		if ps.AgentCompleted {
			agent = color.GreenString("done")
		}
		fmt.Fprintf(w, "%s %s%s\t%s\t%s\t\n",
			phaseIcon(ps.Status), phase, marker, ps.Status, agent)
	}
	w.Flush()

	if len(workflowState.Validations) > 0 {
		fmt.Println()
		fmt.Println("Validations:")
		for name, status := range workflowState.Validations {
			fmt.Printf("  %s %s: %s\n", validationIcon(status), name, status)
		}
	}

	if ctx := workflowState.Context; ctx.UserRequest != "" || ctx.ComponentType != "" || len(ctx.GeneratedFiles) > 0 {
		fmt.Println()
		fmt.Println("Context:")
		if ctx.UserRequest != "" {
			fmt.Printf("  Request: %s\n", TruncateString(ctx.UserRequest, 50))
		}
		if ctx.ComponentType != "" {
			fmt.Printf("  Component: %s\n", ctx.ComponentType)
		}
		if n := len(ctx.GeneratedFiles); n > 0 {
			fmt.Printf("  Files: %d generated\n", n)
		}
	}
	return nil
}

func phaseIcon(status core.PhaseStatus) string {
	switch status {
	case core.PhasePending:
		return "○"
	case core.PhaseInProgress:
		return color.YellowString("◐")
	case core.PhaseCompleted:
		return color.GreenString("✓")
	case core.PhaseFailed:
		return color.RedString("✗")
	default:
		return "?"
	}
}

func validationIcon(status core.ValidationStatus) string {
	switch status {
	case core.ValidationPassed:
		return color.GreenString("✓")
	case core.ValidationFailed:
		return color.RedString("✗")
	default:
		return "○"
	}
}

// TruncateString removes newlines and truncates the string to maxLen.
func TruncateString(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")

	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
