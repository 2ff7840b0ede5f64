package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gateflow/gateflow/internal/core"
)

// Context mutators. These touch only WorkflowState.Context; the engine
// passes those fields through unchanged.

var validIntents = []string{"CREATE", "REFACTOR", "VERIFY"}

var validComponents = []string{"SKILL", "AGENT", "COMMAND", "HOOK", "MCP"}

var setIntentCmd = &cobra.Command{
	Use:   "set-intent <intent>",
	Short: "Record the classified intent in the session context",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetIntent,
}

var setComponentCmd = &cobra.Command{
	Use:   "set-component <type>",
	Short: "Record the component type in the session context",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetComponent,
}

var addFileCmd = &cobra.Command{
	Use:   "add-file <path>",
	Short: "Track a generated file in the session context",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddFile,
}

func init() {
	rootCmd.AddCommand(setIntentCmd)
	rootCmd.AddCommand(setComponentCmd)
	rootCmd.AddCommand(addFileCmd)
}

func runSetIntent(cmd *cobra.Command, args []string) error {
	intent := strings.ToUpper(args[0])
	if !contains(validIntents, intent) {
		return core.ErrValidation(core.CodeInvalidStatus,
			fmt.Sprintf("invalid intent %q (valid: %s)", args[0], strings.Join(validIntents, ", ")))
	}
	return mutateContext(cmd, func(state *core.WorkflowState) {
		state.Intent = intent
		state.Context.Intent = intent
	}, fmt.Sprintf("Intent set: %s", intent))
}

func runSetComponent(cmd *cobra.Command, args []string) error {
	component := strings.ToUpper(args[0])
	if !contains(validComponents, component) {
		return core.ErrValidation(core.CodeInvalidStatus,
			fmt.Sprintf("invalid component type %q (valid: %s)", args[0], strings.Join(validComponents, ", ")))
	}
	return mutateContext(cmd, func(state *core.WorkflowState) {
		state.Context.ComponentType = component
	}, fmt.Sprintf("Component type set: %s", component))
}

func runAddFile(cmd *cobra.Command, args []string) error {
	return mutateContext(cmd, func(state *core.WorkflowState) {
		state.AddGeneratedFile(args[0])
	}, fmt.Sprintf("Tracked file: %s", args[0]))
}

func mutateContext(cmd *cobra.Command, mutate func(*core.WorkflowState), message string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	workflowState, err := store.Load(cmd.Context())
	if err != nil {
		return err
	}
	mutate(workflowState)
	if err := store.Save(cmd.Context(), workflowState); err != nil {
		return err
	}
	fmt.Println(message)
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
