package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gateflow/gateflow/internal/core"
)

var markValidationCmd = &cobra.Command{
	Use:   "mark-validation <name> <status>",
	Short: "Record a validation outcome",
	Long: `Upsert the latest status of a named validation (executed, passed,
failed). Validation results gate phase entry for protocols that declare
validation gates. Last write wins; no history is retained.`,
	Args: cobra.ExactArgs(2),
	RunE: runMarkValidation,
}

func init() {
	rootCmd.AddCommand(markValidationCmd)
}

func runMarkValidation(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	workflowState, err := store.Load(cmd.Context())
	if err != nil {
		return err
	}

	name, status := args[0], core.ValidationStatus(args[1])
	if err := workflowState.MarkValidation(name, status); err != nil {
		return err
	}
	if err := store.Save(cmd.Context(), workflowState); err != nil {
		return err
	}

	newLogger().WithSession(store.SessionID()).
		Info("validation marked", "validation", name, "status", string(status))

	fmt.Printf("Validation %q marked as %s\n", name, status)
	return nil
}
