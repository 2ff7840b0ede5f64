package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the session's workflow state",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	if err := store.Reset(cmd.Context()); err != nil {
		return err
	}

	newLogger().WithSession(store.SessionID()).Info("session state reset")

	fmt.Println("Workflow state reset")
	return nil
}
