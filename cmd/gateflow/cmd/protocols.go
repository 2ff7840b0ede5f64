package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gateflow/gateflow/internal/core"
)

// Pure registry and requirement queries. check-protocol and get-phases
// never touch session state; validate-phase joins the registry against
// the session's completed phases.

var checkProtocolCmd = &cobra.Command{
	Use:   "check-protocol <name>",
	Short: "Check whether a protocol exists",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckProtocol,
}

var getPhasesCmd = &cobra.Command{
	Use:   "get-phases <name>",
	Short: "Print a protocol's ordered phase list as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetPhases,
}

var validatePhaseCmd = &cobra.Command{
	Use:   "validate-phase <protocol> <phase>",
	Short: "Check whether a phase's prerequisites are satisfied",
	Long: `Validate entry into a phase against the session's completed phases and
validation ledger. Exit 0 when entry is allowed; exit 2 with the missing
prerequisite list on stderr when it is not.`,
	Args: cobra.ExactArgs(2),
	RunE: runValidatePhase,
}

var listProtocolsCmd = &cobra.Command{
	Use:   "list-protocols",
	Short: "List all registered protocols",
	Args:  cobra.NoArgs,
	RunE:  runListProtocols,
}

func init() {
	rootCmd.AddCommand(checkProtocolCmd)
	rootCmd.AddCommand(getPhasesCmd)
	rootCmd.AddCommand(validatePhaseCmd)
	rootCmd.AddCommand(listProtocolsCmd)
}

func runCheckProtocol(_ *cobra.Command, args []string) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}
	if !registry.Has(args[0]) {
		fmt.Println("false")
		return core.ErrNotFound("protocol", args[0])
	}
	fmt.Println("true")
	return nil
}

func runGetPhases(_ *cobra.Command, args []string) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}
	proto, err := registry.Lookup(args[0])
	if err != nil {
		return err
	}
	out := make([]string, 0, len(proto.Phases))
	for _, p := range proto.Phases {
		out = append(out, string(p))
	}
	return OutputJSON(out)
}

func runValidatePhase(cmd *cobra.Command, args []string) error {
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

	protocolName, phase := args[0], core.Phase(args[1])
	missing, err := core.NewTransitioner(registry).ValidatePhaseEntry(workflowState, protocolName, phase)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "BLOCKED: phase %q requires completion of: %s\n",
			phase, strings.Join(missing, ", "))
		return &BlockError{Reason: fmt.Sprintf("missing requirements: %s", strings.Join(missing, ", "))}
	}

	fmt.Println("Phase entry allowed")
	return nil
}

func runListProtocols(_ *cobra.Command, _ []string) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}
	for _, name := range registry.Names() {
		proto, err := registry.Lookup(name)
		if err != nil {
			return err
		}
		phases := make([]string, len(proto.Phases))
		for i, p := range proto.Phases {
			phases[i] = string(p)
		}
		fmt.Printf("\n%s:\n", name)
		fmt.Printf("  Phases: %s\n", strings.Join(phases, " → "))
		if gates := proto.SortedValidationNames(); len(gates) > 0 {
			fmt.Printf("  Validation gates: %s\n", strings.Join(gates, ", "))
		}
	}
	return nil
}
