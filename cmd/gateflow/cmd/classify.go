package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/gateflow/gateflow/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <text>...",
	Short: "Classify a request and select a workflow protocol",
	Long: `Score the request text against the intent pattern sets and print the
winning intent, its confidence, and the protocol to launch. The result is
deterministic for identical input.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(_ *cobra.Command, args []string) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	result := classify.New(registry).Classify(text)

	newLogger().Debug("classified request",
		"intent", string(result.Intent),
		"protocol", result.Protocol,
		"confidence", result.Confidence)

	return OutputJSON(result)
}
