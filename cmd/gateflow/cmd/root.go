package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	noColor   bool
	sessionID string
	stateDir  string
	protoPath string

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string
)

// BlockError signals a deliberate gate or prerequisite block. Commands
// print their own diagnostic to stderr before returning it; main maps it
// to exit code 2, distinct from usage errors (1).
type BlockError struct {
	Reason string
}

func (e *BlockError) Error() string {
	return e.Reason
}

var rootCmd = &cobra.Command{
	Use:   "gateflow",
	Short: "Agent-gated workflow protocol engine",
	Long: `gateflow tracks multi-phase workflow protocols and gates actions until
each phase's mandated agent has executed. A hook host invokes it as
short-lived subprocesses and keys off exit codes: 0 allows, 2 blocks,
1 is a usage error.

Running 'gateflow' without arguments shows the current workflow status.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initConfig()
	},
	// Default to status display when no subcommand is provided
	RunE: runStatus,
}

// Execute runs the root command, printing non-block errors to stderr.
// Block diagnostics are already printed by the blocking command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		var blockErr *BlockError
		if !errors.As(err, &blockErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return err
}

// ExitCode maps an Execute error to the process exit code contract.
func ExitCode(err error) int {
	var blockErr *BlockError
	if errors.As(err, &blockErr) {
		return 2
	}
	return 1
}

func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// GetVersion returns the application version string.
func GetVersion() string {
	return appVersion
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: .gateflow/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto",
		"log format (auto, text, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"disable colored output")
	rootCmd.PersistentFlags().StringVar(&sessionID, "session", "",
		"session identifier (default: $GATEFLOW_SESSION or \"default\")")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "",
		"directory for session state files")
	rootCmd.PersistentFlags().StringVar(&protoPath, "protocols", "",
		"YAML file with additional protocol definitions")

	// Bind flags to viper (errors are nil when flag exists)
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	_ = viper.BindPFlag("session", rootCmd.PersistentFlags().Lookup("session"))
	_ = viper.BindPFlag("state.dir", rootCmd.PersistentFlags().Lookup("state-dir"))
	_ = viper.BindPFlag("protocols.path", rootCmd.PersistentFlags().Lookup("protocols"))
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".gateflow")
		viper.AddConfigPath("$HOME/.config/gateflow")
	}

	viper.SetEnvPrefix("GATEFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	return nil
}
