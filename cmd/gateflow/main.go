package main

import (
	"os"

	"github.com/gateflow/gateflow/cmd/gateflow/cmd"
)

// Version information - set by goreleaser at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersion(version, commit, date)

	if err := cmd.Execute(); err != nil {
		// Blocks exit 2, everything else 1; hook hosts key off this.
		os.Exit(cmd.ExitCode(err))
	}
}
