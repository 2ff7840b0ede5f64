package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/gateflow/gateflow/internal/adapters/state"
	"github.com/gateflow/gateflow/internal/core"
	"github.com/gateflow/gateflow/internal/logging"
)

// newRegistry builds the protocol registry: builtins plus any overlay file
// from configuration.
func newRegistry() (*core.Registry, error) {
	registry := core.NewRegistry()
	if path := viper.GetString("protocols.path"); path != "" {
		if err := core.RegisterOverlayFile(registry, path); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// newStore builds the session store from configuration.
func newStore() (core.SessionStore, error) {
	dir := viper.GetString("state.dir")
	if dir == "" {
		dir = defaultStateDir()
	}
	session := viper.GetString("session")
	return state.NewJSONSessionStore(dir, session)
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".gateflow", "state")
	}
	return filepath.Join(home, ".gateflow", "state")
}

// newLogger builds the logger from configuration.
func newLogger() *logging.Logger {
	return logging.New(logging.Config{
		Level:   viper.GetString("log.level"),
		Format:  viper.GetString("log.format"),
		NoColor: viper.GetBool("no_color"),
	})
}

// OutputJSON writes the given value to stdout as indented JSON.
func OutputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
