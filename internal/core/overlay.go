package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// overlayFile is the on-disk shape of a protocol overlay document.
type overlayFile struct {
	Protocols []*Protocol `yaml:"protocols"`
}

// RegisterOverlay parses a YAML overlay document and registers its
// protocols, subject to the same DAG validation as builtins. Overlay
// protocols may shadow builtins by name.
func RegisterOverlay(r *Registry, data []byte) error {
	var file overlayFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ErrValidation(CodeInvalidProtocol,
			fmt.Sprintf("parsing protocol overlay: %v", err))
	}
	for _, p := range file.Protocols {
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// RegisterOverlayFile loads an overlay from disk. A missing file is not an
// error; the builtin catalog stands alone.
func RegisterOverlayFile(r *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading protocol overlay: %w", err)
	}
	return RegisterOverlay(r, data)
}
