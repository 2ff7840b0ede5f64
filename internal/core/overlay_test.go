package core

import (
	"os"
	"path/filepath"
	"testing"
)

const overlayYAML = `
protocols:
  - name: deploy_workflow
    phases: [build, deploy, smoke]
    phase_agents:
      deploy: deploy-agent
    phase_requirements:
      deploy: [build]
      smoke: [deploy]
    validation_gates:
      smoke: [health_check]
`

func TestRegisterOverlay(t *testing.T) {
	r := NewRegistry()
	if err := RegisterOverlay(r, []byte(overlayYAML)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := r.Lookup("deploy_workflow")
	if err != nil {
		t.Fatalf("unexpected lookup error: %v", err)
	}
	if p.FirstPhase() != "build" {
		t.Fatalf("expected first phase build, got %s", p.FirstPhase())
	}
	if p.AgentFor("deploy") != "deploy-agent" {
		t.Fatalf("expected deploy-agent for deploy phase")
	}
	if len(p.ValidationGates["smoke"]) != 1 || p.ValidationGates["smoke"][0] != "health_check" {
		t.Fatalf("unexpected validation gates: %v", p.ValidationGates["smoke"])
	}
}

func TestRegisterOverlay_InvalidYAML(t *testing.T) {
	r := NewRegistry()
	err := RegisterOverlay(r, []byte("protocols: [not: {valid"))
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !IsCategory(err, ErrCatValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterOverlay_InvalidProtocol(t *testing.T) {
	r := NewRegistry()
	err := RegisterOverlay(r, []byte("protocols:\n  - name: bad\n    phases: []\n"))
	if err == nil {
		t.Fatalf("expected DAG validation to reject empty phases")
	}
}

func TestRegisterOverlayFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "protocols.yaml")
	if err := os.WriteFile(path, []byte(overlayYAML), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := NewRegistry()
	if err := RegisterOverlayFile(r, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Has("deploy_workflow") {
		t.Fatalf("expected overlay protocol registered")
	}
}

func TestRegisterOverlayFile_Missing(t *testing.T) {
	r := NewRegistry()
	if err := RegisterOverlayFile(r, filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("expected missing overlay file to be ignored, got %v", err)
	}
}
