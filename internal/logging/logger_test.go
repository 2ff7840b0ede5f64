package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSONFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})
	log.Info("workflow started", "protocol", "skill_creation")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "workflow started" {
		t.Errorf("expected msg field, got: %v", entry)
	}
	if entry["protocol"] != "skill_creation" {
		t.Errorf("expected protocol field, got: %v", entry)
	}
}

func TestNew_TextFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "text", Output: &buf})
	log.Info("gate decision", "allowed", true)

	out := buf.String()
	if !strings.Contains(out, "gate decision") || !strings.Contains(out, "allowed=true") {
		t.Errorf("unexpected text output: %s", out)
	}
}

func TestNew_AutoFallsBackToJSON(t *testing.T) {
	t.Parallel()
	// A bytes.Buffer is not a terminal, so auto must pick JSON.
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "auto", Output: &buf})
	log.Info("piped")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Errorf("expected JSON when output is not a TTY, got %q", buf.String())
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "text", Output: &buf})

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug/info suppressed at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("expected warn emitted: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_FieldHelpers(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	log.WithSession("sess-1").
		WithProtocol("verify_workflow").
		WithPhase("form_audit").
		WithAgent("form-auditor-agent").
		Info("agent gate opened")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	for key, want := range map[string]string{
		"session":  "sess-1",
		"protocol": "verify_workflow",
		"phase":    "form_audit",
		"agent":    "form-auditor-agent",
	} {
		if entry[key] != want {
			t.Errorf("expected %s=%s, got %v", key, want, entry[key])
		}
	}
}

func TestNewNop(t *testing.T) {
	t.Parallel()
	log := NewNop()
	// Must not panic or write anywhere visible.
	log.Info("discarded", "key", "value")
	log.WithSession("s").Error("also discarded")
}
