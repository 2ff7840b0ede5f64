// Package state provides session-keyed persistence adapters for workflow
// state. The JSON store is the production backend; the in-memory store
// backs tests.
package state

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gateflow/gateflow/internal/core"
)

// sessionIDPattern restricts session identifiers to filename-safe tokens.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// JSONSessionStore persists one workflow state document per session as a
// JSON file under a shared directory. Documents are wrapped in an envelope
// carrying a schema version and checksum; a document that fails to parse
// or verify is treated as absent, never as a fatal error.
type JSONSessionStore struct {
	dir       string
	sessionID string
}

// NewJSONSessionStore creates a store bound to one session. The session
// identifier keys the on-disk filename, so independent sessions never
// cross-contaminate.
func NewJSONSessionStore(dir, sessionID string) (*JSONSessionStore, error) {
	if sessionID == "" {
		sessionID = "default"
	}
	if !sessionIDPattern.MatchString(sessionID) {
		return nil, core.ErrValidation(core.CodeInvalidStatus,
			fmt.Sprintf("invalid session identifier: %q", sessionID))
	}
	return &JSONSessionStore{dir: dir, sessionID: sessionID}, nil
}

// stateEnvelope wraps state with metadata.
type stateEnvelope struct {
	Version   int                 `json:"version"`
	Checksum  string              `json:"checksum"`
	UpdatedAt time.Time           `json:"updated_at"`
	State     *core.WorkflowState `json:"state"`
}

// envelopeVersion is the schema version for persisted documents.
const envelopeVersion = 1

// Load retrieves the session's state. A missing, unparseable, or
// checksum-failing document degrades to the default empty state: state is
// advisory, and a corrupt file must never crash the caller. When the
// primary fails but a backup verifies, the backup wins.
func (s *JSONSessionStore) Load(_ context.Context) (*core.WorkflowState, error) {
	st, err := s.loadFromPath(s.path())
	if err == nil {
		return st, nil
	}
	if st, backupErr := s.loadFromPath(s.backupPath()); backupErr == nil {
		return st, nil
	}
	if os.IsNotExist(err) {
		return core.EmptyState(), nil
	}
	// Corrupt document: recover to default rather than propagate.
	return core.EmptyState(), nil
}

// Save persists the state atomically, stamping UpdatedAt and keeping a
// backup of the previous document.
func (s *JSONSessionStore) Save(_ context.Context, st *core.WorkflowState) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	if s.Exists() {
		if err := s.createBackup(); err != nil {
			return fmt.Errorf("creating backup: %w", err)
		}
	}

	st.UpdatedAt = time.Now()

	stateBytes, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	hash := sha256.Sum256(stateBytes)

	envelope := stateEnvelope{
		Version:   envelopeVersion,
		Checksum:  hex.EncodeToString(hash[:]),
		UpdatedAt: st.UpdatedAt,
		State:     st,
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling envelope: %w", err)
	}

	if err := atomicWriteFile(s.path(), data, 0o644); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	return nil
}

// Reset discards the persisted document and its backup.
func (s *JSONSessionStore) Reset(_ context.Context) error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing state file: %w", err)
	}
	if err := os.Remove(s.backupPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing backup file: %w", err)
	}
	return nil
}

// Exists checks if a persisted document is present.
func (s *JSONSessionStore) Exists() bool {
	_, err := os.Stat(s.path())
	return err == nil
}

// SessionID returns the session this store is bound to.
func (s *JSONSessionStore) SessionID() string {
	return s.sessionID
}

// Path returns the state file path.
func (s *JSONSessionStore) Path() string {
	return s.path()
}

func (s *JSONSessionStore) path() string {
	return filepath.Join(s.dir, s.sessionID+".json")
}

func (s *JSONSessionStore) backupPath() string {
	return s.path() + ".bak"
}

func (s *JSONSessionStore) createBackup() error {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return err
	}
	return atomicWriteFile(s.backupPath(), data, 0o644)
}

// loadFromPath reads and verifies one envelope. Verification failures are
// reported so Load can fall through to the backup.
func (s *JSONSessionStore) loadFromPath(path string) (*core.WorkflowState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var envelope stateEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshaling envelope: %w", err)
	}
	if envelope.State == nil {
		return nil, core.ErrState(core.CodeStateCorrupted, "envelope missing state")
	}

	stateBytes, err := json.Marshal(envelope.State)
	if err != nil {
		return nil, fmt.Errorf("marshaling state for checksum: %w", err)
	}
	hash := sha256.Sum256(stateBytes)
	if hex.EncodeToString(hash[:]) != envelope.Checksum {
		return nil, core.ErrState(core.CodeStateCorrupted, "checksum mismatch")
	}

	return envelope.State, nil
}

// Verify that JSONSessionStore implements core.SessionStore.
var _ core.SessionStore = (*JSONSessionStore)(nil)
