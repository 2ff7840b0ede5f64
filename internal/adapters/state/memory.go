package state

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gateflow/gateflow/internal/core"
)

// MemorySessionStore is an in-memory SessionStore for tests. It round-trips
// documents through JSON so tests exercise the same serialization surface
// as the file-backed store.
type MemorySessionStore struct {
	sessionID string
	doc       []byte
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore(sessionID string) *MemorySessionStore {
	if sessionID == "" {
		sessionID = "default"
	}
	return &MemorySessionStore{sessionID: sessionID}
}

// Load returns the stored state, or the default empty state.
func (s *MemorySessionStore) Load(_ context.Context) (*core.WorkflowState, error) {
	if s.doc == nil {
		return core.EmptyState(), nil
	}
	var st core.WorkflowState
	if err := json.Unmarshal(s.doc, &st); err != nil {
		return core.EmptyState(), nil
	}
	return &st, nil
}

// Save stores a JSON copy of the state.
func (s *MemorySessionStore) Save(_ context.Context, st *core.WorkflowState) error {
	st.UpdatedAt = time.Now()
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	s.doc = data
	return nil
}

// Reset discards the stored document.
func (s *MemorySessionStore) Reset(_ context.Context) error {
	s.doc = nil
	return nil
}

// Exists reports whether a document is stored.
func (s *MemorySessionStore) Exists() bool {
	return s.doc != nil
}

// SessionID returns the session this store is bound to.
func (s *MemorySessionStore) SessionID() string {
	return s.sessionID
}

var _ core.SessionStore = (*MemorySessionStore)(nil)
