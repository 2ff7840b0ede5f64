package core

import "context"

// SessionStore defines the contract for workflow state persistence. One
// store instance is bound to one session; sessions never cross-read.
//
// Load never fails on a corrupt or absent document: state is advisory and
// resumable, so corruption degrades to the default empty state. Every
// engine operation reloads, mutates, and saves back; no component caches
// state across operations.
type SessionStore interface {
	// Load retrieves the session's state, or a freshly constructed default
	// state when none is persisted or the payload is unparseable.
	Load(ctx context.Context) (*WorkflowState, error)

	// Save persists the state atomically, stamping UpdatedAt.
	Save(ctx context.Context, state *WorkflowState) error

	// Reset discards persisted state; the next Load returns the default.
	Reset(ctx context.Context) error

	// Exists reports whether a persisted document is present.
	Exists() bool

	// SessionID returns the session this store is bound to.
	SessionID() string
}
