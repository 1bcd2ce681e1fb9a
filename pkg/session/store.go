package session

import "context"

// StateStore persists session state, enabling stop-and-resume
// interviews. Implementations must round-trip the full persisted
// layout: flow id, active stage, slots, pending, step counter, and
// message log.
type StateStore interface {
	// Save persists the state for a session ID.
	Save(ctx context.Context, sessionID string, state *State) error

	// Load retrieves the state for a session ID.
	// Returns ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*State, error)

	// Delete removes the state for a session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns all known session IDs.
	List(ctx context.Context) ([]string, error)
}
