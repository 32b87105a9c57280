package port

import (
	"context"

	"bidrecon/internal/domain"
)

// SessionStore holds per-session working state between uploads and analysis.
// Get returns domain.ErrSessionNotFound for unknown or expired sessions.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.SessionState, error)
	// GetOrCreate returns the existing session or initializes an empty one.
	GetOrCreate(ctx context.Context, id string) (*domain.SessionState, error)
	// Update applies fn to the session state under the store's lock and
	// persists the result. The session is created if absent.
	Update(ctx context.Context, id string, fn func(*domain.SessionState)) (*domain.SessionState, error)
	// Clear resets the working state of a session. Analysis history is kept
	// elsewhere and is not affected.
	Clear(ctx context.Context, id string) error
}
