package ports

import (
	"context"

	"lcgwalk/domain/core"
	"lcgwalk/domain/sequence"
)

// SessionRepository persists finished validation sessions
type SessionRepository interface {
	// Save stores a finished session, including its accepted sequence
	Save(ctx context.Context, session *sequence.Session) error

	// Get retrieves a session by ID
	Get(ctx context.Context, id core.SessionID) (*sequence.Session, error)

	// List returns the most recent sessions, newest first. limit <= 0 means no limit
	List(ctx context.Context, limit int) ([]*sequence.Session, error)
}
