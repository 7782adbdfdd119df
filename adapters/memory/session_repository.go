package memory

import (
	"context"
	"sort"
	"sync"

	"lcgwalk/domain/core"
	"lcgwalk/domain/sequence"
	"lcgwalk/internal/errors"
	"lcgwalk/ports"
)

// SessionRepository keeps sessions in process memory. Used when no
// DATABASE_URL is configured and in tests.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sequence.Session
}

// NewSessionRepository creates an empty store
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[core.SessionID]*sequence.Session)}
}

// Save stores session, replacing any previous version with the same ID
func (r *SessionRepository) Save(ctx context.Context, session *sequence.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session == nil || session.ID.String() == "" {
		return errors.InvalidInput("session must have an ID")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id core.SessionID) (*sequence.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.NotFound("session " + id.String())
	}
	return s, nil
}

// List returns sessions newest first
func (r *SessionRepository) List(ctx context.Context, limit int) ([]*sequence.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]*sequence.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ ports.SessionRepository = (*SessionRepository)(nil)
