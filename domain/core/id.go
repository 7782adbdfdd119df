package core

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"
)

// ID is a time-ordered UUID (v7) in canonical string form. Agents and
// validation sessions are both keyed by it.
type ID string

// NewID returns a fresh v7 UUID, falling back to v4 if the clock source fails
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

func (id ID) String() string { return string(id) }

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool { return id == "" }

// Short returns the first eight characters, which is the leading timestamp
// segment of a v7 UUID and enough to tell agents apart in logs.
func (id ID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// Fingerprint folds the identifier into a non-negative 63-bit integer so it
// can be mixed into a generator seed.
func (id ID) Fingerprint() int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return int64(h.Sum64() >> 1)
}

type (
	// AgentID identifies one walker; its fingerprint feeds the walker's seed.
	AgentID ID
	// SessionID identifies one persisted validation session.
	SessionID ID
)

func (id AgentID) String() string   { return string(id) }
func (id AgentID) Short() string    { return ID(id).Short() }
func (id SessionID) String() string { return string(id) }

// NewAgentID creates a new agent identifier
func NewAgentID() AgentID { return AgentID(NewID()) }

// NewSessionID creates a new session identifier
func NewSessionID() SessionID { return SessionID(NewID()) }

// ParseSessionID accepts only canonical UUIDs so malformed path parameters
// never reach the session store.
func ParseSessionID(s string) (SessionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("session ID %q is not a UUID: %w", s, err)
	}
	return SessionID(s), nil
}
