package agent

import (
	"time"

	"lcgwalk/domain/core"
)

var processStart = time.Now()

// ClockSeed derives a seed from a monotonic clock reading plus the agent's
// fingerprint, so agents created in the same instant still differ.
type ClockSeed struct {
	salt int64
	now  func() time.Duration
}

// NewClockSeed creates a seed source salted with id.
func NewClockSeed(id core.AgentID) *ClockSeed {
	return &ClockSeed{
		salt: core.ID(id).Fingerprint(),
		now:  func() time.Duration { return time.Since(processStart) },
	}
}

// NextSeed implements ports.SeedSource.
func (c *ClockSeed) NextSeed() int64 {
	return processStart.UnixNano() + int64(c.now()) + c.salt
}

// FixedSeed always returns the same seed. Useful for replays.
type FixedSeed int64

// NextSeed implements ports.SeedSource.
func (f FixedSeed) NextSeed() int64 { return int64(f) }
