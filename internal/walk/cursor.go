package walk

import (
	"fmt"
	"time"

	"lcgwalk/domain/core"
	"lcgwalk/domain/motion"
	"lcgwalk/domain/sequence"
)

// Cursor walks an accepted sequence on a fixed cadence. It is owned by a
// single agent and is not safe for concurrent use.
type Cursor struct {
	seq    sequence.SampleSequence
	mapper Mapper
	step   time.Duration

	index int
	timer time.Duration
	last  motion.Direction
	steps int
}

// NewCursor creates a cursor positioned at the first sample. The timer starts
// expired, so the first Tick emits a direction immediately.
func NewCursor(seq sequence.SampleSequence, mapper Mapper, step time.Duration) (*Cursor, error) {
	if seq.IsEmpty() {
		return nil, fmt.Errorf("%w: cursor needs a non-empty sequence", core.ErrInsufficientSamples)
	}
	if step <= 0 {
		return nil, fmt.Errorf("%w: got %s", core.ErrInvalidStepDuration, step)
	}
	return &Cursor{seq: seq, mapper: mapper, step: step}, nil
}

// Next consumes one sample and returns its direction.
func (c *Cursor) Next() motion.Direction {
	s := c.seq.At(c.index)
	c.index = (c.index + 1) % c.seq.Len()
	c.last = c.mapper.Map(s)
	c.steps++
	return c.last
}

// Tick advances the countdown by dt. When it expires the cursor consumes the
// next sample and the countdown restarts at the step duration. advanced
// reports whether a sample was consumed on this tick.
func (c *Cursor) Tick(dt time.Duration) (dir motion.Direction, advanced bool) {
	c.timer -= dt
	if c.timer <= 0 {
		c.Next()
		c.timer = c.step
		return c.last, true
	}
	return c.last, false
}

// Expire forces the next Tick to consume a sample.
func (c *Cursor) Expire() {
	c.timer = 0
}

// Direction returns the last emitted direction.
func (c *Cursor) Direction() motion.Direction { return c.last }

// Index returns the position of the next sample to be read.
func (c *Cursor) Index() int { return c.index }

// Steps returns how many samples have been consumed.
func (c *Cursor) Steps() int { return c.steps }

// Remaining returns the time left before the next advance.
func (c *Cursor) Remaining() time.Duration { return c.timer }
