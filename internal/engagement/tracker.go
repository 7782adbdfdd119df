package engagement

import (
	"context"
	"sync"
	"time"

	"lcgwalk/domain/core"
	"lcgwalk/internal"
)

// Tracker is the reference-counted engagement service. The level jumps to 1
// when the first agent engages and fades linearly to 0 over the fade duration
// once the last agent releases. Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	fade    time.Duration
	active  map[core.AgentID]struct{}
	level   float64
	fading  bool
	elapsed time.Duration
	start   float64
	ready   bool
	logger  *internal.Logger
}

// NewTracker creates a tracker. fade <= 0 silences immediately on release.
func NewTracker(fade time.Duration, logger *internal.Logger) *Tracker {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Tracker{
		fade:   fade,
		active: make(map[core.AgentID]struct{}),
		logger: logger.With("engagement"),
	}
}

// Init prepares the tracker for use with silence as the starting level.
func (t *Tracker) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = make(map[core.AgentID]struct{})
	t.level = 0
	t.fading = false
	t.ready = true
	return nil
}

// Teardown drops every registration and silences the tracker.
func (t *Tracker) Teardown() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = make(map[core.AgentID]struct{})
	t.level = 0
	t.fading = false
	t.ready = false
	return nil
}

// Request registers agent as engaged.
func (t *Tracker) Request(agent core.AgentID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ready || agent.String() == "" {
		return
	}
	if _, ok := t.active[agent]; ok {
		return
	}
	t.active[agent] = struct{}{}
	if len(t.active) == 1 && (t.fading || t.level == 0) {
		t.fading = false
		t.level = 1
		t.logger.Debug("engagement started by %s", agent)
	}
}

// Release unregisters agent.
func (t *Tracker) Release(agent core.AgentID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.active[agent]; !ok {
		return
	}
	delete(t.active, agent)
	t.checkStop()
}

// Reset clears every engaged agent, e.g. when the target is gone for good.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = make(map[core.AgentID]struct{})
	t.checkStop()
}

// Tick advances an in-progress fade by dt.
func (t *Tracker) Tick(dt time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.fading {
		return
	}
	t.elapsed += dt
	if t.fade <= 0 || t.elapsed >= t.fade {
		t.level = 0
		t.fading = false
		t.logger.Debug("engagement faded out")
		return
	}
	frac := float64(t.elapsed) / float64(t.fade)
	t.level = t.start * (1 - frac)
}

// Level returns the current intensity in [0, 1].
func (t *Tracker) Level() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.level
}

// Engaged returns the number of engaged agents.
func (t *Tracker) Engaged() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// IsEngaged reports whether agent is registered.
func (t *Tracker) IsEngaged(agent core.AgentID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[agent]
	return ok
}

// Fading reports whether a fade-out is in progress.
func (t *Tracker) Fading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fading
}

func (t *Tracker) checkStop() {
	if len(t.active) == 0 && t.level > 0 && !t.fading {
		t.fading = true
		t.elapsed = 0
		t.start = t.level
	}
}
