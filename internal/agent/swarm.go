package agent

import (
	"context"
	"time"

	"lcgwalk/domain/motion"

	"golang.org/x/sync/errgroup"
)

// Frame is the state of one walker after a swarm step.
type Frame struct {
	Walker   *Walker
	Intent   motion.Intent
	Position motion.Vec2
}

// Swarm steps a set of walkers together and applies their intents to
// positions. Each walker is ticked on exactly one goroutine per step, so
// observers registered on different walkers may run concurrently.
type Swarm struct {
	walkers     []*Walker
	parallelism int
	elapsed     time.Duration
}

// NewSwarm creates a swarm. parallelism <= 0 means one goroutine per walker.
func NewSwarm(parallelism int, walkers ...*Walker) *Swarm {
	return &Swarm{walkers: walkers, parallelism: parallelism}
}

// Add appends a walker.
func (s *Swarm) Add(w *Walker) { s.walkers = append(s.walkers, w) }

// Walkers returns the swarm members.
func (s *Swarm) Walkers() []*Walker { return s.walkers }

// Elapsed returns the simulated time.
func (s *Swarm) Elapsed() time.Duration { return s.elapsed }

// Step ticks every walker by dt and moves it by speed*dt along its intent.
func (s *Swarm) Step(ctx context.Context, dt time.Duration) ([]Frame, error) {
	frames := make([]Frame, len(s.walkers))

	g, ctx := errgroup.WithContext(ctx)
	if s.parallelism > 0 {
		g.SetLimit(s.parallelism)
	}
	for i, w := range s.walkers {
		i, w := i, w
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			intent := w.Tick(dt)
			pos := w.Position().Add(intent.Displacement(dt.Seconds()))
			w.SetPosition(pos)
			frames[i] = Frame{Walker: w, Intent: intent, Position: pos}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.elapsed += dt
	return frames, nil
}

// Run steps the swarm n times, invoking onFrame after each step.
func (s *Swarm) Run(ctx context.Context, n int, dt time.Duration, onFrame func(step int, frames []Frame)) error {
	for i := 0; i < n; i++ {
		frames, err := s.Step(ctx, dt)
		if err != nil {
			return err
		}
		if onFrame != nil {
			onFrame(i, frames)
		}
	}
	return nil
}

// Close closes every walker.
func (s *Swarm) Close() error {
	for _, w := range s.walkers {
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}
