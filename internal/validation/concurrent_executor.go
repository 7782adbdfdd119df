package validation

import (
	"context"
	"runtime"
	"time"

	"lcgwalk/domain/sequence"

	"golang.org/x/sync/errgroup"
)

// SurveyResult summarizes one search per initial seed.
type SurveyResult struct {
	Sessions      []*sequence.Session
	Accepted      int
	Exhausted     int
	TotalAttempts int
	MaxAttempts   int
	Elapsed       time.Duration
}

// AcceptanceRate is the share of seeds whose search ended Accepted.
func (r SurveyResult) AcceptanceRate() float64 {
	if len(r.Sessions) == 0 {
		return 0
	}
	return float64(r.Accepted) / float64(len(r.Sessions))
}

// MeanAttempts is the average number of attempts per search.
func (r SurveyResult) MeanAttempts() float64 {
	if len(r.Sessions) == 0 {
		return 0
	}
	return float64(r.TotalAttempts) / float64(len(r.Sessions))
}

// ConcurrentExecutor runs independent searches in parallel. Searches share no
// mutable state; each gets its own orchestrator.
type ConcurrentExecutor struct {
	parallelism int
	opts        []Option
}

// NewConcurrentExecutor creates an executor. parallelism <= 0 uses NumCPU.
func NewConcurrentExecutor(parallelism int, opts ...Option) *ConcurrentExecutor {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	return &ConcurrentExecutor{parallelism: parallelism, opts: opts}
}

// Survey runs one search per seed using base for every other parameter.
// Sessions are returned in seed order.
func (e *ConcurrentExecutor) Survey(ctx context.Context, base ValidationConfig, seeds []int64) (*SurveyResult, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	sessions := make([]*sequence.Session, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)

	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cfg := base
			cfg.Generator = base.Generator.WithSeed(seed)

			o, err := NewValidationOrchestrator(cfg, e.opts...)
			if err != nil {
				return err
			}
			sessions[i] = o.Run()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &SurveyResult{Sessions: sessions, Elapsed: time.Since(start)}
	for _, s := range sessions {
		result.TotalAttempts += s.Attempt
		if s.Attempt > result.MaxAttempts {
			result.MaxAttempts = s.Attempt
		}
		if s.Accepted() {
			result.Accepted++
		} else {
			result.Exhausted++
		}
	}
	return result, nil
}
