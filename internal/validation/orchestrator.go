package validation

import (
	"fmt"

	"lcgwalk/domain/core"
	"lcgwalk/domain/sequence"
	"lcgwalk/internal"
	"lcgwalk/internal/lcg"
	"lcgwalk/internal/uniformity"
	"lcgwalk/ports"
)

// DefaultMaxAttempts bounds the seed search when no budget is configured.
const DefaultMaxAttempts = 100

// ValidationConfig describes one generate/validate search.
type ValidationConfig struct {
	Generator         sequence.GeneratorConfig
	SampleCount       int
	SignificanceLevel float64
	MaxAttempts       int
}

// DefaultValidationConfig returns the parameters the walker uses.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		Generator:         sequence.DefaultGeneratorConfig(),
		SampleCount:       100,
		SignificanceLevel: 0.05,
		MaxAttempts:       DefaultMaxAttempts,
	}
}

// Validate checks the config-level failures that no amount of re-seeding fixes.
func (c ValidationConfig) Validate() error {
	if err := c.Generator.Validate(); err != nil {
		return err
	}
	if c.SampleCount <= 1 {
		return fmt.Errorf("%w: sample count %d", core.ErrInsufficientSamples, c.SampleCount)
	}
	if c.SignificanceLevel <= 0 || c.SignificanceLevel >= 1 {
		return fmt.Errorf("%w: got %v", core.ErrInvalidSignificance, c.SignificanceLevel)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%w: got %d", core.ErrInvalidAttempts, c.MaxAttempts)
	}
	return nil
}

// Option configures a ValidationOrchestrator.
type Option func(*ValidationOrchestrator)

// WithGenerator replaces the LCG generator.
func WithGenerator(g ports.SequenceGenerator) Option {
	return func(o *ValidationOrchestrator) { o.generator = g }
}

// WithLogger sets the logger used for the per-attempt trace.
func WithLogger(l *internal.Logger) Option {
	return func(o *ValidationOrchestrator) { o.logger = l }
}

// ValidationOrchestrator searches consecutive seeds for a sequence that
// passes both the mean and the variance test.
type ValidationOrchestrator struct {
	config    ValidationConfig
	generator ports.SequenceGenerator
	logger    *internal.Logger
}

// NewValidationOrchestrator validates config and returns an orchestrator.
// Configuration-level failures are returned here, before any attempt runs.
func NewValidationOrchestrator(config ValidationConfig, opts ...Option) (*ValidationOrchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := &ValidationOrchestrator{
		config:    config,
		generator: lcg.NewGenerator(),
		logger:    internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("search")
	return o, nil
}

// Config returns the orchestrator's configuration.
func (o *ValidationOrchestrator) Config() ValidationConfig {
	return o.config
}

// Run executes the bounded search synchronously. The returned session is
// either Accepted, carrying the sequence, or Exhausted after MaxAttempts. A
// configuration error from the generator halts the search early; the session
// is Exhausted and records the cause in StopReason.
func (o *ValidationOrchestrator) Run() *sequence.Session {
	cfg := o.config
	session := sequence.NewSession(cfg.Generator, cfg.SampleCount, cfg.SignificanceLevel, cfg.MaxAttempts)

	if cfg.Generator.IsDegenerate() {
		o.logger.Warn("modulus m=1: every sample collapses to one value, validation will fail (%v)", core.ErrDegenerateModulus)
	}

	for session.Attempt < cfg.MaxAttempts {
		session.Attempt++
		trial := cfg.Generator.WithSeed(session.TrialSeed)

		seq, err := o.generator.Generate(trial, cfg.SampleCount)
		if err == nil && seq.Len() != cfg.SampleCount {
			err = core.NewSampleCountError(cfg.SampleCount, seq.Len())
		}
		if err != nil {
			if core.IsConfigError(err) {
				session.Halt(err)
				o.logger.Error("attempt #%d (seed %d): %v", session.Attempt, session.TrialSeed, session.Err())
				return session
			}
			o.logger.Debug("attempt #%d (seed %d): %v", session.Attempt, session.TrialSeed, err)
			session.TrialSeed++
			continue
		}

		mean := uniformity.ValidateMean(seq, cfg.SignificanceLevel)
		session.Mean = &mean
		session.Variance = nil
		o.logger.Debug("attempt #%d (seed %d): %s", session.Attempt, session.TrialSeed, mean)
		if !mean.Passed() {
			session.TrialSeed++
			continue
		}

		variance := uniformity.ValidateVariance(seq, mean.Statistic, cfg.SignificanceLevel)
		session.Variance = &variance
		o.logger.Debug("attempt #%d (seed %d): %s", session.Attempt, session.TrialSeed, variance)
		if !variance.Passed() {
			session.TrialSeed++
			continue
		}

		session.Accept(seq)
		o.logger.Info("accepted %d samples from seed %d after %d attempts", seq.Len(), session.TrialSeed, session.Attempt)
		return session
	}

	session.Exhaust()
	o.logger.Warn("%v", session.Err())
	return session
}

// Run validates config and runs a single search with the default generator.
func Run(config ValidationConfig, opts ...Option) (*sequence.Session, error) {
	o, err := NewValidationOrchestrator(config, opts...)
	if err != nil {
		return nil, err
	}
	return o.Run(), nil
}
