package validation

import (
	"bytes"
	"context"
	"math/rand"
	"testing"

	"lcgwalk/domain/core"
	"lcgwalk/domain/sequence"
	"lcgwalk/internal"
	"lcgwalk/internal/lcg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGenerator counts Generate calls
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(cfg sequence.GeneratorConfig, count int) (sequence.SampleSequence, error) {
	args := m.Called(cfg, count)
	return args.Get(0).(sequence.SampleSequence), args.Error(1)
}

// recordingGenerator remembers every seed it was asked for
type recordingGenerator struct {
	seeds []int64
	short bool
}

func (r *recordingGenerator) Generate(cfg sequence.GeneratorConfig, count int) (sequence.SampleSequence, error) {
	r.seeds = append(r.seeds, cfg.Seed)
	if r.short {
		return sequence.NewSampleSequence(make([]float64, count/2)), nil
	}
	return lcg.Generate(cfg, count)
}

func quiet() Option {
	return WithLogger(internal.NewDiscardLogger())
}

func constantSequence(n int, v float64) sequence.SampleSequence {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return sequence.NewSampleSequence(values)
}

func TestOrchestrator_AcceptsFirstSeed(t *testing.T) {
	cfg := DefaultValidationConfig()

	session, err := Run(cfg, quiet())
	require.NoError(t, err)

	assert.Equal(t, sequence.StateAccepted, session.State)
	assert.Equal(t, 1, session.Attempt)
	assert.Equal(t, int64(12345), session.TrialSeed)
	assert.NoError(t, session.Err())

	seq, ok := session.Sequence()
	require.True(t, ok)
	want, err := lcg.Generate(cfg.Generator, cfg.SampleCount)
	require.NoError(t, err)
	assert.True(t, want.Equal(seq))

	require.NotNil(t, session.Mean)
	require.NotNil(t, session.Variance)
	assert.True(t, session.Mean.Passed())
	assert.True(t, session.Variance.Passed())
}

func TestOrchestrator_AdvancesSeedAfterMeanFailure(t *testing.T) {
	// seed 127 yields a sample mean near 0.59; seed 128 passes both tests
	cfg := DefaultValidationConfig()
	cfg.Generator = cfg.Generator.WithSeed(127)
	gen := &recordingGenerator{}

	session, err := Run(cfg, quiet(), WithGenerator(gen))
	require.NoError(t, err)

	assert.True(t, session.Accepted())
	assert.Equal(t, 2, session.Attempt)
	assert.Equal(t, int64(128), session.TrialSeed)
	assert.Equal(t, []int64{127, 128}, gen.seeds)
}

func TestOrchestrator_LogsEveryAttempt(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultValidationConfig()
	cfg.Generator = cfg.Generator.WithSeed(127)

	_, err := Run(cfg, WithLogger(internal.NewLoggerTo(&buf, internal.LogLevelDebug)))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] search: attempt #1 (seed 127)")
	assert.Contains(t, out, "[DEBUG] search: attempt #2 (seed 128)")
	assert.Contains(t, out, "[INFO] search: accepted 100 samples from seed 128 after 2 attempts")
}

func TestOrchestrator_ExhaustsAfterExactlyMaxAttempts(t *testing.T) {
	cfg := DefaultValidationConfig()
	cfg.MaxAttempts = 25

	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, cfg.SampleCount).Return(constantSequence(cfg.SampleCount, 0.9), nil)

	session, err := Run(cfg, quiet(), WithGenerator(gen))
	require.NoError(t, err)

	assert.Equal(t, sequence.StateExhausted, session.State)
	assert.Equal(t, 25, session.Attempt)
	assert.ErrorIs(t, session.Err(), core.ErrValidationExhausted)
	assert.Nil(t, session.Variance, "variance is skipped once the mean test rejects")
	gen.AssertNumberOfCalls(t, "Generate", 25)

	_, ok := session.Sequence()
	assert.False(t, ok)
}

func TestOrchestrator_AlwaysFailingRecurrence(t *testing.T) {
	cfg := DefaultValidationConfig()
	cfg.Generator = sequence.GeneratorConfig{Multiplier: 0, Increment: 0, Modulus: 2147483648, Seed: 5}
	cfg.MaxAttempts = 40

	session, err := Run(cfg, quiet())
	require.NoError(t, err)
	assert.Equal(t, sequence.StateExhausted, session.State)
	assert.Equal(t, 40, session.Attempt)
}

func TestOrchestrator_DegenerateModulusIsExpelled(t *testing.T) {
	cfg := DefaultValidationConfig()
	cfg.Generator.Modulus = 1
	cfg.MaxAttempts = 10

	session, err := Run(cfg, quiet())
	require.NoError(t, err)
	assert.Equal(t, sequence.StateExhausted, session.State)
	assert.Equal(t, 10, session.Attempt)
}

func TestOrchestrator_SampleCountMismatchAdvancesSeed(t *testing.T) {
	cfg := DefaultValidationConfig()
	cfg.MaxAttempts = 4
	gen := &recordingGenerator{short: true}

	session, err := Run(cfg, quiet(), WithGenerator(gen))
	require.NoError(t, err)

	assert.Equal(t, sequence.StateExhausted, session.State)
	assert.Equal(t, []int64{12345, 12346, 12347, 12348}, gen.seeds)
	assert.Nil(t, session.Mean)
}

func TestOrchestrator_GeneratorConfigErrorStops(t *testing.T) {
	cfg := DefaultValidationConfig()

	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, cfg.SampleCount).Return(sequence.SampleSequence{}, core.NewInvalidModulusError(0))

	session, err := Run(cfg, quiet(), WithGenerator(gen))
	require.NoError(t, err)
	assert.Equal(t, sequence.StateExhausted, session.State)
	assert.Equal(t, 1, session.Attempt)
	gen.AssertNumberOfCalls(t, "Generate", 1)

	assert.True(t, session.HaltedEarly())
	assert.Contains(t, session.StopReason, core.ErrInvalidModulus.Error())
	assert.ErrorIs(t, session.Err(), core.ErrValidationExhausted)
	assert.ErrorIs(t, session.Err(), core.ErrInvalidModulus)
	assert.Contains(t, session.Err().Error(), "stopped after 1 of 100 attempts")
}

func TestOrchestrator_ConfigErrorsSurfaceBeforeRunning(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ValidationConfig)
		want   error
	}{
		{"zero modulus", func(c *ValidationConfig) { c.Generator.Modulus = 0 }, core.ErrInvalidModulus},
		{"negative modulus", func(c *ValidationConfig) { c.Generator.Modulus = -7 }, core.ErrInvalidModulus},
		{"one sample", func(c *ValidationConfig) { c.SampleCount = 1 }, core.ErrInsufficientSamples},
		{"zero samples", func(c *ValidationConfig) { c.SampleCount = 0 }, core.ErrInsufficientSamples},
		{"alpha zero", func(c *ValidationConfig) { c.SignificanceLevel = 0 }, core.ErrInvalidSignificance},
		{"alpha one", func(c *ValidationConfig) { c.SignificanceLevel = 1 }, core.ErrInvalidSignificance},
		{"no attempts", func(c *ValidationConfig) { c.MaxAttempts = 0 }, core.ErrInvalidAttempts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultValidationConfig()
			tt.mutate(&cfg)

			gen := new(MockGenerator)
			session, err := Run(cfg, quiet(), WithGenerator(gen))
			require.ErrorIs(t, err, tt.want)
			assert.True(t, core.IsConfigError(err))
			assert.Nil(t, session)
			gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		})
	}
}

func TestOrchestrator_Deterministic(t *testing.T) {
	cfg := DefaultValidationConfig()
	cfg.Generator = cfg.Generator.WithSeed(998877)

	first, err := Run(cfg, quiet())
	require.NoError(t, err)
	second, err := Run(cfg, quiet())
	require.NoError(t, err)

	assert.Equal(t, first.State, second.State)
	assert.Equal(t, first.Attempt, second.Attempt)
	assert.Equal(t, first.TrialSeed, second.TrialSeed)
	a, _ := first.Sequence()
	b, _ := second.Sequence()
	assert.True(t, a.Equal(b))
}

func TestSurvey_RandomSeedsFindPassingWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seeds := make([]int64, 64)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	executor := NewConcurrentExecutor(8, quiet())
	result, err := executor.Survey(context.Background(), DefaultValidationConfig(), seeds)
	require.NoError(t, err)

	require.Len(t, result.Sessions, len(seeds))
	assert.GreaterOrEqual(t, result.Accepted, 1)
	assert.Equal(t, len(seeds), result.Accepted+result.Exhausted)
	assert.LessOrEqual(t, result.MaxAttempts, DefaultMaxAttempts)
	for i, s := range result.Sessions {
		assert.Equal(t, seeds[i], s.Config.Seed, "sessions keep seed order")
		assert.LessOrEqual(t, s.Attempt, s.MaxAttempts)
	}
	assert.Greater(t, result.AcceptanceRate(), 0.0)
	assert.GreaterOrEqual(t, result.MeanAttempts(), 1.0)
}

func TestSurvey_RejectsInvalidBase(t *testing.T) {
	cfg := DefaultValidationConfig()
	cfg.SampleCount = 1

	_, err := NewConcurrentExecutor(0).Survey(context.Background(), cfg, []int64{1, 2})
	assert.ErrorIs(t, err, core.ErrInsufficientSamples)
}

func TestSurvey_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewConcurrentExecutor(2, quiet()).Survey(ctx, DefaultValidationConfig(), []int64{1, 2, 3})
	assert.ErrorIs(t, err, context.Canceled)
}
