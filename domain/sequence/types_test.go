package sequence

import (
	"testing"

	"lcgwalk/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultGeneratorConfig().Validate())

	for _, m := range []int64{0, -1, -2147483648} {
		err := GeneratorConfig{Multiplier: 3, Increment: 1, Modulus: m}.Validate()
		assert.ErrorIs(t, err, core.ErrInvalidModulus, "modulus %d", m)
	}

	degenerate := GeneratorConfig{Multiplier: 3, Increment: 1, Modulus: 1}
	assert.NoError(t, degenerate.Validate())
	assert.True(t, degenerate.IsDegenerate())
	assert.False(t, DefaultGeneratorConfig().IsDegenerate())
}

func TestGeneratorConfig_WithSeed(t *testing.T) {
	base := DefaultGeneratorConfig()
	next := base.WithSeed(99)

	assert.Equal(t, int64(99), next.Seed)
	assert.Equal(t, int64(12345), base.Seed, "WithSeed copies")
	assert.Equal(t, base.Multiplier, next.Multiplier)
}

func TestSampleSequence_IsImmutable(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3}
	seq := NewSampleSequence(values)

	values[0] = 0.9
	assert.Equal(t, 0.1, seq.At(0), "constructor copies its input")

	out := seq.Values()
	out[1] = 0.9
	assert.Equal(t, 0.2, seq.At(1), "Values returns a copy")

	assert.Equal(t, 3, seq.Len())
	assert.False(t, seq.IsEmpty())
	assert.True(t, NewSampleSequence(nil).IsEmpty())
	assert.True(t, seq.Equal(NewSampleSequence([]float64{0.1, 0.2, 0.3})))
	assert.False(t, seq.Equal(NewSampleSequence([]float64{0.1, 0.2})))
}

func TestSession_Lifecycle(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	s := NewSession(cfg, 100, 0.05, 10)

	assert.Equal(t, StatePending, s.State)
	assert.Equal(t, cfg.Seed, s.TrialSeed)
	assert.False(t, s.ID.String() == "")
	_, ok := s.Sequence()
	assert.False(t, ok)
	assert.NoError(t, s.Err())

	seq := NewSampleSequence([]float64{0.5})
	s.Accept(seq)
	got, ok := s.Sequence()
	require.True(t, ok)
	assert.True(t, got.Equal(seq))
	assert.True(t, s.Accepted())

	s.Attempt = 10
	s.Exhaust()
	_, ok = s.Sequence()
	assert.False(t, ok)
	assert.ErrorIs(t, s.Err(), core.ErrValidationExhausted)
	assert.False(t, s.HaltedEarly())
	assert.Empty(t, s.StopReason)
}

func TestSession_HaltKeepsCause(t *testing.T) {
	s := NewSession(DefaultGeneratorConfig(), 100, 0.05, 10)
	s.Attempt = 3
	s.Halt(core.NewInvalidModulusError(-1))

	assert.Equal(t, StateExhausted, s.State)
	assert.True(t, s.HaltedEarly())
	assert.Equal(t, "modulus must be greater than 0: got -1", s.StopReason)
	assert.ErrorIs(t, s.Err(), core.ErrValidationExhausted)
	assert.ErrorIs(t, s.Err(), core.ErrInvalidModulus)
	assert.Contains(t, s.Err().Error(), "stopped after 3 of 10 attempts")

	// a session rebuilt from storage only has the reason text
	restored := &Session{State: StateExhausted, StopReason: s.StopReason, MaxAttempts: 10, Attempt: 3}
	assert.Contains(t, restored.Err().Error(), s.StopReason)
}

func TestValidationOutcome_String(t *testing.T) {
	o := ValidationOutcome{Test: TestMean, Verdict: VerdictPassed, Statistic: 0.5, Lower: 0.44, Upper: 0.56, Samples: 100}
	assert.True(t, o.Passed())
	assert.Contains(t, o.String(), "mean test")
	assert.Contains(t, o.String(), "passed")

	o = ValidationOutcome{Test: TestVariance, Verdict: VerdictFailed, Err: core.ErrInsufficientSamples}
	assert.False(t, o.Passed())
	assert.Contains(t, o.String(), core.ErrInsufficientSamples.Error())
}
