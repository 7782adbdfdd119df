package sequence

import (
	"errors"
	"fmt"
	"time"

	"lcgwalk/domain/core"
)

// ============================================================================
// GENERATOR PARAMETERS
// ============================================================================

// GeneratorConfig holds the recurrence x_{i+1} = (a*x_i + c) mod m and its seed.
type GeneratorConfig struct {
	Multiplier int64 `json:"multiplier"` // a
	Increment  int64 `json:"increment"`  // c
	Modulus    int64 `json:"modulus"`    // m
	Seed       int64 `json:"seed"`       // x0
}

// DefaultGeneratorConfig returns the glibc-style parameterization with m = 2^31.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Multiplier: 1103515245,
		Increment:  12345,
		Modulus:    2147483648,
		Seed:       12345,
	}
}

// Validate checks the config-level invariant m > 0.
func (c GeneratorConfig) Validate() error {
	if c.Modulus <= 0 {
		return core.NewInvalidModulusError(c.Modulus)
	}
	return nil
}

// IsDegenerate reports m == 1, where every output collapses to one value.
func (c GeneratorConfig) IsDegenerate() bool {
	return c.Modulus == 1
}

// WithSeed returns a copy of the config using seed as x0.
func (c GeneratorConfig) WithSeed(seed int64) GeneratorConfig {
	c.Seed = seed
	return c
}

func (c GeneratorConfig) String() string {
	return fmt.Sprintf("a=%d c=%d m=%d seed=%d", c.Multiplier, c.Increment, c.Modulus, c.Seed)
}

// ============================================================================
// SAMPLE SEQUENCE
// ============================================================================

// SampleSequence is an immutable, fixed-length sequence of reals in [0, 1].
type SampleSequence struct {
	values []float64
}

// NewSampleSequence copies values into a new immutable sequence.
func NewSampleSequence(values []float64) SampleSequence {
	owned := make([]float64, len(values))
	copy(owned, values)
	return SampleSequence{values: owned}
}

// Len returns the number of samples.
func (s SampleSequence) Len() int { return len(s.values) }

// At returns the i-th sample.
func (s SampleSequence) At(i int) float64 { return s.values[i] }

// IsEmpty reports whether the sequence holds no samples.
func (s SampleSequence) IsEmpty() bool { return len(s.values) == 0 }

// Values returns a copy of the samples.
func (s SampleSequence) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Equal reports element-wise equality.
func (s SampleSequence) Equal(other SampleSequence) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for i := range s.values {
		if s.values[i] != other.values[i] {
			return false
		}
	}
	return true
}

// ============================================================================
// VALIDATION OUTCOME
// ============================================================================

// Verdict tags the result of a single hypothesis test.
type Verdict string

const (
	VerdictPassed Verdict = "passed"
	VerdictFailed Verdict = "failed"
)

// TestKind names the statistic a validator evaluated.
type TestKind string

const (
	TestMean     TestKind = "mean"
	TestVariance TestKind = "variance"
)

// ValidationOutcome carries the verdict plus the statistic and the interval it
// was compared against. Err is set when the statistic could not be evaluated.
type ValidationOutcome struct {
	Test      TestKind `json:"test"`
	Verdict   Verdict  `json:"verdict"`
	Statistic float64  `json:"statistic"`
	Lower     float64  `json:"lower"`
	Upper     float64  `json:"upper"`
	Samples   int      `json:"samples"`
	Err       error    `json:"-"`
}

// Passed reports whether the test accepted the sequence.
func (o ValidationOutcome) Passed() bool { return o.Verdict == VerdictPassed }

func (o ValidationOutcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s test: %s (%v)", o.Test, o.Verdict, o.Err)
	}
	return fmt.Sprintf("%s test: stat=%.5f lower=%.5f upper=%.5f -> %s", o.Test, o.Statistic, o.Lower, o.Upper, o.Verdict)
}

// ============================================================================
// VALIDATION SESSION
// ============================================================================

// SessionState is the terminal-or-not state of a validation session.
type SessionState string

const (
	StatePending   SessionState = "pending"
	StateAccepted  SessionState = "accepted"
	StateExhausted SessionState = "exhausted"
)

// Session records one synchronous generate/validate search.
type Session struct {
	ID          core.SessionID  `json:"id"`
	Config      GeneratorConfig `json:"config"`
	SampleCount int             `json:"sample_count"`
	Alpha       float64         `json:"alpha"`
	MaxAttempts int             `json:"max_attempts"`

	Attempt   int          `json:"attempt"`
	TrialSeed int64        `json:"trial_seed"`
	State     SessionState `json:"state"`

	// Outcomes of the last attempt that reached each validator.
	Mean     *ValidationOutcome `json:"mean,omitempty"`
	Variance *ValidationOutcome `json:"variance,omitempty"`

	// StopReason is the configuration error that ended an exhausted search
	// before its attempt budget ran out. Empty when the budget was used up.
	StopReason string `json:"stop_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	sequence  SampleSequence
	stopCause error
}

// NewSession creates a pending session for cfg.
func NewSession(cfg GeneratorConfig, sampleCount int, alpha float64, maxAttempts int) *Session {
	return &Session{
		ID:          core.NewSessionID(),
		Config:      cfg,
		SampleCount: sampleCount,
		Alpha:       alpha,
		MaxAttempts: maxAttempts,
		TrialSeed:   cfg.Seed,
		State:       StatePending,
		CreatedAt:   time.Now().UTC(),
	}
}

// Accept moves the session to Accepted carrying seq.
func (s *Session) Accept(seq SampleSequence) {
	s.State = StateAccepted
	s.sequence = seq
}

// Exhaust moves the session to Exhausted.
func (s *Session) Exhaust() {
	s.State = StateExhausted
	s.sequence = SampleSequence{}
}

// Halt moves the session to Exhausted because cause makes every remaining
// attempt fail the same way.
func (s *Session) Halt(cause error) {
	s.Exhaust()
	s.stopCause = cause
	if cause != nil {
		s.StopReason = cause.Error()
	}
}

// HaltedEarly reports whether the search stopped on a configuration error
// instead of using its whole budget.
func (s *Session) HaltedEarly() bool {
	return s.State == StateExhausted && s.StopReason != ""
}

// Accepted reports whether a sequence passed both tests.
func (s *Session) Accepted() bool { return s.State == StateAccepted }

// Sequence returns the accepted sequence; ok is false unless Accepted.
func (s *Session) Sequence() (SampleSequence, bool) {
	if s.State != StateAccepted {
		return SampleSequence{}, false
	}
	return s.sequence, true
}

// Err returns ErrValidationExhausted for exhausted sessions, nil otherwise.
// A halted session's error also wraps the stopping cause.
func (s *Session) Err() error {
	if s.State != StateExhausted {
		return nil
	}
	cause := s.stopCause
	if cause == nil && s.StopReason != "" {
		cause = errors.New(s.StopReason)
	}
	if cause != nil {
		return fmt.Errorf("%w: stopped after %d of %d attempts from seed %d: %w",
			core.ErrValidationExhausted, s.Attempt, s.MaxAttempts, s.Config.Seed, cause)
	}
	return fmt.Errorf("%w: %d attempts from seed %d", core.ErrValidationExhausted, s.Attempt, s.Config.Seed)
}
