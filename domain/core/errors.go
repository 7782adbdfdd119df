package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Generation errors
	ErrInvalidModulus      = errors.New("modulus must be greater than 0")
	ErrDegenerateModulus   = errors.New("modulus of 1 yields a constant sequence")
	ErrSampleCountMismatch = errors.New("generator did not produce the requested sample count")

	// Distribution errors
	ErrInvalidProbability      = errors.New("probability outside the supported range")
	ErrInvalidDegreesOfFreedom = errors.New("degrees of freedom must be greater than 0")

	// Validation errors
	ErrInsufficientSamples = errors.New("at least two samples are required")
	ErrCannotEvaluate      = errors.New("statistic cannot be evaluated")
	ErrInvalidSignificance = errors.New("significance level must lie in (0, 1)")
	ErrInvalidAttempts     = errors.New("max attempts must be greater than 0")
	ErrValidationExhausted = errors.New("no sequence passed validation within the attempt budget")

	// Walk errors
	ErrInvalidThreshold    = errors.New("direction threshold must satisfy 0 < t < 1/3")
	ErrInvalidStepDuration = errors.New("step duration must be greater than 0")
)

// Error constructors with context
func NewInvalidModulusError(modulus int64) error {
	return fmt.Errorf("%w: got %d", ErrInvalidModulus, modulus)
}

func NewSampleCountError(want, got int) error {
	return fmt.Errorf("%w: want %d, got %d", ErrSampleCountMismatch, want, got)
}

func NewCannotEvaluateError(test string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCannotEvaluate, test, err)
}

// IsConfigError reports whether err is a configuration-level failure that
// must surface before any retry loop runs.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidModulus) ||
		errors.Is(err, ErrInsufficientSamples) ||
		errors.Is(err, ErrInvalidSignificance) ||
		errors.Is(err, ErrInvalidAttempts)
}

// IsTrialError reports whether err is absorbed by the orchestrator as a failed
// trial for a single seed.
func IsTrialError(err error) bool {
	return errors.Is(err, ErrSampleCountMismatch) ||
		errors.Is(err, ErrCannotEvaluate) ||
		errors.Is(err, ErrInvalidProbability) ||
		errors.Is(err, ErrInvalidDegreesOfFreedom)
}
