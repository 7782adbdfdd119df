package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDFingerprint tests that fingerprints are stable and non-negative
func TestIDFingerprint(t *testing.T) {
	id := ID("agent-7")
	if id.Fingerprint() != id.Fingerprint() {
		t.Error("Expected fingerprint to be stable")
	}
	if id.Fingerprint() < 0 {
		t.Errorf("Expected non-negative fingerprint, got %d", id.Fingerprint())
	}
	if ID("agent-8").Fingerprint() == id.Fingerprint() {
		t.Error("Expected distinct IDs to have distinct fingerprints")
	}
}

// TestParseSessionID tests session ID parsing
func TestParseSessionID(t *testing.T) {
	valid := NewSessionID().String()

	tests := []struct {
		input    string
		expected SessionID
		hasError bool
	}{
		{valid, SessionID(valid), false},
		{"", "", true},
		{"   ", "", true},
		{"not-a-uuid", "", true},
	}

	for _, test := range tests {
		result, err := ParseSessionID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestErrorClassification tests config/trial error helpers
func TestErrorClassification(t *testing.T) {
	if !IsConfigError(NewInvalidModulusError(0)) {
		t.Error("Expected invalid modulus to be a config error")
	}
	if IsTrialError(NewInvalidModulusError(0)) {
		t.Error("Expected invalid modulus not to be a trial error")
	}
	if !IsTrialError(NewSampleCountError(10, 3)) {
		t.Error("Expected sample count mismatch to be a trial error")
	}
	wrapped := NewCannotEvaluateError("mean", ErrInvalidProbability)
	if !errors.Is(wrapped, ErrCannotEvaluate) {
		t.Error("Expected wrapped error to match ErrCannotEvaluate")
	}
	if !IsTrialError(wrapped) {
		t.Error("Expected cannot-evaluate to be a trial error")
	}
}

// TestIDShort tests the log-friendly ID prefix
func TestIDShort(t *testing.T) {
	id := ID("0192ab34-5c6d-7e8f-9a0b-1c2d3e4f5a6b")
	if id.Short() != "0192ab34" {
		t.Errorf("Expected 0192ab34, got %s", id.Short())
	}
	if AgentID(id).Short() != id.Short() {
		t.Error("Expected agent ID to share the ID prefix")
	}
	if ID("abc").Short() != "abc" {
		t.Error("Expected short IDs to be returned unchanged")
	}
}
