package migration

import (
	"strings"
	"testing"

	"lcgwalk/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Statements(t *testing.T) {
	r := NewRunner(internal.NewDiscardLogger())
	assert.Equal(t, "1.1.0", r.Version())

	stmts := r.Statements()
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[1], "ADD COLUMN IF NOT EXISTS stop_reason")
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS validation_sessions")
	for _, col := range []string{"modulus", "trial_seed", "state", "stop_reason", "mean_outcome", "variance_outcome", "samples"} {
		assert.True(t, strings.Contains(stmts[0], col), "missing column %s", col)
	}
}

func TestNewRunner_DefaultLogger(t *testing.T) {
	assert.NotNil(t, NewRunner(nil).logger)
}
