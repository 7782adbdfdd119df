package migration

import (
	"context"

	"lcgwalk/internal"
	"lcgwalk/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
	logger  *internal.Logger
}

// NewRunner creates a new migration runner
func NewRunner(logger *internal.Logger) *MigrationRunner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &MigrationRunner{
		version: "1.1.0",
		logger:  logger,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Statements returns the DDL in execution order.
func (r *MigrationRunner) Statements() []string {
	return []string{validationSessionsTable, addStopReasonColumn}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, validationSessionsTable); err != nil {
		return errors.Wrap(err, "failed to create validation_sessions table")
	}
	if _, err := db.ExecContext(ctx, addStopReasonColumn); err != nil {
		return errors.Wrap(err, "failed to add stop_reason column")
	}

	r.createIndexes(ctx, db)
	r.logger.Info("migrations at version %s applied", r.version)
	return nil
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_validation_sessions_created_at ON validation_sessions(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_validation_sessions_state ON validation_sessions(state)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Log but don't fail on index creation errors
			r.logger.Warn("failed to create index: %v", err)
		}
	}
}

const validationSessionsTable = `
	CREATE TABLE IF NOT EXISTS validation_sessions (
		id UUID PRIMARY KEY,
		multiplier BIGINT NOT NULL,
		increment BIGINT NOT NULL,
		modulus BIGINT NOT NULL CHECK (modulus > 0),
		seed BIGINT NOT NULL,
		sample_count INTEGER NOT NULL,
		alpha DOUBLE PRECISION NOT NULL,
		max_attempts INTEGER NOT NULL,
		attempt INTEGER NOT NULL DEFAULT 0,
		trial_seed BIGINT NOT NULL,
		state VARCHAR(20) NOT NULL DEFAULT 'pending',
		stop_reason TEXT NOT NULL DEFAULT '',
		mean_outcome JSONB,
		variance_outcome JSONB,
		samples DOUBLE PRECISION[],
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

// 1.0.0 tables predate stop_reason
const addStopReasonColumn = `
	ALTER TABLE validation_sessions ADD COLUMN IF NOT EXISTS stop_reason TEXT NOT NULL DEFAULT ''
`
