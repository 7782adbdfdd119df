package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"lcgwalk/domain/core"
	"lcgwalk/domain/sequence"
	"lcgwalk/internal/errors"
	"lcgwalk/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// outcomeColumn is a JSONB column holding one validator outcome.
type outcomeColumn struct {
	outcome *sequence.ValidationOutcome
}

type outcomeDocument struct {
	sequence.ValidationOutcome
	Error string `json:"error,omitempty"`
}

// Value implements driver.Valuer interface
func (c outcomeColumn) Value() (driver.Value, error) {
	if c.outcome == nil {
		return nil, nil
	}
	doc := outcomeDocument{ValidationOutcome: *c.outcome}
	if c.outcome.Err != nil {
		doc.Error = c.outcome.Err.Error()
	}
	return json.Marshal(doc)
}

// Scan implements sql.Scanner interface
func (c *outcomeColumn) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		c.outcome = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported outcome column type %T", value)
	}
	if len(raw) == 0 {
		c.outcome = nil
		return nil
	}

	var doc outcomeDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	out := doc.ValidationOutcome
	if doc.Error != "" {
		out.Err = stderrors.New(doc.Error)
	}
	c.outcome = &out
	return nil
}

// sessionRow mirrors the validation_sessions table
type sessionRow struct {
	ID          string          `db:"id"`
	Multiplier  int64           `db:"multiplier"`
	Increment   int64           `db:"increment"`
	Modulus     int64           `db:"modulus"`
	Seed        int64           `db:"seed"`
	SampleCount int             `db:"sample_count"`
	Alpha       float64         `db:"alpha"`
	MaxAttempts int             `db:"max_attempts"`
	Attempt     int             `db:"attempt"`
	TrialSeed   int64           `db:"trial_seed"`
	State       string          `db:"state"`
	StopReason  string          `db:"stop_reason"`
	Mean        outcomeColumn   `db:"mean_outcome"`
	Variance    outcomeColumn   `db:"variance_outcome"`
	Samples     pq.Float64Array `db:"samples"`
	CreatedAt   time.Time       `db:"created_at"`
}

func toRow(s *sequence.Session) sessionRow {
	row := sessionRow{
		ID:          s.ID.String(),
		Multiplier:  s.Config.Multiplier,
		Increment:   s.Config.Increment,
		Modulus:     s.Config.Modulus,
		Seed:        s.Config.Seed,
		SampleCount: s.SampleCount,
		Alpha:       s.Alpha,
		MaxAttempts: s.MaxAttempts,
		Attempt:     s.Attempt,
		TrialSeed:   s.TrialSeed,
		State:       string(s.State),
		StopReason:  s.StopReason,
		Mean:        outcomeColumn{outcome: s.Mean},
		Variance:    outcomeColumn{outcome: s.Variance},
		CreatedAt:   s.CreatedAt,
	}
	if seq, ok := s.Sequence(); ok {
		row.Samples = pq.Float64Array(seq.Values())
	}
	return row
}

func (r sessionRow) toSession() *sequence.Session {
	s := &sequence.Session{
		ID: core.SessionID(r.ID),
		Config: sequence.GeneratorConfig{
			Multiplier: r.Multiplier,
			Increment:  r.Increment,
			Modulus:    r.Modulus,
			Seed:       r.Seed,
		},
		SampleCount: r.SampleCount,
		Alpha:       r.Alpha,
		MaxAttempts: r.MaxAttempts,
		Attempt:     r.Attempt,
		TrialSeed:   r.TrialSeed,
		State:       sequence.SessionState(r.State),
		Mean:        r.Mean.outcome,
		Variance:    r.Variance.outcome,
		StopReason:  r.StopReason,
		CreatedAt:   r.CreatedAt,
	}
	switch s.State {
	case sequence.StateAccepted:
		s.Accept(sequence.NewSampleSequence(r.Samples))
	case sequence.StateExhausted:
		s.Exhaust()
	}
	return s
}

const sessionColumns = `id, multiplier, increment, modulus, seed, sample_count, alpha, max_attempts,
	attempt, trial_seed, state, stop_reason, mean_outcome, variance_outcome, samples, created_at`

// SessionRepositoryImpl implements SessionRepository for PostgreSQL
type SessionRepositoryImpl struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) ports.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

// Save upserts a finished session
func (r *SessionRepositoryImpl) Save(ctx context.Context, session *sequence.Session) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO validation_sessions (`+sessionColumns+`)
		VALUES (:id, :multiplier, :increment, :modulus, :seed, :sample_count, :alpha, :max_attempts,
			:attempt, :trial_seed, :state, :stop_reason, :mean_outcome, :variance_outcome, :samples, :created_at)
		ON CONFLICT (id) DO UPDATE SET
			attempt = EXCLUDED.attempt,
			trial_seed = EXCLUDED.trial_seed,
			state = EXCLUDED.state,
			stop_reason = EXCLUDED.stop_reason,
			mean_outcome = EXCLUDED.mean_outcome,
			variance_outcome = EXCLUDED.variance_outcome,
			samples = EXCLUDED.samples
	`, toRow(session))
	if err != nil {
		return errors.DatabaseError("failed to save validation session", err)
	}
	return nil
}

// Get retrieves a session by ID
func (r *SessionRepositoryImpl) Get(ctx context.Context, id core.SessionID) (*sequence.Session, error) {
	var row sessionRow
	err := r.db.GetContext(ctx, &row, `SELECT `+sessionColumns+` FROM validation_sessions WHERE id = $1`, id.String())
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("session " + id.String())
		}
		return nil, errors.DatabaseError("failed to load validation session", err)
	}
	return row.toSession(), nil
}

// List returns sessions newest first, optionally limited
func (r *SessionRepositoryImpl) List(ctx context.Context, limit int) ([]*sequence.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM validation_sessions ORDER BY created_at DESC`

	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var rows []sessionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.DatabaseError("failed to list validation sessions", err)
	}

	sessions := make([]*sequence.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toSession())
	}
	return sessions, nil
}

// Ensure SessionRepositoryImpl implements SessionRepository
var _ ports.SessionRepository = (*SessionRepositoryImpl)(nil)
