package container

import (
	"context"
	"fmt"

	"lcgwalk/adapters/memory"
	"lcgwalk/adapters/postgres"
	"lcgwalk/internal"
	"lcgwalk/internal/config"
	"lcgwalk/internal/engagement"
	"lcgwalk/internal/errors"
	"lcgwalk/internal/migration"
	"lcgwalk/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	SessionRepo ports.SessionRepository

	// Shared services
	Engagement *engagement.Tracker
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Engagement: engagement.NewTracker(cfg.Walk.FadeDuration, logger),
	}, nil
}

// Init wires the session store and starts shared services. Without a
// DATABASE_URL sessions live in memory.
func (c *Container) Init(ctx context.Context) error {
	if err := c.Engagement.Init(ctx); err != nil {
		return errors.Wrap(err, "failed to start engagement tracker")
	}

	if c.Config.Database.URL == "" {
		c.Logger.Info("no DATABASE_URL configured, keeping sessions in memory")
		c.SessionRepo = memory.NewSessionRepository()
		return nil
	}

	db, err := sqlx.Connect("postgres", c.Config.Database.URL)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	return c.InitWithDatabase(ctx, db)
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	// Test database connection
	if err := db.PingContext(ctx); err != nil {
		return errors.DatabaseError("database connection test failed", err)
	}

	if err := migration.NewRunner(c.Logger).Run(ctx, db); err != nil {
		return errors.Wrap(err, "database migration failed")
	}

	c.SessionRepo = postgres.NewSessionRepository(db)
	c.Logger.Info("container initialized with database connection")
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if err := c.Engagement.Teardown(); err != nil {
		c.Logger.Warn("engagement teardown: %v", err)
	}

	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
