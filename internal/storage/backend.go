// Package storage selects and opens the repository backend named in the
// configuration. Both the API server and the cron runner start from here.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"freighthub-backend/internal/config"
	"freighthub-backend/internal/logger"
	"freighthub-backend/internal/repository"
	"freighthub-backend/internal/repository/memory"
	"freighthub-backend/internal/repository/postgres"
)

// Backend bundles every repository of one storage driver.
type Backend struct {
	Driver        string
	Users         repository.UserRepository
	Requests      repository.QuoteRequestRepository
	Responses     repository.QuoteResponseRepository
	Communities   repository.CommunityRepository
	Notifications repository.NotificationRepository

	ping  func(ctx context.Context) error
	close func() error
}

// Ping reports whether the backend can serve requests.
func (b *Backend) Ping(ctx context.Context) error {
	return b.ping(ctx)
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to the configured driver. For postgres it verifies the
// connection and applies migrations when enabled.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory storage; data is lost on restart")
		return NewMemoryBackend(), nil
	case config.DriverPostgres:
		return openPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func NewMemoryBackend() *Backend {
	store := memory.NewStore()
	return &Backend{
		Driver:        config.DriverMemory,
		Users:         store.UserRepository,
		Requests:      store.QuoteRequestRepository,
		Responses:     store.QuoteResponseRepository,
		Communities:   store.CommunityRepository,
		Notifications: store.NotificationRepository,
		ping:          store.Ping,
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Backend, error) {
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.RunMigrations {
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	store := postgres.NewStore(db)
	return &Backend{
		Driver:        config.DriverPostgres,
		Users:         store.UserRepository,
		Requests:      store.QuoteRequestRepository,
		Responses:     store.QuoteResponseRepository,
		Communities:   store.CommunityRepository,
		Notifications: store.NotificationRepository,
		ping:          store.Ping,
		close:         db.Close,
	}, nil
}
