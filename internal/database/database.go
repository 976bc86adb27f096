// Package database provides the postgres connection pool, transactions and error translation
// shared by the repositories.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/bouncr/iam/internal/resilience"
)

const driverName = "postgres"

// Config holds the pool settings. Retry bounds how long Connect waits for postgres to accept
// connections; the zero value pings once.
type Config struct {
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	Retry              resilience.RetryConfig
	Logger             *slog.Logger
}

// Connect opens the pool and returns once postgres answers a ping. Ping failures are retried
// with backoff so the server can start alongside its database.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open(driverName, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	opts := []resilience.Option{resilience.WithRetry(cfg.Retry)}
	if cfg.Logger != nil {
		opts = append(opts, resilience.WithLogger(cfg.Logger))
	}
	policy := resilience.NewPolicy(driverName, opts...)

	_, err = resilience.Execute(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, resilience.Transient(db.PingContext(ctx))
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
