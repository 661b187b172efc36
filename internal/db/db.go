// Package db provides PostgreSQL persistence for guest session quotas,
// the aggregated-job cache and application outcome records. The pipeline
// itself works without a database; a nil *DB degrades every operation to
// a no-op so the server can run stateless.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db != nil && db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the schema when it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	if db == nil {
		return nil
	}

	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS guest_sessions (
			session_id TEXT PRIMARY KEY,
			applications_remaining INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS job_cache (
			cache_key TEXT PRIMARY KEY,
			postings JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS applications (
			id UUID PRIMARY KEY,
			job_title TEXT NOT NULL,
			job_company TEXT NOT NULL,
			job_url TEXT NOT NULL,
			recipient TEXT,
			subject TEXT,
			language TEXT,
			used_fallback BOOLEAN NOT NULL DEFAULT FALSE,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
