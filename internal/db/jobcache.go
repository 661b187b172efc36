package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rafael/autoapply/internal/types"
)

// DefaultJobCacheTTL matches one aggregation cycle: postings older than
// this are re-fetched from the boards.
const DefaultJobCacheTTL = time.Hour

// JobCache adapts the database to the aggregator's cache interface.
type JobCache struct {
	db  *DB
	ttl time.Duration
}

// NewJobCache builds a cache over db. db may be nil, yielding a cache
// that never hits.
func NewJobCache(db *DB, ttl time.Duration) *JobCache {
	if ttl <= 0 {
		ttl = DefaultJobCacheTTL
	}
	return &JobCache{db: db, ttl: ttl}
}

// Get returns the cached postings for a query key, if fresh.
func (c *JobCache) Get(ctx context.Context, key string) ([]types.JobPosting, bool, error) {
	if c.db == nil {
		return nil, false, nil
	}

	var raw []byte
	err := c.db.pool.QueryRow(ctx,
		`SELECT postings FROM job_cache WHERE cache_key = $1 AND created_at > $2`,
		key, time.Now().Add(-c.ttl),
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read job cache: %w", err)
	}

	var postings []types.JobPosting
	if err := json.Unmarshal(raw, &postings); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached postings: %w", err)
	}
	return postings, true, nil
}

// Put stores the postings for a query key, replacing any previous entry.
func (c *JobCache) Put(ctx context.Context, key string, postings []types.JobPosting) error {
	if c.db == nil {
		return nil
	}

	raw, err := json.Marshal(postings)
	if err != nil {
		return fmt.Errorf("failed to encode postings: %w", err)
	}

	_, err = c.db.pool.Exec(ctx,
		`INSERT INTO job_cache (cache_key, postings, created_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (cache_key) DO UPDATE SET postings = $2, created_at = NOW()`,
		key, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to write job cache: %w", err)
	}
	return nil
}
