package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DefaultApplicationQuota is the number of applications a fresh guest
// session may send.
const DefaultApplicationQuota = 5

// EnsureSession creates the session row if it does not exist and returns
// the remaining application quota. A nil DB reports the default quota.
func (db *DB) EnsureSession(ctx context.Context, sessionID string) (int, error) {
	if db == nil {
		return DefaultApplicationQuota, nil
	}

	var remaining int
	err := db.pool.QueryRow(ctx,
		`INSERT INTO guest_sessions (session_id, applications_remaining)
		 VALUES ($1, $2)
		 ON CONFLICT (session_id) DO UPDATE SET session_id = EXCLUDED.session_id
		 RETURNING applications_remaining`,
		sessionID, DefaultApplicationQuota,
	).Scan(&remaining)
	if err != nil {
		return 0, fmt.Errorf("failed to ensure session: %w", err)
	}
	return remaining, nil
}

// ConsumeQuota atomically decrements the session's quota by n and returns
// the new remainder. It fails without decrementing when fewer than n
// applications remain. A nil DB allows everything within the default.
func (db *DB) ConsumeQuota(ctx context.Context, sessionID string, n int) (int, error) {
	if db == nil {
		if n > DefaultApplicationQuota {
			return 0, &QuotaExceededError{Remaining: DefaultApplicationQuota, Requested: n}
		}
		return DefaultApplicationQuota - n, nil
	}

	var remaining int
	err := db.pool.QueryRow(ctx,
		`UPDATE guest_sessions
		 SET applications_remaining = applications_remaining - $2
		 WHERE session_id = $1 AND applications_remaining >= $2
		 RETURNING applications_remaining`,
		sessionID, n,
	).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		current, qerr := db.quotaFor(ctx, sessionID)
		if qerr != nil {
			return 0, qerr
		}
		return 0, &QuotaExceededError{Remaining: current, Requested: n}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to consume quota: %w", err)
	}
	return remaining, nil
}

func (db *DB) quotaFor(ctx context.Context, sessionID string) (int, error) {
	var remaining int
	err := db.pool.QueryRow(ctx,
		`SELECT applications_remaining FROM guest_sessions WHERE session_id = $1`,
		sessionID,
	).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read quota: %w", err)
	}
	return remaining, nil
}

// QuotaExceededError reports an application batch larger than the
// session's remaining quota.
type QuotaExceededError struct {
	Remaining int
	Requested int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("application quota exceeded: %d requested, %d remaining", e.Requested, e.Remaining)
}
