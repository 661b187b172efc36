package db

import (
	"context"
	"fmt"

	"github.com/rafael/autoapply/internal/types"
)

// RecordApplication stores or updates an application outcome row. A nil
// DB is a no-op so the dispatcher works without persistence.
func (db *DB) RecordApplication(ctx context.Context, draft *types.ApplicationDraft) error {
	if db == nil {
		return nil
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO applications (id, job_title, job_company, job_url, recipient, subject, language, used_fallback, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET status = $9`,
		draft.ID, draft.Job.Title, draft.Job.Company, draft.Job.URL,
		draft.Recipient, draft.Subject, draft.Language, draft.UsedFallback, draft.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to record application: %w", err)
	}
	return nil
}

// ApplicationStats summarizes recorded outcomes for one reporting call.
type ApplicationStats struct {
	Total  int
	Sent   int
	Failed int
}

// Stats counts recorded applications by status.
func (db *DB) Stats(ctx context.Context) (*ApplicationStats, error) {
	if db == nil {
		return &ApplicationStats{}, nil
	}

	var stats ApplicationStats
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'sent'),
		        COUNT(*) FILTER (WHERE status = 'failed')
		 FROM applications`,
	).Scan(&stats.Total, &stats.Sent, &stats.Failed)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	return &stats, nil
}
