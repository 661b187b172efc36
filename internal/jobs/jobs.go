// Package jobs aggregates postings from external job boards. Each board
// is wrapped in an Adapter; the Aggregator fans out to all configured
// adapters concurrently, retries transient failures, and merges the
// results into one deduplicated, recency-sorted list.
package jobs

import (
	"context"

	"github.com/rafael/autoapply/internal/types"
)

// Query carries the search input shared by all adapters.
type Query struct {
	Keywords []string
	Location string
}

// Adapter fetches postings from one job board. Implementations return
// normalized postings and surface fetch errors to the aggregator, which
// owns the retry and skip policy.
type Adapter interface {
	// Name identifies the board in logs and posting Source fields.
	Name() string
	// Fetch retrieves postings for the query.
	Fetch(ctx context.Context, q Query) ([]types.JobPosting, error)
}
