package jobs

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rafael/autoapply/internal/fetch"
	"github.com/rafael/autoapply/internal/types"
)

// Result-set bounds for one aggregation run.
const (
	// MaxPostings caps the merged result.
	MaxPostings = 100
	// MaxPerSource caps any single board's contribution so one verbose
	// board cannot crowd out the others.
	MaxPerSource = 50
)

// Cache stores aggregation results keyed by query. A nil cache disables
// caching entirely.
type Cache interface {
	Get(ctx context.Context, key string) ([]types.JobPosting, bool, error)
	Put(ctx context.Context, key string, postings []types.JobPosting) error
}

// AggregatorConfig tunes the fan-out behavior.
type AggregatorConfig struct {
	RetryAttempts int
	RetryDelay    time.Duration
	// LegacyDedup collapses postings by title alone, matching the
	// pre-normalization behavior. Off by default: two companies hiring
	// a "Backend Developer" are different openings.
	LegacyDedup bool
}

// DefaultAggregatorConfig returns the production fan-out settings.
func DefaultAggregatorConfig() *AggregatorConfig {
	return &AggregatorConfig{
		RetryAttempts: fetch.DefaultRetryAttempts,
		RetryDelay:    fetch.DefaultRetryDelay,
	}
}

// Aggregator fans a query out to every adapter concurrently and merges
// the results. A board that fails all retry attempts is skipped for the
// run; aggregation fails only when every board fails.
type Aggregator struct {
	adapters []Adapter
	cache    Cache
	config   *AggregatorConfig
}

// NewAggregator builds an aggregator over the given adapters. cache may
// be nil.
func NewAggregator(adapters []Adapter, cache Cache, config *AggregatorConfig) *Aggregator {
	if config == nil {
		config = DefaultAggregatorConfig()
	}
	return &Aggregator{adapters: adapters, cache: cache, config: config}
}

// Aggregate runs the fan-out and returns the merged, deduplicated,
// recency-sorted posting list.
func (a *Aggregator) Aggregate(ctx context.Context, q Query) ([]types.JobPosting, error) {
	cacheKey := q.cacheKey()
	if a.cache != nil {
		if cached, ok, err := a.cache.Get(ctx, cacheKey); err == nil && ok {
			log.Printf("[jobs] cache hit for %q: %d postings", cacheKey, len(cached))
			return cached, nil
		}
	}

	var mu sync.Mutex
	perSource := make(map[string][]types.JobPosting, len(a.adapters))
	failures := 0

	g, gctx := errgroup.WithContext(ctx)
	for _, adapter := range a.adapters {
		adapter := adapter
		g.Go(func() error {
			var postings []types.JobPosting
			err := fetch.Retry(gctx, a.config.RetryAttempts, a.config.RetryDelay, func(ctx context.Context) error {
				var ferr error
				postings, ferr = adapter.Fetch(ctx, q)
				return ferr
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// A dead board degrades the result, it does not fail it.
				log.Printf("[jobs] %s failed, skipping for this run: %v", adapter.Name(), err)
				failures++
				return nil
			}
			if len(postings) > MaxPerSource {
				postings = postings[:MaxPerSource]
			}
			perSource[adapter.Name()] = postings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(a.adapters) > 0 && failures == len(a.adapters) {
		return nil, &AllSourcesFailedError{Sources: a.sourceNames()}
	}

	merged := a.merge(perSource)

	if a.cache != nil && len(merged) > 0 {
		if err := a.cache.Put(ctx, cacheKey, merged); err != nil {
			log.Printf("[jobs] failed to cache results: %v", err)
		}
	}

	return merged, nil
}

// merge deduplicates across boards, sorts newest first, and applies the
// total cap. Iteration follows adapter registration order so the first
// board to report a posting wins the duplicate.
func (a *Aggregator) merge(perSource map[string][]types.JobPosting) []types.JobPosting {
	seen := make(map[string]bool)
	var merged []types.JobPosting

	for _, adapter := range a.adapters {
		for _, posting := range perSource[adapter.Name()] {
			key := posting.DedupKey()
			if a.config.LegacyDedup {
				key = strings.ToLower(strings.TrimSpace(posting.Title))
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, posting)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PostedAt.After(merged[j].PostedAt)
	})

	if len(merged) > MaxPostings {
		merged = merged[:MaxPostings]
	}
	return merged
}

func (a *Aggregator) sourceNames() []string {
	names := make([]string, len(a.adapters))
	for i, adapter := range a.adapters {
		names[i] = adapter.Name()
	}
	return names
}

func (q Query) cacheKey() string {
	keywords := make([]string, 0, len(q.Keywords))
	for _, kw := range q.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	sort.Strings(keywords)
	return strings.Join(keywords, ",") + "|" + strings.ToLower(strings.TrimSpace(q.Location))
}
