package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafael/autoapply/internal/types"
)

// The nil-DB contract: every operation degrades to a no-op or the
// default so the pipeline runs stateless. Pool-backed behavior is
// covered by integration environments with a real DATABASE_URL.

func TestNilDBSession(t *testing.T) {
	var db *DB

	remaining, err := db.EnsureSession(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, DefaultApplicationQuota, remaining)
}

func TestNilDBConsumeQuota(t *testing.T) {
	var db *DB

	remaining, err := db.ConsumeQuota(context.Background(), "session-1", 2)
	require.NoError(t, err)
	assert.Equal(t, DefaultApplicationQuota-2, remaining)

	_, err = db.ConsumeQuota(context.Background(), "session-1", DefaultApplicationQuota+1)
	var qe *QuotaExceededError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, DefaultApplicationQuota+1, qe.Requested)
}

func TestNilDBJobCache(t *testing.T) {
	cache := NewJobCache(nil, time.Minute)

	_, ok, err := cache.Get(context.Background(), "go,backend|brazil")
	require.NoError(t, err)
	assert.False(t, ok)

	err = cache.Put(context.Background(), "go,backend|brazil", []types.JobPosting{{Title: "Dev"}})
	assert.NoError(t, err)
}

func TestNilDBRecordApplication(t *testing.T) {
	var db *DB

	draft := types.NewApplicationDraft(types.JobPosting{Title: "Dev", Company: "Acme"})
	assert.NoError(t, db.RecordApplication(context.Background(), draft))

	stats, err := db.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
}

func TestNilDBClose(t *testing.T) {
	var db *DB
	assert.NotPanics(t, func() { db.Close() })
}

func TestNilDBMigrate(t *testing.T) {
	var db *DB
	assert.NoError(t, db.Migrate(context.Background()))
}
