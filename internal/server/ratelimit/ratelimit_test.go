package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(rules []Rule) *Limiter {
	return NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Rules:         rules,
	})
}

func TestLimiterEnforcesRuleLimit(t *testing.T) {
	l := newTestLimiter([]Rule{
		{PathPrefix: "/applications/send", Method: "POST", Limit: 2, Window: time.Minute},
	})
	defer l.Stop()

	allowed, info := l.Allow("1.2.3.4", "/applications/send", "POST")
	assert.True(t, allowed)
	assert.Equal(t, 2, info.Limit)

	allowed, _ = l.Allow("1.2.3.4", "/applications/send", "POST")
	assert.True(t, allowed)

	allowed, info = l.Allow("1.2.3.4", "/applications/send", "POST")
	assert.False(t, allowed)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiterIsolatesClients(t *testing.T) {
	l := newTestLimiter([]Rule{
		{PathPrefix: "/applications/send", Method: "POST", Limit: 1, Window: time.Minute},
	})
	defer l.Stop()

	allowed, _ := l.Allow("1.2.3.4", "/applications/send", "POST")
	require.True(t, allowed)
	allowed, _ = l.Allow("1.2.3.4", "/applications/send", "POST")
	require.False(t, allowed)

	allowed, _ = l.Allow("5.6.7.8", "/applications/send", "POST")
	assert.True(t, allowed)
}

func TestLimiterUnlimitedEndpoint(t *testing.T) {
	l := newTestLimiter([]Rule{{PathPrefix: "/health", Limit: 0}})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := l.Allow("1.2.3.4", "/health", "GET")
		require.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}
}

func TestLimiterDisabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/applications/send", "POST")
		require.True(t, allowed)
	}
}

func TestLimiterDefaultRule(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
	})
	defer l.Stop()

	allowed, info := l.Allow("1.2.3.4", "/jobs/aggregate", "POST")
	assert.True(t, allowed)
	assert.Equal(t, 1, info.Limit)

	allowed, _ = l.Allow("1.2.3.4", "/jobs/aggregate", "POST")
	assert.False(t, allowed)
}

func TestMatchHonorsMethod(t *testing.T) {
	l := newTestLimiter([]Rule{
		{PathPrefix: "/jobs", Method: "POST", Limit: 5, Window: time.Minute},
	})
	defer l.Stop()

	rule := l.match("/jobs/aggregate", "GET")
	assert.Equal(t, "*", rule.PathPrefix)

	rule = l.match("/jobs/aggregate", "POST")
	assert.Equal(t, "/jobs", rule.PathPrefix)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_DEFAULT", "42")

	cfg := LoadConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
}

func TestDropIdle(t *testing.T) {
	l := newTestLimiter(nil)
	defer l.Stop()

	l.Allow("1.2.3.4", "/jobs/aggregate", "POST")
	require.Len(t, l.buckets, 1)

	l.dropIdle(time.Now().Add(time.Minute))
	assert.Empty(t, l.buckets)
}
