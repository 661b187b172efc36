package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafael/autoapply/internal/fetch"
)

const remotiveResponse = `{
	"jobs": [
		{
			"title": "Backend Developer",
			"company_name": "Acme",
			"candidate_required_location": "Brazil",
			"description": "Work with Go, Docker and PostgreSQL.",
			"url": "https://remotive.com/remote-jobs/software-dev/backend-developer-123",
			"publication_date": "2025-08-22T09:30:00",
			"salary": "$90k - $120k",
			"job_type": "full_time",
			"experience_level": "Mid-level"
		},
		{
			"title": "Data Engineer",
			"company_name": "Globex",
			"candidate_required_location": "",
			"description": "Python and SQL pipelines.",
			"url": "https://remotive.com/remote-jobs/data/data-engineer-456",
			"publication_date": ""
		}
	]
}`

func TestRemotiveFetch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(remotiveResponse))
	}))
	defer server.Close()

	adapter := &Remotive{
		BaseURL: server.URL,
		Options: fetch.DefaultOptions(),
		Now:     func() time.Time { return time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC) },
	}

	postings, err := adapter.Fetch(context.Background(), Query{
		Keywords: []string{"backend", "go"},
		Location: "Brazil",
	})
	require.NoError(t, err)
	require.Len(t, postings, 2)

	assert.Contains(t, gotQuery, "search=backend+go")
	assert.Contains(t, gotQuery, "location=Brazil")

	first := postings[0]
	assert.Equal(t, "Backend Developer", first.Title)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "Brazil", first.Location)
	assert.Equal(t, "Remotive", first.Source)
	assert.Equal(t, "$90k - $120k", first.Salary)
	assert.Equal(t, "full_time", first.EmploymentType)
	assert.Equal(t, time.Date(2025, 8, 22, 9, 30, 0, 0, time.UTC), first.PostedAt)
	assert.Contains(t, first.Skills, "docker")

	second := postings[1]
	assert.Equal(t, "Remote", second.Location)
	assert.Equal(t, "Full-time", second.EmploymentType)
	// Unparseable publication date falls back to the injected clock.
	assert.Equal(t, time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC), second.PostedAt)
}

func TestRemotiveFetchStripsHTMLDescription(t *testing.T) {
	const response = `{
		"jobs": [
			{
				"title": "Backend Developer",
				"company_name": "Acme",
				"description": "<p>Build services in <strong>Go</strong> and <em>Docker</em>.</p><ul><li>PostgreSQL experience</li></ul>",
				"url": "https://remotive.com/remote-jobs/software-dev/backend-developer-123"
			}
		]
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
	defer server.Close()

	adapter := &Remotive{BaseURL: server.URL, Options: fetch.DefaultOptions()}
	postings, err := adapter.Fetch(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, postings, 1)

	assert.NotContains(t, postings[0].Description, "<p>")
	assert.NotContains(t, postings[0].Description, "</li>")
	assert.Contains(t, postings[0].Description, "Build services in")
	assert.Contains(t, postings[0].Description, "PostgreSQL experience")
	assert.Contains(t, postings[0].Skills, "docker")
	assert.Contains(t, postings[0].Skills, "postgresql")
}

func TestRemotiveFetchBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance page</html>`))
	}))
	defer server.Close()

	adapter := &Remotive{BaseURL: server.URL, Options: fetch.DefaultOptions()}
	_, err := adapter.Fetch(context.Background(), Query{})
	require.Error(t, err)
	assert.False(t, fetch.IsRetryable(err))
}
