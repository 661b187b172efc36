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

const rssFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Remote Jobs Feed</title>
    <item>
      <title>Senior Go Developer at Acme</title>
      <link>https://jobs.example.com/acme-go-dev</link>
      <description><![CDATA[<p>Build <b>Go</b> microservices with Docker.</p>]]></description>
      <pubDate>Fri, 22 Aug 2025 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Product Designer</title>
      <link>https://jobs.example.com/designer</link>
      <description>Figma and design systems work.</description>
      <pubDate>Thu, 21 Aug 2025 08:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Untitled</title>
      <link>https://jobs.example.com/empty</link>
      <description></description>
    </item>
  </channel>
</rss>`

func TestRSSFeedFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFeedXML))
	}))
	defer server.Close()

	adapter := NewRSSFeed("ExampleFeed", server.URL)
	postings, err := adapter.Fetch(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, postings, 2)

	first := postings[0]
	// "Role at Company" titles split into the two fields.
	assert.Equal(t, "Senior Go Developer", first.Title)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "https://jobs.example.com/acme-go-dev", first.URL)
	assert.Equal(t, "ExampleFeed", first.Source)
	assert.Equal(t, time.Date(2025, 8, 22, 10, 0, 0, 0, time.UTC), first.PostedAt.UTC())
	// Markup is stripped before skill tagging.
	assert.NotContains(t, first.Description, "<p>")
	assert.Contains(t, first.Skills, "docker")

	second := postings[1]
	assert.Equal(t, "Product Designer", second.Title)
	assert.Empty(t, second.Company)
}

func TestRSSFeedKeywordFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(rssFeedXML))
	}))
	defer server.Close()

	adapter := NewRSSFeed("ExampleFeed", server.URL)
	postings, err := adapter.Fetch(context.Background(), Query{Keywords: []string{"docker"}})
	require.NoError(t, err)

	require.Len(t, postings, 1)
	assert.Equal(t, "Senior Go Developer", postings[0].Title)
}

func TestRSSFeedInvalidXML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not": "xml"}`))
	}))
	defer server.Close()

	adapter := NewRSSFeed("ExampleFeed", server.URL)
	_, err := adapter.Fetch(context.Background(), Query{})
	require.Error(t, err)
	assert.False(t, fetch.IsRetryable(err))
}
