package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
	assert.False(t, fetchErr.Retryable)
}

func TestURL_ClientErrorNotRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result) // Result is returned even on error
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.False(t, fetchErr.Retryable)
}

func TestURL_ServerErrorRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, fetchErr.Retryable)
}

func TestJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jobs": [{"title": "Developer"}]}`))
	}))
	defer server.Close()

	var payload struct {
		Jobs []struct {
			Title string `json:"title"`
		} `json:"jobs"`
	}
	err := JSON(context.Background(), server.URL, nil, &payload)
	require.NoError(t, err)
	require.Len(t, payload.Jobs, 1)
	assert.Equal(t, "Developer", payload.Jobs[0].Title)
}

func TestJSON_InvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	var payload map[string]any
	err := JSON(context.Background(), server.URL, nil, &payload)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.False(t, fetchErr.Retryable)
}

func TestExtractMainText_WithMainElement(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<main>
				<h1>Backend Developer</h1>
				<p>Build services in Go.</p>
			</main>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html, JobPostingSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Backend Developer")
	assert.Contains(t, text, "Build services in Go.")
	assert.NotContains(t, text, "Navigation")
	assert.NotContains(t, text, "Footer")
}

func TestExtractMainText_NoiseSelectors(t *testing.T) {
	html := `
	<html>
		<body>
			<main>
				<p>Job description text here.</p>
				<form class="application-form">Apply now</form>
			</main>
		</body>
	</html>`

	text, err := ExtractMainText(html, JobPostingSelectors(), ".application-form")
	require.NoError(t, err)
	assert.Contains(t, text, "Job description text here.")
	assert.NotContains(t, text, "Apply now")
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("short SPA shell"))
	long := make([]byte, MinContentLength)
	for i := range long {
		long[i] = 'x'
	}
	assert.False(t, ShouldUseBrowser(string(long)))
}

func TestRetry_SucceedsAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	err := Retry(context.Background(), 3, time.Millisecond, func(_ context.Context) error {
		if calls.Add(1) < 3 {
			return &Error{URL: "http://x", Message: "HTTP status 503", Retryable: true}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetry_StopsOnPermanentFailure(t *testing.T) {
	var calls atomic.Int32
	permanent := &Error{URL: "http://x", Message: "HTTP status 404"}
	err := Retry(context.Background(), 3, time.Millisecond, func(_ context.Context) error {
		calls.Add(1)
		return permanent
	})

	assert.Equal(t, error(permanent), err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	err := Retry(context.Background(), 3, time.Millisecond, func(_ context.Context) error {
		calls.Add(1)
		return &Error{URL: "http://x", Message: "connection reset", Retryable: true}
	})

	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetry_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Second, func(_ context.Context) error {
		return &Error{URL: "http://x", Message: "timeout", Retryable: true}
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&Error{Retryable: true}))
	assert.False(t, IsRetryable(&Error{}))
	assert.False(t, IsRetryable(errors.New("plain error")))
}
