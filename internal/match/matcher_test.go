package match

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafael/autoapply/internal/llm"
	"github.com/rafael/autoapply/internal/types"
)

type fakeLLMClient struct {
	response string
	err      error
	prompt   string
}

func (f *fakeLLMClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func (f *fakeLLMClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func (f *fakeLLMClient) Close() error { return nil }

func testPostings(n int) []types.JobPosting {
	postings := make([]types.JobPosting, n)
	for i := range postings {
		postings[i] = types.JobPosting{
			Title:   fmt.Sprintf("Role %d", i),
			Company: "Acme",
			URL:     fmt.Sprintf("https://jobs.test/%d", i),
		}
	}
	return postings
}

func TestRank(t *testing.T) {
	client := &fakeLLMClient{response: `[
		{"job_id": "https://jobs.test/0", "score": 55},
		{"job_id": "https://jobs.test/1", "score": 90},
		{"job_id": "https://jobs.test/2", "score": 70}
	]`}
	m := NewMatcher(client)

	results, err := m.Rank(context.Background(), &types.CandidateProfile{Name: "João Silva"}, testPostings(3))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 90, results[0].Score)
	assert.Equal(t, "Role 1", results[0].Job.Title)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, 70, results[1].Score)
	assert.Equal(t, 2, results[1].Rank)
	assert.Equal(t, 55, results[2].Score)
	assert.Equal(t, 3, results[2].Rank)

	assert.Contains(t, client.prompt, "João Silva")
	assert.Contains(t, client.prompt, "https://jobs.test/2")
}

func TestRankMissingJobsScoreZero(t *testing.T) {
	client := &fakeLLMClient{response: `[{"job_id": "https://jobs.test/1", "score": 80}]`}
	m := NewMatcher(client)

	results, err := m.Rank(context.Background(), &types.CandidateProfile{}, testPostings(3))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 80, results[0].Score)
	assert.Equal(t, 0, results[1].Score)
	assert.Equal(t, 0, results[2].Score)
}

func TestRankClampsScores(t *testing.T) {
	client := &fakeLLMClient{response: `[
		{"job_id": "https://jobs.test/0", "score": 150},
		{"job_id": "https://jobs.test/1", "score": -20}
	]`}
	m := NewMatcher(client)

	results, err := m.Rank(context.Background(), &types.CandidateProfile{}, testPostings(2))
	require.NoError(t, err)

	assert.Equal(t, 100, results[0].Score)
	assert.Equal(t, 0, results[1].Score)
}

func TestRankCapsResults(t *testing.T) {
	scores := "["
	for i := 0; i < 30; i++ {
		if i > 0 {
			scores += ","
		}
		scores += fmt.Sprintf(`{"job_id": "https://jobs.test/%d", "score": %d}`, i, i+10)
	}
	scores += "]"
	m := NewMatcher(&fakeLLMClient{response: scores})

	results, err := m.Rank(context.Background(), &types.CandidateProfile{}, testPostings(30))
	require.NoError(t, err)

	require.Len(t, results, MaxResults)
	assert.Equal(t, 39, results[0].Score)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, MaxResults, results[len(results)-1].Rank)
}

func TestRankEmptyPostings(t *testing.T) {
	m := NewMatcher(&fakeLLMClient{})

	results, err := m.Rank(context.Background(), &types.CandidateProfile{}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRankLLMFailure(t *testing.T) {
	m := NewMatcher(&fakeLLMClient{err: errors.New("model unavailable")})

	_, err := m.Rank(context.Background(), &types.CandidateProfile{}, testPostings(1))
	assert.Error(t, err)
}

func TestRankMalformedResponse(t *testing.T) {
	m := NewMatcher(&fakeLLMClient{response: `no array here`})

	_, err := m.Rank(context.Background(), &types.CandidateProfile{}, testPostings(1))
	assert.Error(t, err)
}

func TestRankNilClient(t *testing.T) {
	m := NewMatcher(nil)

	_, err := m.Rank(context.Background(), &types.CandidateProfile{}, testPostings(1))
	assert.Error(t, err)
}
