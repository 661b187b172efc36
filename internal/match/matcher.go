// Package match scores aggregated job postings against a candidate
// profile. Scoring is delegated to the LLM with a weighted rubric; the
// package owns identifier bookkeeping, response parsing and ranking.
package match

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rafael/autoapply/internal/llm"
	"github.com/rafael/autoapply/internal/prompts"
	"github.com/rafael/autoapply/internal/types"
)

// MaxResults caps the ranked list returned to the caller.
const MaxResults = 20

const llmCallTimeout = 60 * time.Second

// Matcher ranks postings for a profile. Unlike extraction there is no
// deterministic fallback: a collaborator failure fails the operation.
type Matcher struct {
	client llm.Client
}

// NewMatcher builds a Matcher around an LLM client.
func NewMatcher(client llm.Client) *Matcher {
	return &Matcher{client: client}
}

// scoredJob mirrors one entry of the expected response array.
type scoredJob struct {
	JobID string `json:"job_id"`
	Score int    `json:"score"`
}

// Rank scores every posting and returns the top matches, highest score
// first, with 1-based ranks. Postings the collaborator does not mention
// score zero. An empty posting list yields an empty result.
func (m *Matcher) Rank(ctx context.Context, profile *types.CandidateProfile, postings []types.JobPosting) ([]types.MatchResult, error) {
	if len(postings) == 0 {
		return []types.MatchResult{}, nil
	}
	if m.client == nil {
		return nil, fmt.Errorf("matching requires an LLM client")
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	ids := make([]string, len(postings))
	var jobsBlock strings.Builder
	for i, p := range postings {
		ids[i] = jobID(p, i)
		fmt.Fprintf(&jobsBlock, "id: %s\ntitle: %s\ncompany: %s\nlocation: %s\nskills: %s\ndescription: %s\n\n",
			ids[i], p.Title, p.Company, p.Location, strings.Join(p.Skills, ", "), truncate(p.Description, 600))
	}

	template := prompts.MustGet("matching.json", "score-jobs")
	prompt := prompts.Format(template, map[string]string{
		"Profile": string(profileJSON),
		"Jobs":    jobsBlock.String(),
	})

	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	response, err := m.client.GenerateJSON(callCtx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("job scoring call failed: %w", err)
	}

	cleaned, ok := llm.ExtractJSONArray(response)
	if !ok {
		return nil, fmt.Errorf("no JSON array in collaborator response")
	}

	var scored []scoredJob
	if err := json.Unmarshal([]byte(cleaned), &scored); err != nil {
		return nil, fmt.Errorf("failed to decode job scores: %w", err)
	}

	scoreByID := make(map[string]int, len(scored))
	for _, s := range scored {
		scoreByID[s.JobID] = clampScore(s.Score)
	}

	results := make([]types.MatchResult, len(postings))
	for i, p := range postings {
		results[i] = types.MatchResult{Job: p, Score: scoreByID[ids[i]]}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	for i := range results {
		results[i].Rank = i + 1
	}

	return results, nil
}

// jobID picks a stable identifier for a posting within one scoring call.
// The URL is unique per posting; index is the last resort.
func jobID(p types.JobPosting, index int) string {
	if p.URL != "" {
		return p.URL
	}
	return "job-" + strconv.Itoa(index)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
