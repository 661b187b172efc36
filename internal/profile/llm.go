package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rafael/autoapply/internal/llm"
	"github.com/rafael/autoapply/internal/prompts"
	"github.com/rafael/autoapply/internal/schemas"
	"github.com/rafael/autoapply/internal/types"
)

// Chunking thresholds for long résumés. Only the first two chunks are
// processed to cap collaborator cost and latency.
const (
	chunkThreshold = 8000
	chunkSize      = 6000
	maxChunks      = 2
)

// llmCallTimeout bounds each collaborator call.
const llmCallTimeout = 60 * time.Second

// LLMExtractor is the primary extraction strategy. It prompts the
// text-understanding collaborator for a single JSON object matching the
// CandidateProfile shape, validates it against the embedded schema, and
// decodes it. Long texts are split into chunks whose partial profiles are
// merged.
type LLMExtractor struct {
	client llm.Client
}

// NewLLMExtractor constructs the primary strategy around an LLM client.
func NewLLMExtractor(client llm.Client) *LLMExtractor {
	return &LLMExtractor{client: client}
}

// Extract implements Extractor. Any transport or parse error is returned
// to the caller (the Policy), which falls back to heuristics; parse
// failures are never retried against the collaborator.
func (e *LLMExtractor) Extract(ctx context.Context, text string) (*types.CandidateProfile, error) {
	if len(text) <= chunkThreshold {
		return e.extractSingle(ctx, text)
	}
	return e.extractChunked(ctx, text)
}

func (e *LLMExtractor) extractSingle(ctx context.Context, text string) (*types.CandidateProfile, error) {
	template := prompts.MustGet("extraction.json", "extract-profile")
	prompt := prompts.Format(template, map[string]string{"ResumeText": text})

	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	response, err := e.client.GenerateJSON(callCtx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("profile extraction call failed: %w", err)
	}

	return decodeProfile(response)
}

func (e *LLMExtractor) extractChunked(ctx context.Context, text string) (*types.CandidateProfile, error) {
	chunks := splitChunks(text, chunkSize)
	if len(chunks) > maxChunks {
		chunks = chunks[:maxChunks]
	}

	template := prompts.MustGet("extraction.json", "extract-profile-chunk")

	var partials []*types.CandidateProfile
	for i, chunk := range chunks {
		prompt := prompts.Format(template, map[string]string{"ChunkText": chunk})

		callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
		response, err := e.client.GenerateJSON(callCtx, prompt, llm.TierStandard)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("profile extraction call failed on chunk %d: %w", i+1, err)
		}

		partial, err := decodeProfile(response)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i+1, err)
		}
		partials = append(partials, partial)
	}

	return MergeProfiles(partials), nil
}

// decodeProfile sanitizes, schema-validates and decodes an LLM response.
func decodeProfile(response string) (*types.CandidateProfile, error) {
	cleaned, ok := llm.ExtractJSONObject(response)
	if !ok {
		return nil, fmt.Errorf("no JSON object in collaborator response")
	}

	if err := schemas.ValidateProfileJSON(cleaned); err != nil {
		return nil, fmt.Errorf("collaborator response rejected: %w", err)
	}

	var p types.CandidateProfile
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile JSON: %w", err)
	}
	return &p, nil
}

// splitChunks cuts text into sequential chunks of roughly size bytes,
// breaking on line boundaries where possible and never mid-rune.
func splitChunks(text string, size int) []string {
	var chunks []string
	for len(text) > size {
		cut := size
		// Prefer a newline near the boundary so entries stay whole.
		if idx := strings.LastIndex(text[:size], "\n"); idx > size/2 {
			cut = idx
		} else {
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = text[cut:]
	}
	if t := strings.TrimSpace(text); t != "" {
		chunks = append(chunks, t)
	}
	return chunks
}
