// Package keywords derives job-board search terms from a candidate
// profile. Derivation prefers the LLM for recall across free-form résumé
// text, with a deterministic profile-field fallback so the search stage
// always has something to work with.
package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rafael/autoapply/internal/llm"
	"github.com/rafael/autoapply/internal/prompts"
	"github.com/rafael/autoapply/internal/types"
)

// maxKeywords caps the search term list so adapter queries stay focused.
const maxKeywords = 10

// DefaultLocation is used when the profile gives no location signal.
const DefaultLocation = "Brasil"

const llmCallTimeout = 60 * time.Second

// SearchTerms is the derived query input for the job aggregation stage.
type SearchTerms struct {
	Keywords []string `json:"keywords"`
	Roles    []string `json:"roles,omitempty"`
	Location string   `json:"location"`
}

// Deriver turns a CandidateProfile into SearchTerms. A nil client selects
// the deterministic path. Derive never returns an error; any LLM failure
// degrades to the fallback.
type Deriver struct {
	client llm.Client
}

// NewDeriver constructs a Deriver. client may be nil.
func NewDeriver(client llm.Client) *Deriver {
	return &Deriver{client: client}
}

// Derive produces search terms for the given profile.
func (d *Deriver) Derive(ctx context.Context, p *types.CandidateProfile) *SearchTerms {
	if d.client != nil {
		terms, err := d.deriveLLM(ctx, p)
		if err == nil {
			return terms
		}
		log.Printf("[keywords] LLM derivation failed, using profile fields: %v", err)
	}
	return DeriveFromProfile(p)
}

func (d *Deriver) deriveLLM(ctx context.Context, p *types.CandidateProfile) (*SearchTerms, error) {
	template := prompts.MustGet("keywords.json", "derive-keywords")
	prompt := prompts.Format(template, map[string]string{
		"Name":       p.Name,
		"Location":   p.Location,
		"Skills":     strings.Join(p.Skills, ", "),
		"Experience": summarizeExperience(p.Experience),
		"Summary":    p.Summary,
	})

	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	response, err := d.client.GenerateJSON(callCtx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("keyword derivation call failed: %w", err)
	}

	cleaned, ok := llm.ExtractJSONObject(response)
	if !ok {
		return nil, fmt.Errorf("no JSON object in collaborator response")
	}

	var terms SearchTerms
	if err := json.Unmarshal([]byte(cleaned), &terms); err != nil {
		return nil, fmt.Errorf("failed to decode search terms: %w", err)
	}
	if len(terms.Keywords) == 0 {
		return nil, fmt.Errorf("collaborator returned no keywords")
	}

	normalize(&terms, p)
	return &terms, nil
}

// DeriveFromProfile is the deterministic derivation: the union of the
// skills list, the technologies attached to each experience entry, and the
// keys of the experience-by-technology aggregate, capped at 10. Roles stay
// empty; only the LLM path infers target role titles.
func DeriveFromProfile(p *types.CandidateProfile) *SearchTerms {
	var candidates []string
	candidates = append(candidates, p.Skills...)
	for _, exp := range p.Experience {
		candidates = append(candidates, exp.Technologies...)
	}
	for tech := range p.ExperienceByTechnology {
		candidates = append(candidates, tech)
	}

	terms := &SearchTerms{
		Keywords: types.DedupeSkills(candidates),
		Location: p.Location,
	}

	normalize(terms, p)
	return terms
}

// normalize applies the keyword cap and the location default.
func normalize(terms *SearchTerms, p *types.CandidateProfile) {
	terms.Keywords = types.DedupeSkills(terms.Keywords)
	if len(terms.Keywords) > maxKeywords {
		terms.Keywords = terms.Keywords[:maxKeywords]
	}
	if strings.TrimSpace(terms.Location) == "" {
		terms.Location = strings.TrimSpace(p.Location)
	}
	if terms.Location == "" {
		terms.Location = DefaultLocation
	}
}

func summarizeExperience(exps []types.Experience) string {
	var parts []string
	for _, exp := range exps {
		part := exp.Title
		if exp.Company != "" {
			part += " at " + exp.Company
		}
		if len(exp.Technologies) > 0 {
			part += " (" + strings.Join(exp.Technologies, ", ") + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}
