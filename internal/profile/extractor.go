// Package profile turns plain résumé text into a structured
// CandidateProfile. Two strategies implement the same interface: an
// LLM-backed extractor and a deterministic regex fallback. A Policy picks
// between them and guarantees the pipeline always gets a usable profile.
package profile

import (
	"context"
	"log"
	"time"

	"github.com/rafael/autoapply/internal/types"
)

// Extractor is the shared profile-extraction interface.
type Extractor interface {
	Extract(ctx context.Context, text string) (*types.CandidateProfile, error)
}

// Policy selects the extraction strategy: LLM first when a client is
// configured, regex heuristics otherwise or on any LLM failure. It never
// returns an error; partial extraction yields sentinel values instead.
type Policy struct {
	primary  Extractor
	fallback Extractor
}

// NewPolicy builds the strategy selector. primary may be nil, in which
// case every request goes straight to the fallback.
func NewPolicy(primary, fallback Extractor) *Policy {
	return &Policy{primary: primary, fallback: fallback}
}

// Extract runs the selected strategy and normalizes the result.
func (p *Policy) Extract(ctx context.Context, text string) (*types.CandidateProfile, error) {
	var prof *types.CandidateProfile

	if p.primary != nil {
		var err error
		prof, err = p.primary.Extract(ctx, text)
		if err != nil {
			log.Printf("[profile] LLM extraction failed, using heuristics: %v", err)
			prof = nil
		}
	}

	if prof == nil {
		var err error
		prof, err = p.fallback.Extract(ctx, text)
		if err != nil {
			// The heuristic extractor does not fail, but keep the
			// degrade-gracefully contract anyway.
			prof = &types.CandidateProfile{}
		}
	}

	normalize(prof)
	return prof, nil
}

// normalize enforces the always-usable-profile contract: sentinel values
// for missing identity fields, deduplicated skills, derived totals.
func normalize(p *types.CandidateProfile) {
	if p.Name == "" {
		p.Name = types.NameNotFound
	}
	if p.Email == "" {
		p.Email = types.EmailNotFound
	}
	p.Skills = types.DedupeSkills(p.Skills)
	if p.TotalYearsExperience == 0 {
		p.RecomputeTotals(time.Now())
	}
}
