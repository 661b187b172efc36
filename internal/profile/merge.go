package profile

import (
	"strings"
	"time"

	"github.com/rafael/autoapply/internal/types"
)

// MergeProfiles combines partial profiles extracted from sequential
// résumé chunks. Singular fields take the first non-empty value,
// summaries concatenate, and lists union with natural-identity
// deduplication: skill string, title+company for experience,
// degree+institution for education. Numeric aggregates are recomputed
// from the merged experience list.
func MergeProfiles(partials []*types.CandidateProfile) *types.CandidateProfile {
	merged := &types.CandidateProfile{}

	seenExp := make(map[string]bool)
	seenEdu := make(map[string]bool)
	var summaries []string

	for _, p := range partials {
		if p == nil {
			continue
		}

		if merged.Name == "" {
			merged.Name = p.Name
		}
		if merged.Email == "" {
			merged.Email = p.Email
		}
		if merged.Phone == "" {
			merged.Phone = p.Phone
		}
		if merged.Location == "" {
			merged.Location = p.Location
		}
		if p.Summary != "" {
			summaries = append(summaries, p.Summary)
		}

		merged.Skills = append(merged.Skills, p.Skills...)
		merged.Languages = append(merged.Languages, p.Languages...)

		for _, exp := range p.Experience {
			key := identityKey(exp.Title, exp.Company)
			if seenExp[key] {
				continue
			}
			seenExp[key] = true
			merged.Experience = append(merged.Experience, exp)
		}

		for _, edu := range p.Education {
			key := identityKey(edu.Degree, edu.Institution)
			if seenEdu[key] {
				continue
			}
			seenEdu[key] = true
			merged.Education = append(merged.Education, edu)
		}
	}

	merged.Summary = strings.Join(summaries, " ")
	merged.Skills = types.DedupeSkills(merged.Skills)
	merged.Languages = types.DedupeSkills(merged.Languages)
	merged.RecomputeTotals(time.Now())

	return merged
}

func identityKey(a, b string) string {
	return strings.ToLower(strings.TrimSpace(a)) + "\x00" + strings.ToLower(strings.TrimSpace(b))
}
