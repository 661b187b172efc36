package types

import (
	"strings"
	"time"
)

// JobPosting is the normalized representation of one external job listing.
// Adapters create postings and never mutate them afterwards; the URL (or
// the title+company pair) serves as the deduplication key within one
// aggregation run.
type JobPosting struct {
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Description     string    `json:"description"`
	Location        string    `json:"location,omitempty"`
	Salary          string    `json:"salary,omitempty"`
	Requirements    []string  `json:"requirements,omitempty"`
	Benefits        []string  `json:"benefits,omitempty"`
	URL             string    `json:"url"`
	Source          string    `json:"source"`
	CompanyURL      string    `json:"company_url,omitempty"`
	PostedAt        time.Time `json:"posted_at"`
	Skills          []string  `json:"skills"`
	EmploymentType  string    `json:"employment_type,omitempty"`
	ExperienceLevel string    `json:"experience_level,omitempty"`
}

// DedupKey returns the case-normalized (title, company) identity used by
// the aggregator to collapse the same listing found on different boards.
func (j JobPosting) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(j.Title)) + "\x00" + strings.ToLower(strings.TrimSpace(j.Company))
}

// MatchResult is a JobPosting annotated with a relevance score and rank.
// Recomputed per matching run, never cached across profile changes.
type MatchResult struct {
	Job   JobPosting `json:"job"`
	Score int        `json:"score"` // 0-100
	Rank  int        `json:"rank"`  // 1-based position in the returned set
}
