// Package types defines the shared data model for the application pipeline:
// candidate profiles parsed from résumés, normalized job postings, match
// results, and application drafts.
package types

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Sentinel values used when extraction cannot recover a name or email.
// The pipeline degrades gracefully instead of failing the request.
const (
	NameNotFound  = "Nome não encontrado"
	EmailNotFound = "email@example.com"
)

// CandidateProfile is the structured representation of a parsed résumé.
// It is created once per uploaded document and not mutated afterwards
// within a request.
type CandidateProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Summary  string `json:"summary,omitempty"`

	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Languages  []string     `json:"languages,omitempty"`

	// Derived fields, filled by RecomputeTotals.
	TotalYearsExperience   float64            `json:"total_years_experience,omitempty"`
	ExperienceByTechnology map[string]float64 `json:"experience_by_technology,omitempty"`
}

// Experience is one professional experience entry.
type Experience struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Duration     string   `json:"duration"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies,omitempty"`
	YearsInRole  float64  `json:"years_in_role,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// Education is one education entry.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
	Description string `json:"description,omitempty"`
}

var (
	yearRangeRe = regexp.MustCompile(`(\d{4})\s*[-–]\s*(\d{4}|present|atual|current)`)
	yearsTextRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:years?|anos?)`)
)

// ParseDurationYears estimates the number of years covered by a free-form
// duration string such as "2020-2023", "2021 - Present" or "3 years".
// Returns 0 when the string carries no usable signal.
func ParseDurationYears(duration string, now time.Time) float64 {
	d := strings.ToLower(strings.TrimSpace(duration))
	if d == "" {
		return 0
	}

	if m := yearRangeRe.FindStringSubmatch(d); m != nil {
		start, err := strconv.Atoi(m[1])
		if err != nil {
			return 0
		}
		end := now.Year()
		if y, err := strconv.Atoi(m[2]); err == nil {
			end = y
		}
		if end < start {
			return 0
		}
		return float64(end - start)
	}

	if m := yearsTextRe.FindStringSubmatch(d); m != nil {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err == nil && v >= 0 {
			return v
		}
	}

	return 0
}

// RecomputeTotals derives TotalYearsExperience and ExperienceByTechnology
// from the experience entries. Entries without YearsInRole get a value
// parsed from their duration string first. Totals are always the sum of
// per-experience years; they are never authored independently.
func (p *CandidateProfile) RecomputeTotals(now time.Time) {
	total := 0.0
	byTech := make(map[string]float64)

	for i := range p.Experience {
		exp := &p.Experience[i]
		if exp.YearsInRole == 0 {
			exp.YearsInRole = ParseDurationYears(exp.Duration, now)
		}
		total += exp.YearsInRole
		for _, tech := range exp.Technologies {
			tech = strings.TrimSpace(tech)
			if tech != "" {
				byTech[tech] += exp.YearsInRole
			}
		}
	}

	p.TotalYearsExperience = total
	if len(byTech) > 0 {
		p.ExperienceByTechnology = byTech
	} else {
		p.ExperienceByTechnology = nil
	}
}

// DedupeSkills removes duplicate skills case-insensitively, keeping the
// first occurrence and its original casing.
func DedupeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
