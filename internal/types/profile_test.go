package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestParseDurationYears(t *testing.T) {
	tests := []struct {
		name     string
		duration string
		expected float64
	}{
		{"Year range", "2020-2023", 3},
		{"Year range with spaces", "2018 - 2022", 4},
		{"Range to present", "2021 - Present", 4},
		{"Range to atual", "2022-atual", 3},
		{"Explicit years", "3 years", 3},
		{"Explicit anos", "5 anos", 5},
		{"Fractional years", "2.5 years", 2.5},
		{"Single year only", "2020", 0},
		{"Empty", "", 0},
		{"Garbage", "a while", 0},
		{"Inverted range", "2023-2020", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseDurationYears(tt.duration, testNow))
		})
	}
}

func TestRecomputeTotals(t *testing.T) {
	p := &CandidateProfile{
		Experience: []Experience{
			{Title: "Developer", Company: "Acme", Duration: "2020-2023", Technologies: []string{"Go", "React"}},
			{Title: "Engineer", Company: "Globex", Duration: "2018-2020", Technologies: []string{"Go"}},
		},
	}

	p.RecomputeTotals(testNow)

	assert.Equal(t, 5.0, p.TotalYearsExperience)
	assert.Equal(t, 5.0, p.ExperienceByTechnology["Go"])
	assert.Equal(t, 3.0, p.ExperienceByTechnology["React"])
}

func TestRecomputeTotalsBoundedByYearsInRole(t *testing.T) {
	// Per technology, accumulated years never exceed the sum of
	// YearsInRole across experiences mentioning that technology.
	p := &CandidateProfile{
		Experience: []Experience{
			{Title: "Dev", Company: "A", YearsInRole: 2, Technologies: []string{"Python"}},
			{Title: "Dev", Company: "B", YearsInRole: 1.5, Technologies: []string{"Python", "Docker"}},
		},
	}

	p.RecomputeTotals(testNow)

	assert.Equal(t, 3.5, p.TotalYearsExperience)
	assert.LessOrEqual(t, p.ExperienceByTechnology["Python"], 3.5)
	assert.LessOrEqual(t, p.ExperienceByTechnology["Docker"], 1.5)
	for _, years := range p.ExperienceByTechnology {
		assert.GreaterOrEqual(t, years, 0.0)
	}
}

func TestRecomputeTotalsNoTechnologies(t *testing.T) {
	p := &CandidateProfile{
		Experience: []Experience{{Title: "Dev", Company: "A", Duration: "2022-2024"}},
	}

	p.RecomputeTotals(testNow)

	assert.Equal(t, 2.0, p.TotalYearsExperience)
	assert.Nil(t, p.ExperienceByTechnology)
}

func TestDedupeSkills(t *testing.T) {
	got := DedupeSkills([]string{"Go", "React", "go", " ", "React", "Docker"})
	assert.Equal(t, []string{"Go", "React", "Docker"}, got)
}

func TestDedupKey(t *testing.T) {
	a := JobPosting{Title: "Backend Developer", Company: "Acme", URL: "https://a.example/1"}
	b := JobPosting{Title: "backend developer", Company: "ACME", URL: "https://b.example/2"}
	c := JobPosting{Title: "Backend Developer", Company: "Globex"}

	assert.Equal(t, a.DedupKey(), b.DedupKey())
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())
}
