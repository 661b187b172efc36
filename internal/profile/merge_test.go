package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafael/autoapply/internal/types"
)

func TestMergeProfiles(t *testing.T) {
	a := &types.CandidateProfile{
		Name:    "João Silva",
		Email:   "joao@x.com",
		Summary: "First chunk summary.",
		Skills:  []string{"React", "Node.js"},
		Experience: []types.Experience{
			{Title: "Developer", Company: "Acme", YearsInRole: 2},
		},
		Education: []types.Education{
			{Degree: "BSc", Institution: "USP", Year: "2019"},
		},
		Languages: []string{"Portuguese"},
	}
	b := &types.CandidateProfile{
		Name:    "Wrong Name From Later Chunk",
		Phone:   "+55 11 98765-4321",
		Summary: "Second chunk summary.",
		Skills:  []string{"react", "Docker"},
		Experience: []types.Experience{
			{Title: "developer", Company: "ACME", YearsInRole: 2},
			{Title: "Intern", Company: "Globex", YearsInRole: 1},
		},
		Education: []types.Education{
			{Degree: "bsc", Institution: "usp", Year: "2019"},
		},
		Languages: []string{"English", "portuguese"},
	}

	merged := MergeProfiles([]*types.CandidateProfile{a, b})

	// First non-empty value wins for singular fields.
	assert.Equal(t, "João Silva", merged.Name)
	assert.Equal(t, "joao@x.com", merged.Email)
	assert.Equal(t, "+55 11 98765-4321", merged.Phone)
	assert.Equal(t, "First chunk summary. Second chunk summary.", merged.Summary)

	assert.Equal(t, []string{"React", "Node.js", "Docker"}, merged.Skills)
	assert.Equal(t, []string{"Portuguese", "English"}, merged.Languages)

	// Duplicate experience and education collapse case-insensitively.
	require.Len(t, merged.Experience, 2)
	assert.Equal(t, "Acme", merged.Experience[0].Company)
	assert.Equal(t, "Globex", merged.Experience[1].Company)
	require.Len(t, merged.Education, 1)

	assert.InDelta(t, 3.0, merged.TotalYearsExperience, 0.01)
}

func TestMergeProfilesNilAndEmpty(t *testing.T) {
	merged := MergeProfiles([]*types.CandidateProfile{nil, {}})
	assert.Empty(t, merged.Name)
	assert.Empty(t, merged.Skills)
	assert.Zero(t, merged.TotalYearsExperience)

	merged = MergeProfiles(nil)
	assert.NotNil(t, merged)
}
