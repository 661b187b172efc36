package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSkills(t *testing.T) {
	tests := []struct {
		name        string
		description string
		expected    []string
	}{
		{
			"Backend posting",
			"We use Go, Docker and PostgreSQL in production on AWS.",
			[]string{"go", "aws", "docker", "sql", "postgresql"},
		},
		{
			"Case insensitive",
			"REACT and TYPESCRIPT experience required",
			[]string{"typescript", "react"},
		},
		{
			"No technology mentions",
			"Great culture, competitive salary, unlimited PTO.",
			nil,
		},
		{
			"Empty",
			"",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractSkills(tt.description))
		})
	}
}
