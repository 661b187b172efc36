package jobs

import "strings"

// commonSkills is the lowercase vocabulary matched against posting
// descriptions to tag listings with technologies.
var commonSkills = []string{
	"javascript", "typescript", "python", "java", "c++", "ruby", "go", "rust",
	"react", "vue", "angular", "node", "express", "django", "flask",
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform",
	"sql", "mongodb", "postgresql", "mysql", "redis",
	"git", "ci/cd", "agile", "scrum",
}

// ExtractSkills returns the vocabulary entries mentioned in a posting
// description, lowercase, in vocabulary order.
func ExtractSkills(description string) []string {
	descLower := strings.ToLower(description)
	var skills []string
	for _, skill := range commonSkills {
		if strings.Contains(descLower, skill) {
			skills = append(skills, skill)
		}
	}
	return skills
}
