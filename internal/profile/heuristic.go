package profile

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rafael/autoapply/internal/types"
)

// Caps on extracted lists, bounding downstream LLM cost.
const (
	maxSkills     = 15
	maxExperience = 5
	maxEducation  = 3
)

// skillVocabulary is the fixed technology vocabulary used for substring
// matching when no better signal is available.
var skillVocabulary = []string{
	"JavaScript", "TypeScript", "React", "Node.js", "Python", "Java", "C++", "C#",
	"PHP", "Ruby", "Go", "Rust", "Swift", "Kotlin", "Dart", "Flutter",
	"Angular", "Vue.js", "Next.js", "Express", "Django", "Flask", "Spring",
	"MongoDB", "PostgreSQL", "MySQL", "Redis", "Docker", "Kubernetes",
	"AWS", "Azure", "GCP", "Git", "GitHub", "GitLab", "CI/CD",
	"HTML", "CSS", "SASS", "LESS", "Tailwind CSS", "Bootstrap",
	"GraphQL", "REST API", "Microservices", "Agile", "Scrum",
}

// languageVocabulary maps résumé language mentions (English and Portuguese
// spellings) to a canonical name.
var languageVocabulary = map[string]string{
	"portuguese": "Portuguese", "português": "Portuguese", "portugues": "Portuguese",
	"english": "English", "inglês": "English", "ingles": "English",
	"spanish": "Spanish", "espanhol": "Spanish",
	"french": "French", "francês": "French", "frances": "French",
	"german": "German", "alemão": "German", "alemao": "German",
	"italian": "Italian", "italiano": "Italian",
}

var (
	nameRe     = regexp.MustCompile(`^\p{Lu}[\p{Ll}]+(?: \p{Lu}[\p{Ll}]+)+`)
	emailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRe    = regexp.MustCompile(`(\+\d{1,3}[-.\s]?)?\(?\d{2,3}\)?[-.\s]?\d{3,5}[-.\s]?\d{4}`)
	locationRe = regexp.MustCompile(`^\p{Lu}[\p{Ll}]+(?: \p{Lu}[\p{Ll}]+)*, (?:[A-Z]{2}|\p{Lu}[\p{Ll}]+)$`)
	expLineRe  = regexp.MustCompile(`(?i)^(.+?)\s+(?:at|@|in|na)\s+(.+?)\s*[-|–]\s*(.+)$`)
	eduLineRe  = regexp.MustCompile(`(?i)^(.+?)\s+(?:at|@|in|na|,)\s*(.+?)\s*[-|–,]\s*(\d{4})$`)
)

// nameExclusions are substrings that disqualify a line as a name candidate.
var nameExclusions = []string{"email", "@", "phone", "cv", "resume", "curriculum"}

// HeuristicExtractor is the deterministic fallback extraction strategy.
// It never fails: fields it cannot find are left empty or filled with the
// sentinel values.
type HeuristicExtractor struct {
	// Now is injectable for duration parsing in tests; defaults to time.Now.
	Now func() time.Time
}

// NewHeuristicExtractor constructs the fallback strategy.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{Now: time.Now}
}

// Extract builds a best-effort CandidateProfile from résumé text using
// regex heuristics and the fixed technology vocabulary.
func (h *HeuristicExtractor) Extract(_ context.Context, text string) (*types.CandidateProfile, error) {
	lines := nonEmptyLines(text)

	p := &types.CandidateProfile{
		Name:       extractName(lines),
		Email:      extractEmail(text),
		Phone:      extractPhone(text),
		Location:   extractLocation(lines),
		Summary:    extractSummary(lines),
		Skills:     ExtractSkillsFromText(text),
		Experience: extractExperience(lines),
		Education:  extractEducation(lines),
		Languages:  extractLanguages(text),
	}

	p.RecomputeTotals(h.Now())
	return p, nil
}

func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// extractName looks for a capitalized-words pattern in the first 10
// non-empty lines, skipping lines that look like contact details.
func extractName(lines []string) string {
	limit := min(10, len(lines))
	for i := 0; i < limit; i++ {
		line := lines[i]
		lower := strings.ToLower(line)
		excluded := false
		for _, word := range nameExclusions {
			if strings.Contains(lower, word) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		if m := nameRe.FindString(line); m != "" {
			return m
		}
	}
	return types.NameNotFound
}

func extractEmail(text string) string {
	if m := emailRe.FindString(text); m != "" {
		return m
	}
	return types.EmailNotFound
}

func extractPhone(text string) string {
	return phoneRe.FindString(text)
}

func extractLocation(lines []string) string {
	limit := min(10, len(lines))
	for i := 0; i < limit; i++ {
		if locationRe.MatchString(lines[i]) {
			return lines[i]
		}
	}
	return ""
}

// ExtractSkillsFromText matches the fixed technology vocabulary against
// the text, case-insensitively, capped at 15 skills.
func ExtractSkillsFromText(text string) []string {
	lower := strings.ToLower(text)
	var skills []string
	for _, skill := range skillVocabulary {
		if strings.Contains(lower, strings.ToLower(skill)) {
			skills = append(skills, skill)
			if len(skills) == maxSkills {
				break
			}
		}
	}
	return skills
}

// extractExperience scans for "Title at Company - Duration" lines, picking
// up a following description line and technology mentions.
func extractExperience(lines []string) []types.Experience {
	var out []types.Experience
	for i, line := range lines {
		m := expLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		// Reject obvious false positives: headers, contact lines and
		// education entries, which have their own scan.
		if strings.Contains(m[1], "@") || len(m[1]) > 60 || looksLikeEducation(line) {
			continue
		}

		exp := types.Experience{
			Title:    strings.TrimSpace(m[1]),
			Company:  strings.TrimSpace(m[2]),
			Duration: strings.TrimSpace(m[3]),
		}

		// Look ahead for a description line.
		for j := i + 1; j < min(i+4, len(lines)); j++ {
			next := lines[j]
			if expLineRe.MatchString(next) || eduLineRe.MatchString(next) {
				break
			}
			if len(next) > 30 {
				exp.Description = next
				break
			}
		}

		exp.Technologies = ExtractSkillsFromText(line + " " + exp.Description)
		out = append(out, exp)
		if len(out) == maxExperience {
			break
		}
	}
	return out
}

var educationWords = []string{
	"bachelor", "bacharel", "master", "mestrado", "degree", "universi",
	"college", "faculdade", "tecnólogo", "phd",
}

func looksLikeEducation(line string) bool {
	lower := strings.ToLower(line)
	for _, w := range educationWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func extractEducation(lines []string) []types.Education {
	var out []types.Education
	for _, line := range lines {
		m := eduLineRe.FindStringSubmatch(line)
		if m == nil || !looksLikeEducation(line) {
			continue
		}

		out = append(out, types.Education{
			Degree:      strings.TrimSpace(m[1]),
			Institution: strings.TrimSpace(m[2]),
			Year:        strings.TrimSpace(m[3]),
		})
		if len(out) == maxEducation {
			break
		}
	}
	return out
}

var summaryHeaders = []string{"summary", "about", "profile", "objective", "resumo", "objetivo", "sobre"}

func extractSummary(lines []string) string {
	for i, line := range lines {
		lower := strings.ToLower(line)
		isHeader := false
		for _, h := range summaryHeaders {
			if strings.HasPrefix(lower, h) {
				isHeader = true
				break
			}
		}
		if !isHeader {
			continue
		}

		var parts []string
		for j := i + 1; j < min(i+5, len(lines)); j++ {
			if len(lines[j]) > 20 {
				parts = append(parts, lines[j])
			}
		}
		summary := strings.Join(parts, " ")
		if len(summary) > 200 {
			cut := 200
			for cut > 0 && !utf8.RuneStart(summary[cut]) {
				cut--
			}
			summary = summary[:cut]
		}
		return summary
	}
	return ""
}

func extractLanguages(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	var out []string
	for mention, canonical := range languageVocabulary {
		if strings.Contains(lower, mention) && !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	// Map iteration order is random; keep output stable.
	sort.Strings(out)
	return out
}
