package extract

import (
	"regexp"
	"strings"
)

var (
	controlRe    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F-\x9F]`)
	spaceRunRe   = regexp.MustCompile(`[ \t\r\f\v]+`)
	newlineRunRe = regexp.MustCompile(`\n+`)
)

// CleanText strips non-printable control characters and collapses
// consecutive whitespace. Newlines are preserved as single separators so
// line-based heuristics downstream keep working.
func CleanText(text string) string {
	text = controlRe.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "\u00A0", " ")
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = newlineRunRe.ReplaceAllString(text, "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
