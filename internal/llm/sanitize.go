package llm

import "strings"

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a potential language identifier on the first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// ExtractJSONObject recovers a usable JSON object from a sloppy LLM
// response: code fences are stripped, surrounding prose is trimmed to the
// outermost {...}, and unmatched open braces are balanced by appending
// closers. Idempotent on already-clean JSON. Returns the cleaned text and
// false when no object could be located at all.
func ExtractJSONObject(text string) (string, bool) {
	text = CleanJSONBlock(text)

	start := strings.Index(text, "{")
	if start < 0 {
		return "", false
	}
	text = text[start:]

	if last := strings.LastIndex(text, "}"); last >= 0 {
		text = text[:last+1]
	}

	// Balance unmatched braces, ignoring braces inside string literals.
	depth := 0
	inString := false
	escaped := false
	for _, r := range text {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inString:
			escaped = true
		case r == '"':
			inString = !inString
		case r == '{' && !inString:
			depth++
		case r == '}' && !inString:
			depth--
		}
	}
	if depth > 0 {
		text += strings.Repeat("}", depth)
	}

	return text, true
}

// ExtractJSONArray is the array counterpart of ExtractJSONObject, used for
// responses expected to be a bare JSON array (match scores, keyword lists).
func ExtractJSONArray(text string) (string, bool) {
	text = CleanJSONBlock(text)

	start := strings.Index(text, "[")
	if start < 0 {
		return "", false
	}
	text = text[start:]

	if last := strings.LastIndex(text, "]"); last >= 0 {
		text = text[:last+1]
	}

	return text, true
}
