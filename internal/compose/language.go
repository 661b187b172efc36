package compose

import (
	"context"
	"strings"

	"github.com/rafael/autoapply/internal/llm"
	"github.com/rafael/autoapply/internal/prompts"
)

// Supported letter languages.
const (
	LangEnglish    = "en"
	LangPortuguese = "pt"
	LangSpanish    = "es"
)

// stopWords are high-frequency function words used for the deterministic
// language guess. Shared es/pt words are listed once under the language
// where they weigh most.
var stopWords = map[string][]string{
	LangEnglish:    {" the ", " and ", " with ", " for ", " you ", " we ", " our ", " are "},
	LangPortuguese: {" de ", " da ", " do ", " em ", " para ", " com ", " uma ", " não ", " você "},
	LangSpanish:    {" el ", " la ", " los ", " las ", " es ", " una ", " nuestro ", " trabajo "},
}

// detectLanguage classifies the posting text as en, pt or es. The LLM is
// asked for a single token; anything unexpected falls through to the
// stop-word count, and English is the last resort.
func detectLanguage(ctx context.Context, client llm.Client, text string) string {
	if client != nil {
		template := prompts.MustGet("composing.json", "detect-language")
		prompt := prompts.Format(template, map[string]string{"Text": truncate(text, 1000)})

		if response, err := client.GenerateContent(ctx, prompt, llm.TierLite); err == nil {
			token := strings.ToLower(strings.TrimSpace(response))
			switch token {
			case LangEnglish, LangPortuguese, LangSpanish:
				return token
			}
		}
	}
	return guessLanguage(text)
}

// guessLanguage counts stop-word hits per language.
func guessLanguage(text string) string {
	haystack := " " + strings.ToLower(text) + " "

	best := LangEnglish
	bestCount := 0
	for _, lang := range []string{LangEnglish, LangPortuguese, LangSpanish} {
		count := 0
		for _, w := range stopWords[lang] {
			count += strings.Count(haystack, w)
		}
		if count > bestCount {
			best = lang
			bestCount = count
		}
	}
	return best
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
