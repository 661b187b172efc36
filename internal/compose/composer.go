// Package compose turns a matched job into a ready-to-send application
// draft: a cover letter in the posting's language, a subject line, and a
// resolved recipient address. Letter generation prefers the LLM and always
// recovers with a deterministic template, so composition never fails for
// letter-quality reasons; only an unresolvable recipient is surfaced.
package compose

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/rafael/autoapply/internal/llm"
	"github.com/rafael/autoapply/internal/prompts"
	"github.com/rafael/autoapply/internal/types"
)

// Letter generation retry schedule: exponential backoff on transport
// errors. Validation failures are not retried; they go straight to the
// template.
const (
	letterAttempts     = 3
	letterInitialDelay = time.Second
)

const llmCallTimeout = 60 * time.Second

// minLetterLength is the floor below which a generated letter is
// considered degenerate.
const minLetterLength = 100

// Composer builds application drafts. A nil client selects the
// deterministic letter path for every draft.
type Composer struct {
	client llm.Client
	// sleep is swapped in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewComposer constructs a Composer. client may be nil.
func NewComposer(client llm.Client) *Composer {
	return &Composer{client: client, sleep: time.Sleep}
}

// Compose builds a draft for one job. The returned draft always carries a
// letter and subject; Recipient resolution failure returns the draft
// alongside a *NoRecipientFoundError so callers can preview it anyway.
func (c *Composer) Compose(ctx context.Context, profile *types.CandidateProfile, job types.JobPosting) (*types.ApplicationDraft, error) {
	draft := types.NewApplicationDraft(job)
	draft.Language = detectLanguage(ctx, c.client, job.Description)

	letter, usedFallback := c.letter(ctx, profile, job, draft.Language)
	draft.CoverLetter = letter
	draft.UsedFallback = usedFallback
	draft.Subject = subjectFor(profile, job, draft.Language)

	recipient, err := resolveRecipient(ctx, c.client, job)
	if err != nil {
		return draft, err
	}
	draft.Recipient = recipient

	return draft, nil
}

// letter generates the cover letter, retrying transport errors with
// exponential backoff and validating the output. Any failure yields the
// per-language template.
func (c *Composer) letter(ctx context.Context, profile *types.CandidateProfile, job types.JobPosting, language string) (string, bool) {
	if c.client == nil {
		return fallbackLetter(profile, job, language), true
	}

	prompt := c.letterPrompt(profile, job, language)

	var lastErr error
	delay := letterInitialDelay
	for attempt := 0; attempt < letterAttempts; attempt++ {
		if attempt > 0 {
			c.sleep(delay)
			delay *= 2
		}

		callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
		response, err := c.client.GenerateContent(callCtx, prompt, llm.TierAdvanced)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}

		letter := strings.TrimSpace(response)
		if verr := validateLetter(letter, profile, job); verr != nil {
			// A weak letter is not retried; regeneration tends to
			// reproduce the same defect.
			lastErr = verr
			break
		}
		return letter, false
	}

	log.Printf("[compose] letter generation failed for %s at %s, using template: %v", job.Title, job.Company, lastErr)
	return fallbackLetter(profile, job, language), true
}

func (c *Composer) letterPrompt(profile *types.CandidateProfile, job types.JobPosting, language string) string {
	experienceText := make([]string, 0, len(profile.Experience))
	for _, exp := range profile.Experience {
		experienceText = append(experienceText, fmt.Sprintf("%s at %s (%s)", exp.Title, exp.Company, exp.Duration))
	}

	template := prompts.MustGet("composing.json", "cover-letter")
	return prompts.Format(template, map[string]string{
		"Language":          languageName(language),
		"Name":              profile.Name,
		"CandidateLocation": profile.Location,
		"Skills":            strings.Join(profile.Skills, ", "),
		"Experience":        strings.Join(experienceText, "; "),
		"TotalYears":        strconv.FormatFloat(profile.TotalYearsExperience, 'f', -1, 64),
		"Summary":           profile.Summary,
		"JobTitle":          job.Title,
		"Company":           job.Company,
		"JobLocation":       job.Location,
		"Requirements":      strings.Join(job.Requirements, ", "),
		"Description":       truncate(job.Description, 1500),
	})
}

// validateLetter applies the quality gate: minimum length, the candidate
// is named, and at least one concrete anchor (a year count, the company
// or the role) appears.
func validateLetter(letter string, profile *types.CandidateProfile, job types.JobPosting) error {
	if len(letter) <= minLetterLength {
		return &WeakGenerationError{Reason: "letter too short"}
	}
	if profile.Name != "" && !strings.Contains(letter, profile.Name) {
		return &WeakGenerationError{Reason: "candidate name missing"}
	}

	lower := strings.ToLower(letter)
	hasYears := profile.TotalYearsExperience > 0 &&
		strings.Contains(lower, strconv.Itoa(int(profile.TotalYearsExperience)))
	hasCompany := job.Company != "" && strings.Contains(lower, strings.ToLower(job.Company))
	hasTitle := job.Title != "" && strings.Contains(lower, strings.ToLower(job.Title))
	if !hasYears && !hasCompany && !hasTitle {
		return &WeakGenerationError{Reason: "no concrete anchor (years, company or title)"}
	}
	return nil
}

func languageName(code string) string {
	switch code {
	case LangPortuguese:
		return "Portuguese"
	case LangSpanish:
		return "Spanish"
	default:
		return "English"
	}
}
