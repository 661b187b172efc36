package jobs

import (
	"context"
	"log"

	"github.com/rafael/autoapply/internal/fetch"
	"github.com/rafael/autoapply/internal/types"
)

// MinDescriptionLength is the point below which a listing snippet is too
// thin for cover letter generation and the posting page itself is fetched.
const MinDescriptionLength = 200

// Enricher replaces short listing snippets with the full text of the
// posting page. Enrichment is best-effort: on any failure the original
// snippet is kept.
type Enricher struct {
	Options    *fetch.Options
	UseBrowser bool
}

// NewEnricher builds an enricher with production defaults.
func NewEnricher() *Enricher {
	return &Enricher{Options: fetch.DefaultOptions()}
}

// Enrich fills in the posting's description from its URL when the
// snippet is too short. The posting is modified in place.
func (e *Enricher) Enrich(ctx context.Context, job *types.JobPosting) {
	if len(job.Description) >= MinDescriptionLength || job.URL == "" {
		return
	}

	result, err := fetch.URL(ctx, job.URL, e.Options)
	if err != nil {
		log.Printf("[jobs] description fetch failed for %s: %v", job.URL, err)
		return
	}

	platform := fetch.DetectPlatform(job.URL)
	text, err := fetch.ExtractMainText(result.HTML,
		fetch.PlatformContentSelectors(platform),
		fetch.PlatformNoiseSelectors(platform)...)
	if err != nil {
		return
	}

	if e.UseBrowser && fetch.ShouldUseBrowser(text) {
		rendered, berr := fetch.BrowserSimple(ctx, job.URL, false)
		if berr == nil {
			if rtext, rerr := fetch.ExtractMainText(rendered,
				fetch.PlatformContentSelectors(platform),
				fetch.PlatformNoiseSelectors(platform)...); rerr == nil {
				text = rtext
			}
		}
	}

	if len(text) > len(job.Description) {
		job.Description = text
		job.Skills = ExtractSkills(text)
	}
}
