package jobs

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rafael/autoapply/internal/fetch"
	"github.com/rafael/autoapply/internal/types"
)

const (
	remotiveAPIURL = "https://remotive.com/api/remote-jobs"

	// remotiveMaxListings bounds how many API results one fetch yields.
	remotiveMaxListings = 20
)

// Remotive queries the Remotive public JSON API.
type Remotive struct {
	BaseURL string
	Options *fetch.Options
	Now     func() time.Time
}

// NewRemotive builds the adapter with production defaults.
func NewRemotive() *Remotive {
	return &Remotive{
		BaseURL: remotiveAPIURL,
		Options: fetch.DefaultOptions(),
		Now:     time.Now,
	}
}

// Name implements Adapter.
func (r *Remotive) Name() string { return "Remotive" }

// remotiveJob mirrors one entry of the API response.
type remotiveJob struct {
	Title           string `json:"title"`
	CompanyName     string `json:"company_name"`
	Location        string `json:"candidate_required_location"`
	Description     string `json:"description"`
	URL             string `json:"url"`
	PublicationDate string `json:"publication_date"`
	Salary          string `json:"salary"`
	JobType         string `json:"job_type"`
	ExperienceLevel string `json:"experience_level"`
}

// Fetch implements Adapter.
func (r *Remotive) Fetch(ctx context.Context, q Query) ([]types.JobPosting, error) {
	apiURL := r.BaseURL

	params := url.Values{}
	if len(q.Keywords) > 0 {
		params.Set("search", strings.Join(q.Keywords, " "))
	}
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	var payload struct {
		Jobs []remotiveJob `json:"jobs"`
	}
	if err := fetch.JSON(ctx, apiURL, r.Options, &payload); err != nil {
		return nil, err
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	entries := payload.Jobs
	if len(entries) > remotiveMaxListings {
		entries = entries[:remotiveMaxListings]
	}

	postings := make([]types.JobPosting, 0, len(entries))
	for _, job := range entries {
		// The API serves descriptions as HTML.
		description := strings.TrimSpace(htmlTagRe.ReplaceAllString(job.Description, " "))
		location := job.Location
		if location == "" {
			location = "Remote"
		}
		employmentType := job.JobType
		if employmentType == "" {
			employmentType = "Full-time"
		}

		postedAt := now()
		// The API publishes "2025-08-30T12:00:00" without a zone.
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, job.PublicationDate); err == nil {
				postedAt = t
				break
			}
		}

		postings = append(postings, types.JobPosting{
			Title:           job.Title,
			Company:         job.CompanyName,
			Location:        location,
			Description:     description,
			URL:             job.URL,
			Source:          r.Name(),
			PostedAt:        postedAt,
			Skills:          ExtractSkills(description),
			Salary:          job.Salary,
			EmploymentType:  employmentType,
			ExperienceLevel: job.ExperienceLevel,
		})
	}

	return postings, nil
}
