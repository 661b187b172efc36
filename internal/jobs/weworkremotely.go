package jobs

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/rafael/autoapply/internal/fetch"
	"github.com/rafael/autoapply/internal/types"
)

const (
	wwrBaseURL    = "https://weworkremotely.com"
	wwrSearchPath = "/remote-jobs/search?term="

	// wwrMaxListings bounds how many search results one fetch yields.
	wwrMaxListings = 20
)

// WeWorkRemotely scrapes the We Work Remotely search page. The board
// serves server-rendered HTML for most requests; UseBrowser enables the
// headless fallback for the occasions it does not.
type WeWorkRemotely struct {
	BaseURL    string
	Options    *fetch.Options
	UseBrowser bool
	// Now stamps postings without a parseable time attribute.
	Now func() time.Time
}

// NewWeWorkRemotely builds the adapter with production defaults.
func NewWeWorkRemotely() *WeWorkRemotely {
	return &WeWorkRemotely{
		BaseURL: wwrBaseURL,
		Options: fetch.DefaultOptions(),
		Now:     time.Now,
	}
}

// Name implements Adapter.
func (w *WeWorkRemotely) Name() string { return "WeWorkRemotely" }

// Fetch implements Adapter.
func (w *WeWorkRemotely) Fetch(ctx context.Context, q Query) ([]types.JobPosting, error) {
	searchURL := w.BaseURL + wwrSearchPath + url.QueryEscape(strings.Join(q.Keywords, " "))

	result, err := fetch.URL(ctx, searchURL, w.Options)
	if err != nil {
		return nil, err
	}

	html := result.HTML
	if w.UseBrowser {
		text, _ := fetch.ExtractMainText(html, nil)
		if fetch.ShouldUseBrowser(text) {
			rendered, berr := fetch.BrowserSimple(ctx, searchURL, false)
			if berr == nil {
				html = rendered
			}
		}
	}

	return w.parse(html)
}

func (w *WeWorkRemotely) parse(html string) ([]types.JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &fetch.Error{URL: w.BaseURL, Message: "failed to parse listing HTML", Cause: err}
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}

	var postings []types.JobPosting
	doc.Find("article.feature, li.feature").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := strings.TrimSpace(s.Find("span.title").Text())
		company := strings.TrimSpace(s.Find("span.company").First().Text())
		location := strings.TrimSpace(s.Find("span.region").Text())
		if location == "" {
			location = "Remote"
		}
		description := strings.TrimSpace(s.Find("div.listing-container").Text())

		href, _ := s.Find("a").First().Attr("href")

		postedAt := now()
		if datetime, ok := s.Find("time").Attr("datetime"); ok {
			if t, perr := time.Parse(time.RFC3339, datetime); perr == nil {
				postedAt = t
			}
		}

		// Listings missing any required field are skipped, not failed.
		if title == "" || company == "" || description == "" {
			return true
		}

		postings = append(postings, types.JobPosting{
			Title:          title,
			Company:        company,
			Location:       location,
			Description:    description,
			URL:            w.BaseURL + href,
			Source:         w.Name(),
			PostedAt:       postedAt,
			Skills:         ExtractSkills(description),
			EmploymentType: "Full-time",
		})
		return len(postings) < wwrMaxListings
	})

	return postings, nil
}
