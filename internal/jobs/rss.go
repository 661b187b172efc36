package jobs

import (
	"context"
	"encoding/xml"
	"regexp"
	"strings"
	"time"

	"github.com/rafael/autoapply/internal/fetch"
	"github.com/rafael/autoapply/internal/types"
)

// rssMaxListings bounds how many feed items one fetch yields.
const rssMaxListings = 20

// RSSFeed reads an RSS 2.0 job feed. Many boards publish one with item
// titles shaped like "Role at Company"; items that do not match keep the
// full title and an empty company.
type RSSFeed struct {
	FeedName string
	FeedURL  string
	Options  *fetch.Options
	Now      func() time.Time
}

// NewRSSFeed builds an adapter for one feed.
func NewRSSFeed(name, feedURL string) *RSSFeed {
	return &RSSFeed{
		FeedName: name,
		FeedURL:  feedURL,
		Options:  fetch.DefaultOptions(),
		Now:      time.Now,
	}
}

// Name implements Adapter.
func (r *RSSFeed) Name() string { return r.FeedName }

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Category    string `xml:"category"`
}

// titleAtRe splits "Senior Developer at Acme" item titles.
var titleAtRe = regexp.MustCompile(`^(.+?)\s+at\s+(.+)$`)

// htmlTagRe strips markup from feed descriptions.
var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// Fetch implements Adapter. Keyword filtering happens client-side since
// most feeds take no query parameters.
func (r *RSSFeed) Fetch(ctx context.Context, q Query) ([]types.JobPosting, error) {
	result, err := fetch.URL(ctx, r.FeedURL, r.Options)
	if err != nil {
		return nil, err
	}

	var doc rssDocument
	if err := xml.Unmarshal([]byte(result.HTML), &doc); err != nil {
		return nil, &fetch.Error{URL: r.FeedURL, Message: "failed to parse RSS feed", Cause: err}
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	var postings []types.JobPosting
	for _, item := range doc.Channel.Items {
		if len(postings) == rssMaxListings {
			break
		}

		title := strings.TrimSpace(item.Title)
		company := ""
		if m := titleAtRe.FindStringSubmatch(title); m != nil {
			title = strings.TrimSpace(m[1])
			company = strings.TrimSpace(m[2])
		}

		description := strings.TrimSpace(htmlTagRe.ReplaceAllString(item.Description, " "))
		if title == "" || description == "" {
			continue
		}
		if !matchesKeywords(title, description, q.Keywords) {
			continue
		}

		postedAt := now()
		for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
			if t, perr := time.Parse(layout, strings.TrimSpace(item.PubDate)); perr == nil {
				postedAt = t
				break
			}
		}

		postings = append(postings, types.JobPosting{
			Title:       title,
			Company:     company,
			Location:    "Remote",
			Description: description,
			URL:         strings.TrimSpace(item.Link),
			Source:      r.Name(),
			PostedAt:    postedAt,
			Skills:      ExtractSkills(description),
		})
	}

	return postings, nil
}

// matchesKeywords reports whether any keyword appears in the title or
// description. An empty keyword list matches everything.
func matchesKeywords(title, description string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	haystack := strings.ToLower(title + " " + description)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
