package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"
)

// Fetcher downloads and parses RSS/Atom feeds. Requests go through a shared
// rate limiter so a refresh burst stays polite to feed hosts.
type Fetcher struct {
	client  *http.Client
	parser  *gofeed.Parser
	limiter *rate.Limiter
}

// NewFetcher creates a fetcher. requestsPerSecond <= 0 disables rate limiting.
func NewFetcher(requestsPerSecond float64) *Fetcher {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &Fetcher{
		client:  &http.Client{Timeout: 30 * time.Second},
		parser:  gofeed.NewParser(),
		limiter: limiter,
	}
}

// Fetch downloads one feed and returns its articles, newest first as the
// feed lists them. Summaries are HTML-stripped and truncated; missing
// publish timestamps stay zero.
func (f *Fetcher) Fetch(ctx context.Context, fd Feed) ([]Article, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fd.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request %s: %w", fd.Name, err)
	}
	req.Header.Set("User-Agent", "wirefeedr/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", fd.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", fd.Name, resp.StatusCode)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", fd.Name, err)
	}

	articles := make([]Article, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry.Title == "" {
			continue
		}

		link := entry.Link
		if link == "" && len(entry.Links) > 0 {
			link = entry.Links[0]
		}
		if link == "" {
			continue
		}

		var published time.Time
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}

		author := ""
		if entry.Author != nil {
			author = entry.Author.Name
		} else if len(entry.Authors) > 0 && entry.Authors[0] != nil {
			author = entry.Authors[0].Name
		}

		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}

		articles = append(articles, Article{
			FeedID:    fd.ID,
			Title:     CleanText(entry.Title, 0),
			Link:      link,
			Summary:   CleanText(summary, maxSummaryLen),
			Author:    author,
			Published: published,
		})
	}

	return articles, nil
}
