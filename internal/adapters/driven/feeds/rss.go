package feeds

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/custodia-labs/marketbrief/internal/adapters/driven/fetch"
	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driven"
)

// Ensure RSSSource implements the interface.
var _ driven.FeedSource = (*RSSSource)(nil)

// RSSSource reads an RSS or Atom feed.
type RSSSource struct {
	name     string
	category domain.Category
	url      string
	limit    int
	fetcher  *fetch.Fetcher
}

// NewRSSSource creates an RSS adapter for one feed URL.
func NewRSSSource(settings domain.FeedSettings, fetcher *fetch.Fetcher) *RSSSource {
	return &RSSSource{
		name:     settings.Name,
		category: settings.Category,
		url:      settings.URL,
		limit:    settings.EffectiveLimit(),
		fetcher:  fetcher,
	}
}

// Name returns the outlet name.
func (s *RSSSource) Name() string { return s.name }

// Category returns the category tag applied to every item.
func (s *RSSSource) Category() domain.Category { return s.category }

// Fetch downloads and normalises the feed.
func (s *RSSSource) Fetch(ctx context.Context) ([]domain.CandidateItem, error) {
	feed, err := fetchFeed(ctx, s.fetcher, s.name, s.url)
	if err != nil {
		return nil, err
	}
	return convertFeed(feed, s.category, s.limit, func(item *gofeed.Item) (string, string) {
		return item.Title, s.name
	}), nil
}

// fetchFeed downloads and parses a syndication feed.
func fetchFeed(ctx context.Context, fetcher *fetch.Fetcher, name, rawURL string) (*gofeed.Feed, error) {
	var feed *gofeed.Feed
	err := fetcher.Get(ctx, name, rawURL, func(body []byte) error {
		parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
		if err != nil {
			return err
		}
		feed = parsed
		return nil
	})
	return feed, err
}

// headlineFunc returns the raw title and outlet of a feed entry.
type headlineFunc func(item *gofeed.Item) (title, source string)

// convertFeed validates feed entries into candidate items. Entries without a
// title or link are dropped; the result holds at most limit items in feed
// order.
func convertFeed(feed *gofeed.Feed, category domain.Category, limit int, headline headlineFunc) []domain.CandidateItem {
	if feed == nil {
		return []domain.CandidateItem{}
	}
	items := make([]domain.CandidateItem, 0, min(len(feed.Items), limit))
	for _, entry := range feed.Items {
		if len(items) >= limit {
			break
		}
		if entry == nil {
			continue
		}
		rawTitle, source := headline(entry)
		title := CleanText(rawTitle, TitleBudget)
		link := strings.TrimSpace(entry.Link)
		if link == "" && len(entry.Links) > 0 {
			link = strings.TrimSpace(entry.Links[0])
		}
		if title == "" || link == "" {
			continue
		}
		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}
		items = append(items, domain.CandidateItem{
			Title:     title,
			URL:       link,
			Source:    source,
			Category:  category,
			Published: publishedAt(entry),
			Summary:   CleanText(summary, SummaryBudget),
		})
	}
	return items
}

// publishedAt prefers the publish date and falls back to the update date.
func publishedAt(entry *gofeed.Item) *time.Time {
	switch {
	case entry.PublishedParsed != nil:
		t := entry.PublishedParsed.UTC()
		return &t
	case entry.UpdatedParsed != nil:
		t := entry.UpdatedParsed.UTC()
		return &t
	default:
		return nil
	}
}
