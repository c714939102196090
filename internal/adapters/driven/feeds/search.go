package feeds

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/custodia-labs/marketbrief/internal/adapters/driven/fetch"
	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driven"
)

// DefaultOutlet labels search results whose title carries no outlet.
const DefaultOutlet = "Google News"

// outletSeparator divides an aggregator headline from its outlet.
const outletSeparator = " - "

// Ensure SearchSource implements the interface.
var _ driven.FeedSource = (*SearchSource)(nil)

// SearchSource queries an aggregator search feed. Aggregator titles carry
// the originating outlet, which becomes the item source.
type SearchSource struct {
	name     string
	category domain.Category
	url      string
	limit    int
	fetcher  *fetch.Fetcher
}

// NewSearchSource creates a search adapter. The query is added to the base
// URL as the q parameter; other parameters on the base URL are kept.
func NewSearchSource(settings domain.FeedSettings, fetcher *fetch.Fetcher) (*SearchSource, error) {
	u, err := url.Parse(settings.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: search url %q: %w", domain.ErrInvalidConfig, settings.URL, err)
	}
	q := u.Query()
	q.Set("q", settings.Query)
	u.RawQuery = q.Encode()

	return &SearchSource{
		name:     settings.Name,
		category: settings.Category,
		url:      u.String(),
		limit:    settings.EffectiveLimit(),
		fetcher:  fetcher,
	}, nil
}

// Name returns the adapter name.
func (s *SearchSource) Name() string { return s.name }

// Category returns the category tag applied to every item.
func (s *SearchSource) Category() domain.Category { return s.category }

// URL returns the request URL including the query.
func (s *SearchSource) URL() string { return s.url }

// Fetch runs the search and splits outlet names off the headlines.
func (s *SearchSource) Fetch(ctx context.Context) ([]domain.CandidateItem, error) {
	feed, err := fetchFeed(ctx, s.fetcher, s.name, s.url)
	if err != nil {
		return nil, err
	}
	return convertFeed(feed, s.category, s.limit, func(item *gofeed.Item) (string, string) {
		return SplitHeadline(item.Title)
	}), nil
}

// SplitHeadline splits "headline - outlet" into its parts. Without the
// pattern the whole string is the title and the outlet is DefaultOutlet.
func SplitHeadline(raw string) (title, source string) {
	raw = strings.TrimSpace(raw)
	i := strings.LastIndex(raw, outletSeparator)
	if i <= 0 {
		return raw, DefaultOutlet
	}
	title = strings.TrimSpace(raw[:i])
	source = strings.TrimSpace(raw[i+len(outletSeparator):])
	if title == "" || source == "" {
		return raw, DefaultOutlet
	}
	return title, source
}
