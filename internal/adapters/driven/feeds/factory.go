package feeds

import (
	"fmt"

	"github.com/custodia-labs/marketbrief/internal/adapters/driven/fetch"
	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driven"
)

// Build creates one adapter per configured feed.
func Build(settings []domain.FeedSettings, fetcher *fetch.Fetcher) ([]driven.FeedSource, error) {
	sources := make([]driven.FeedSource, 0, len(settings))
	for i, fs := range settings {
		src, err := build(fs, fetcher)
		if err != nil {
			return nil, fmt.Errorf("feeds[%d] %s: %w", i, fs.Name, err)
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func build(fs domain.FeedSettings, fetcher *fetch.Fetcher) (driven.FeedSource, error) {
	switch fs.Kind {
	case domain.FeedKindRSS:
		return NewRSSSource(fs, fetcher), nil
	case domain.FeedKindSearch:
		return NewSearchSource(fs, fetcher)
	case domain.FeedKindCryptoCompare:
		return NewCryptoCompareSource(fs, fetcher), nil
	default:
		return nil, fmt.Errorf("%w: unknown feed kind %q", domain.ErrInvalidConfig, fs.Kind)
	}
}

// ByCategory groups sources by their category tag, keeping order.
func ByCategory(sources []driven.FeedSource) map[domain.Category][]driven.FeedSource {
	out := make(map[domain.Category][]driven.FeedSource)
	for _, s := range sources {
		out[s.Category()] = append(out[s.Category()], s)
	}
	return out
}
