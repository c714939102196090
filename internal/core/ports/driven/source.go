package driven

import (
	"context"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
)

// FeedSource fetches one external news source and normalises it into
// candidate items. Implementations validate every external field at the
// boundary; nothing unvalidated flows past Fetch.
type FeedSource interface {
	// Name returns the human-readable source name used in error reports.
	Name() string

	// Category returns the tag stamped on every produced item.
	Category() domain.Category

	// Fetch returns a bounded, ordered sequence of items or a labelled error.
	Fetch(ctx context.Context) ([]domain.CandidateItem, error)
}

// PriceSource fetches spot prices.
type PriceSource interface {
	// Name returns the human-readable source name.
	Name() string

	// FetchPrices returns the current prices.
	FetchPrices(ctx context.Context) ([]domain.PriceQuote, error)
}

// MarketSource fetches exchange quotes.
type MarketSource interface {
	// Name returns the human-readable source name.
	Name() string

	// FetchQuotes returns the current quotes.
	FetchQuotes(ctx context.Context) ([]domain.MarketQuote, error)
}
