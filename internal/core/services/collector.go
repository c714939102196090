package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driven"
	"github.com/custodia-labs/marketbrief/internal/logger"
)

// CategoryCollector produces the collection result for one category.
type CategoryCollector interface {
	// Category returns the category this collector serves.
	Category() domain.Category

	// Collect runs every source of the category. It never fails as a whole;
	// source failures are reported in CollectionResult.Errors.
	Collect(ctx context.Context) domain.CollectionResult
}

// Ensure Collector implements the interface.
var _ CategoryCollector = (*Collector)(nil)

// CollectorConfig wires the sources of one category.
type CollectorConfig struct {
	// Category tags the result.
	Category domain.Category

	// Caps bounds the number of items returned.
	Caps domain.CapPolicy

	// Feeds are the news sources.
	Feeds []driven.FeedSource

	// Prices and Markets are optional numeric sources.
	Prices  []driven.PriceSource
	Markets []driven.MarketSource
}

// Collector runs a category's sources concurrently and merges their output.
type Collector struct {
	cfg CollectorConfig
	now func() time.Time
}

// NewCollector creates a collector for one category.
func NewCollector(cfg CollectorConfig) *Collector {
	return &Collector{
		cfg: cfg,
		now: time.Now,
	}
}

// Category returns the category this collector serves.
func (c *Collector) Category() domain.Category {
	return c.cfg.Category
}

// branch is the output of a single source.
type branch struct {
	items  []domain.CandidateItem
	prices []domain.PriceQuote
	quotes []domain.MarketQuote
}

// Collect runs all sources, deduplicates by normalised title, sorts newest
// first and applies the category cap.
func (c *Collector) Collect(ctx context.Context) domain.CollectionResult {
	tasks, names := c.tasks()
	results := SettleAll(ctx, tasks)

	result := domain.CollectionResult{Category: c.cfg.Category}
	var items []domain.CandidateItem
	for i, r := range results {
		if r.Err != nil {
			msg := sourceErrorMessage(names[i], r.Err)
			logger.Warn("[%s] %s", c.cfg.Category, msg)
			result.Errors = append(result.Errors, msg)
			continue
		}
		items = append(items, r.Value.items...)
		result.Prices = append(result.Prices, r.Value.prices...)
		result.Quotes = append(result.Quotes, r.Value.quotes...)
	}

	items = domain.DedupeByTitle(items)
	domain.SortNewestFirst(items)
	if limit := c.cfg.Caps.Limit(c.now()); limit >= 0 && len(items) > limit {
		items = items[:limit]
	}
	result.Items = items

	logger.Debug("[%s] collected %d items, %d prices, %d quotes, %d errors",
		c.cfg.Category, len(result.Items), len(result.Prices), len(result.Quotes), len(result.Errors))

	return result
}

// tasks builds one fan-out branch per source, with the source names in
// the same order for error reporting.
func (c *Collector) tasks() ([]Task[branch], []string) {
	var tasks []Task[branch]
	var names []string

	for _, feed := range c.cfg.Feeds {
		tasks = append(tasks, func(ctx context.Context) (branch, error) {
			items, err := feed.Fetch(ctx)
			return branch{items: items}, err
		})
		names = append(names, feed.Name())
	}
	for _, src := range c.cfg.Prices {
		tasks = append(tasks, func(ctx context.Context) (branch, error) {
			prices, err := src.FetchPrices(ctx)
			return branch{prices: prices}, err
		})
		names = append(names, src.Name())
	}
	for _, src := range c.cfg.Markets {
		tasks = append(tasks, func(ctx context.Context) (branch, error) {
			quotes, err := src.FetchQuotes(ctx)
			return branch{quotes: quotes}, err
		})
		names = append(names, src.Name())
	}

	return tasks, names
}

// sourceErrorMessage renders a failure, labelling it with the source name
// unless the error already carries one.
func sourceErrorMessage(name string, err error) string {
	var se *domain.SourceError
	if errors.As(err, &se) {
		return se.Error()
	}
	return fmt.Sprintf("%s: %v", name, err)
}
