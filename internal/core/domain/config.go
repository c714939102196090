package domain

import (
	"fmt"
	"time"

	// Embedded zone database so market time zones resolve on minimal hosts.
	_ "time/tzdata"
)

// FeedKind selects the adapter used for a configured feed.
type FeedKind string

// Feed kinds.
const (
	// FeedKindRSS is a plain RSS or Atom syndication feed.
	FeedKindRSS FeedKind = "rss"

	// FeedKindSearch is an aggregator search feed with "headline - outlet" titles.
	FeedKindSearch FeedKind = "search"

	// FeedKindCryptoCompare is the CryptoCompare JSON news API.
	FeedKindCryptoCompare FeedKind = "cryptocompare"
)

// IsValid returns true if the feed kind is recognised.
func (k FeedKind) IsValid() bool {
	switch k {
	case FeedKindRSS, FeedKindSearch, FeedKindCryptoCompare:
		return true
	default:
		return false
	}
}

// Per-adapter output bounds.
const (
	MinFeedLimit     = 5
	MaxFeedLimit     = 15
	DefaultFeedLimit = 10
)

// FeedSettings configures one feed adapter.
type FeedSettings struct {
	// Name is the display name, used as the source when items carry none.
	Name string

	// Kind selects the adapter.
	Kind FeedKind

	// Category tags every item produced by the feed.
	Category Category

	// URL is the feed endpoint (base URL for search feeds).
	URL string

	// Query is the search query for search feeds.
	Query string

	// Limit caps the items the adapter returns.
	Limit int
}

// EffectiveLimit clamps Limit into the allowed range.
func (f FeedSettings) EffectiveLimit() int {
	switch {
	case f.Limit == 0:
		return DefaultFeedLimit
	case f.Limit < MinFeedLimit:
		return MinFeedLimit
	case f.Limit > MaxFeedLimit:
		return MaxFeedLimit
	default:
		return f.Limit
	}
}

// FetchSettings configures network access to external sources.
type FetchSettings struct {
	// Timeout bounds each request.
	Timeout time.Duration

	// Retries is the number of attempts per source.
	Retries int

	// Backoff is the base delay; attempt n waits n*Backoff.
	Backoff time.Duration

	// UserAgent identifies the client.
	UserAgent string

	// RatePerHost limits requests per second to a single host. Zero disables.
	RatePerHost float64
}

// VerificationSettings configures the verification service.
type VerificationSettings struct {
	// Retries is the number of evaluator attempts.
	Retries int

	// Backoff is the base delay between evaluator attempts.
	Backoff time.Duration

	// AllowList holds tier-1 outlets trusted when the evaluator is down.
	AllowList []string

	// PromptDir holds user-editable prompt templates.
	PromptDir string
}

// CryptoSettings configures the crypto category.
type CryptoSettings struct {
	Cap        int
	Coins      []string
	VsCurrency string
	PriceURL   string
}

// MarketSettings configures the regional market category.
type MarketSettings struct {
	// Timezone is the IANA zone of the exchange, used for weekend detection.
	Timezone   string
	WeekdayCap int
	WeekendCap int
	Symbols    []string
	QuoteURL   string
}

// GeopoliticalSettings configures the geopolitical category.
type GeopoliticalSettings struct {
	Cap int
}

// ScheduleSettings configures the serve loop.
type ScheduleSettings struct {
	// Interval is the time between the end of one pass and the next tick.
	Interval time.Duration

	// RunOnStart triggers a pass as soon as the loop starts.
	RunOnStart bool
}

// Config is the immutable application configuration.
// It is loaded once and passed by value into every component.
type Config struct {
	// DataDir holds the deduplication store.
	DataDir string

	// RetentionDays is how long seen records are kept.
	RetentionDays int

	// RunTimeout bounds one pipeline pass.
	RunTimeout time.Duration

	Fetch        FetchSettings
	Evaluator    EvaluatorSettings
	Verification VerificationSettings
	Crypto       CryptoSettings
	Market       MarketSettings
	Geopolitical GeopoliticalSettings
	Feeds        []FeedSettings
	Schedule     ScheduleSettings
}

// Default values.
const (
	DefaultRetentionDays = 7
	DefaultRunTimeout    = 5 * time.Minute
	DefaultFetchTimeout  = 12 * time.Second
	DefaultFetchRetries  = 3
	DefaultFetchBackoff  = time.Second
	DefaultUserAgent     = "marketbrief/1.0 (+https://github.com/custodia-labs/marketbrief)"
)

// DefaultAllowList returns the tier-1 outlets used by the verification fallback.
func DefaultAllowList() []string {
	return []string{
		"Reuters",
		"Bloomberg",
		"Associated Press",
		"AP News",
		"BBC",
		"Financial Times",
		"Wall Street Journal",
		"CNBC",
		"Al Jazeera",
		"Nikkei",
		"The Guardian",
		"CoinDesk",
		"The Block",
		"Kontan",
		"Bisnis",
		"Antara",
	}
}

// DefaultFeeds returns the built-in feed set.
func DefaultFeeds() []FeedSettings {
	return []FeedSettings{
		{Name: "CoinDesk", Kind: FeedKindRSS, Category: CategoryCrypto, URL: "https://www.coindesk.com/arc/outboundfeeds/rss/"},
		{Name: "Cointelegraph", Kind: FeedKindRSS, Category: CategoryCrypto, URL: "https://cointelegraph.com/rss"},
		{Name: "CryptoCompare", Kind: FeedKindCryptoCompare, Category: CategoryCrypto, URL: "https://min-api.cryptocompare.com/data/v2/news/?lang=EN"},
		{Name: "Google News", Kind: FeedKindSearch, Category: CategoryMarket, URL: "https://news.google.com/rss/search", Query: "IHSG saham"},
		{Name: "CNBC Indonesia", Kind: FeedKindRSS, Category: CategoryMarket, URL: "https://www.cnbcindonesia.com/market/rss"},
		{Name: "BBC World", Kind: FeedKindRSS, Category: CategoryGeopolitical, URL: "https://feeds.bbci.co.uk/news/world/rss.xml"},
		{Name: "Al Jazeera", Kind: FeedKindRSS, Category: CategoryGeopolitical, URL: "https://www.aljazeera.com/xml/rss/all.xml"},
		{Name: "Google News", Kind: FeedKindSearch, Category: CategoryGeopolitical, URL: "https://news.google.com/rss/search", Query: "geopolitics"},
	}
}

// DefaultConfig returns a configuration that works without a config file.
func DefaultConfig() Config {
	return Config{
		RetentionDays: DefaultRetentionDays,
		RunTimeout:    DefaultRunTimeout,
		Fetch: FetchSettings{
			Timeout:     DefaultFetchTimeout,
			Retries:     DefaultFetchRetries,
			Backoff:     DefaultFetchBackoff,
			UserAgent:   DefaultUserAgent,
			RatePerHost: 2,
		},
		Evaluator: EvaluatorSettings{
			Provider: AIProviderNone,
			Timeout:  60 * time.Second,
		},
		Verification: VerificationSettings{
			Retries:   2,
			Backoff:   2 * time.Second,
			AllowList: DefaultAllowList(),
		},
		Crypto: CryptoSettings{
			Cap:        8,
			Coins:      []string{"bitcoin", "ethereum"},
			VsCurrency: "usd",
			PriceURL:   "https://api.coingecko.com/api/v3/simple/price",
		},
		Market: MarketSettings{
			Timezone:   "Asia/Jakarta",
			WeekdayCap: 10,
			WeekendCap: 5,
			Symbols:    []string{"^JKSE"},
			QuoteURL:   "https://query1.finance.yahoo.com/v8/finance/chart/",
		},
		Geopolitical: GeopoliticalSettings{Cap: 8},
		Feeds:        DefaultFeeds(),
		Schedule:     ScheduleSettings{Interval: 6 * time.Hour, RunOnStart: true},
	}
}

// Location returns the market time zone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Market.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CapPolicy returns the item cap for a category.
func (c Config) CapPolicy(cat Category) CapPolicy {
	switch cat {
	case CategoryCrypto:
		return FixedCap(c.Crypto.Cap)
	case CategoryMarket:
		return CapPolicy{Weekday: c.Market.WeekdayCap, Weekend: c.Market.WeekendCap, Location: c.Location()}
	case CategoryGeopolitical:
		return FixedCap(c.Geopolitical.Cap)
	default:
		return FixedCap(0)
	}
}

// Validate checks the configuration for values no component can work with.
func (c Config) Validate() error {
	if c.RetentionDays <= 0 {
		return fmt.Errorf("%w: retention_days must be positive", ErrInvalidConfig)
	}
	if c.Fetch.Retries <= 0 {
		return fmt.Errorf("%w: fetch.retries must be positive", ErrInvalidConfig)
	}
	if !c.Evaluator.Provider.IsValid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrUnsupportedProvider, c.Evaluator.Provider)
	}
	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("%w: market.timezone: %w", ErrInvalidConfig, err)
	}
	for _, cat := range AllCategories() {
		p := c.CapPolicy(cat)
		if p.Weekday <= 0 || p.Weekend <= 0 {
			return fmt.Errorf("%w: %s cap must be positive", ErrInvalidConfig, cat)
		}
	}
	for i, f := range c.Feeds {
		if !f.Kind.IsValid() {
			return fmt.Errorf("%w: feeds[%d]: unknown kind %q", ErrInvalidConfig, i, f.Kind)
		}
		if !f.Category.IsValid() {
			return fmt.Errorf("%w: feeds[%d]: unknown category %q", ErrInvalidConfig, i, f.Category)
		}
		if f.URL == "" {
			return fmt.Errorf("%w: feeds[%d]: url is required", ErrInvalidConfig, i)
		}
		if f.Kind == FeedKindSearch && f.Query == "" {
			return fmt.Errorf("%w: feeds[%d]: search feeds need a query", ErrInvalidConfig, i)
		}
	}
	return nil
}
