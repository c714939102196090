package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/marketbrief/internal/adapters/driven/fetch"
	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driven"
)

// knownSymbols maps CoinGecko ids to tickers.
var knownSymbols = map[string]string{
	"bitcoin":     "BTC",
	"ethereum":    "ETH",
	"solana":      "SOL",
	"binancecoin": "BNB",
	"ripple":      "XRP",
	"tether":      "USDT",
}

// Ensure CoinGeckoSource implements the interface.
var _ driven.PriceSource = (*CoinGeckoSource)(nil)

// CoinGeckoSource reads spot prices from the CoinGecko simple price API.
type CoinGeckoSource struct {
	url      string
	coins    []string
	currency string
	fetcher  *fetch.Fetcher
}

// NewCoinGeckoSource creates a price adapter for the configured coins.
func NewCoinGeckoSource(settings domain.CryptoSettings, fetcher *fetch.Fetcher) (*CoinGeckoSource, error) {
	u, err := url.Parse(settings.PriceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: crypto.price_url: %w", domain.ErrInvalidConfig, err)
	}
	currency := strings.ToLower(settings.VsCurrency)
	if currency == "" {
		currency = "usd"
	}
	q := u.Query()
	q.Set("ids", strings.Join(settings.Coins, ","))
	q.Set("vs_currencies", currency)
	q.Set("include_24hr_change", "true")
	u.RawQuery = q.Encode()

	return &CoinGeckoSource{
		url:      u.String(),
		coins:    settings.Coins,
		currency: currency,
		fetcher:  fetcher,
	}, nil
}

// Name returns the adapter name.
func (s *CoinGeckoSource) Name() string { return "CoinGecko" }

// FetchPrices returns one quote per configured coin, in configured order.
// Coins missing from the response are skipped.
func (s *CoinGeckoSource) FetchPrices(ctx context.Context) ([]domain.PriceQuote, error) {
	var body map[string]map[string]decimal.Decimal
	err := s.fetcher.Get(ctx, s.Name(), s.url, func(b []byte) error {
		return json.Unmarshal(b, &body)
	})
	if err != nil {
		return nil, err
	}

	quotes := make([]domain.PriceQuote, 0, len(s.coins))
	for _, coin := range s.coins {
		fields, ok := body[coin]
		if !ok {
			continue
		}
		price, ok := fields[s.currency]
		if !ok {
			continue
		}
		quotes = append(quotes, domain.PriceQuote{
			Symbol:        Symbol(coin),
			Price:         price,
			Currency:      strings.ToUpper(s.currency),
			ChangePercent: fields[s.currency+"_24h_change"].Round(2),
		})
	}
	return quotes, nil
}

// Symbol returns the ticker for a CoinGecko id.
func Symbol(coinID string) string {
	if sym, ok := knownSymbols[coinID]; ok {
		return sym
	}
	return strings.ToUpper(coinID)
}
