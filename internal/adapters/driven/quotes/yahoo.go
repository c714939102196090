package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/marketbrief/internal/adapters/driven/fetch"
	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driven"
	"github.com/custodia-labs/marketbrief/internal/logger"
)

// Ensure YahooSource implements the interface.
var _ driven.MarketSource = (*YahooSource)(nil)

// YahooSource reads index quotes from the Yahoo Finance chart API.
type YahooSource struct {
	baseURL string
	symbols []string
	fetcher *fetch.Fetcher
	now     func() time.Time
}

// NewYahooSource creates a market adapter for the configured symbols.
func NewYahooSource(settings domain.MarketSettings, fetcher *fetch.Fetcher) *YahooSource {
	return &YahooSource{
		baseURL: strings.TrimRight(settings.QuoteURL, "/") + "/",
		symbols: settings.Symbols,
		fetcher: fetcher,
		now:     time.Now,
	}
}

// Name returns the adapter name.
func (s *YahooSource) Name() string { return "Yahoo Finance" }

type chartPeriod struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

func (p *chartPeriod) contains(t int64) bool {
	return p != nil && p.Start <= t && t < p.End
}

type chartMeta struct {
	Symbol             string              `json:"symbol"`
	Currency           string              `json:"currency"`
	LongName           string              `json:"longName"`
	ShortName          string              `json:"shortName"`
	RegularMarketPrice decimal.Decimal     `json:"regularMarketPrice"`
	ChartPreviousClose decimal.NullDecimal `json:"chartPreviousClose"`
	PreviousClose      decimal.NullDecimal `json:"previousClose"`
	DayHigh            decimal.NullDecimal `json:"regularMarketDayHigh"`
	DayLow             decimal.NullDecimal `json:"regularMarketDayLow"`
	RegularMarketTime  int64               `json:"regularMarketTime"`
	TradingPeriod      *struct {
		Pre     *chartPeriod `json:"pre"`
		Regular *chartPeriod `json:"regular"`
		Post    *chartPeriod `json:"post"`
	} `json:"currentTradingPeriod"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta chartMeta `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchQuotes fetches every symbol. A symbol that fails is logged and
// skipped; the call fails only when every symbol fails.
func (s *YahooSource) FetchQuotes(ctx context.Context) ([]domain.MarketQuote, error) {
	quotes := make([]domain.MarketQuote, 0, len(s.symbols))
	var errs []error
	for _, symbol := range s.symbols {
		q, err := s.fetchOne(ctx, symbol)
		if err != nil {
			logger.Warn("%s: %s: %v", s.Name(), symbol, err)
			errs = append(errs, err)
			continue
		}
		quotes = append(quotes, q)
	}
	if len(quotes) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return quotes, nil
}

func (s *YahooSource) fetchOne(ctx context.Context, symbol string) (domain.MarketQuote, error) {
	endpoint := s.baseURL + url.PathEscape(symbol) + "?interval=1d&range=1d"

	var resp chartResponse
	err := s.fetcher.Get(ctx, s.Name(), endpoint, func(b []byte) error {
		if err := json.Unmarshal(b, &resp); err != nil {
			return err
		}
		if resp.Chart.Error != nil {
			return fmt.Errorf("%s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
		}
		if len(resp.Chart.Result) == 0 {
			return fmt.Errorf("no chart result for %s", symbol)
		}
		return nil
	})
	if err != nil {
		return domain.MarketQuote{}, err
	}

	return s.toQuote(symbol, resp.Chart.Result[0].Meta), nil
}

func (s *YahooSource) toQuote(symbol string, m chartMeta) domain.MarketQuote {
	q := domain.MarketQuote{
		Symbol:   symbol,
		Name:     m.ShortName,
		Price:    m.RegularMarketPrice,
		Currency: m.Currency,
		DayLow:   m.DayLow,
		DayHigh:  m.DayHigh,
		Session:  s.session(m),
	}
	if m.Symbol != "" {
		q.Symbol = m.Symbol
	}
	if m.LongName != "" {
		q.Name = m.LongName
	}
	if m.RegularMarketTime > 0 {
		q.AsOf = time.Unix(m.RegularMarketTime, 0).UTC()
	}

	prev := m.ChartPreviousClose
	if !prev.Valid {
		prev = m.PreviousClose
	}
	if prev.Valid && !prev.Decimal.IsZero() {
		q.Change = q.Price.Sub(prev.Decimal).Round(2)
		q.ChangePercent = q.Price.Sub(prev.Decimal).Div(prev.Decimal).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return q
}

// session derives the market state from the current trading periods.
func (s *YahooSource) session(m chartMeta) domain.MarketSession {
	if m.TradingPeriod == nil {
		return domain.SessionUnknown
	}
	now := s.now().Unix()
	switch {
	case m.TradingPeriod.Regular.contains(now):
		return domain.SessionOpen
	case m.TradingPeriod.Pre.contains(now):
		return domain.SessionPre
	case m.TradingPeriod.Post.contains(now):
		return domain.SessionPost
	default:
		return domain.SessionClosed
	}
}
