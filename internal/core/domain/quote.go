package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is a spot price for a single asset.
type PriceQuote struct {
	// Symbol is the asset identifier (e.g. "BTC").
	Symbol string

	// Price is the last traded price.
	Price decimal.Decimal

	// Currency is the quote currency (e.g. "USD").
	Currency string

	// ChangePercent is the 24h change in percent.
	ChangePercent decimal.Decimal
}

// MarketSession describes the trading session state of an exchange.
type MarketSession string

// Session states.
const (
	SessionPre     MarketSession = "pre"
	SessionOpen    MarketSession = "open"
	SessionPost    MarketSession = "post"
	SessionClosed  MarketSession = "closed"
	SessionUnknown MarketSession = "unknown"
)

// MarketQuote is an index or equity quote with its session context.
type MarketQuote struct {
	// Symbol is the exchange ticker (e.g. "^JKSE").
	Symbol string

	// Name is a display name.
	Name string

	// Price is the last price.
	Price decimal.Decimal

	// Currency is the trading currency.
	Currency string

	// Change is the absolute change from the previous close.
	Change decimal.Decimal

	// ChangePercent is the change from the previous close in percent.
	ChangePercent decimal.Decimal

	// DayLow and DayHigh bound today's range. Invalid when unknown.
	DayLow  decimal.NullDecimal
	DayHigh decimal.NullDecimal

	// Session is the market state at fetch time.
	Session MarketSession

	// AsOf is the timestamp of the quote.
	AsOf time.Time
}
