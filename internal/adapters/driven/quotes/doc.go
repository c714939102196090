// Package quotes adapts price and market APIs into domain quotes.
//
// Quotes are side-channel facts: they follow the same retry and partial
// failure discipline as news feeds but are never deduplicated. Amounts are
// decoded straight into shopspring/decimal values so no float rounding
// reaches the digest.
package quotes
