// Package domain defines the core business entities for MarketBrief.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types that flow through a pipeline run:
//
//   - CandidateItem: A news item collected in the current run
//   - VerifiedItem: A candidate annotated with a trust verdict
//   - PriceQuote / MarketQuote: Numeric facts collected alongside news
//   - SeenRecord: The durable memory of an already-surfaced item
//   - Digest: The payload handed to the delivery collaborator
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, shopspring/decimal for money values
//   - Cannot Import: Any internal/ package
package domain
