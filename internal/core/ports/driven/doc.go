// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - FeedSource: Fetches and normalises one news source
//   - SeenStore: Durable memory of already-delivered items
//   - Deliverer: Hands the digest to the end-user channel
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PriceSource, MarketSource: Numeric facts collected alongside news
//   - Evaluator: AI trust evaluation. Without it, the tier-1 allow-list decides.
//   - PromptStore: Custom prompt templates. Without it, embedded defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
