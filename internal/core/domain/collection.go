package domain

import "time"

// CollectionResult is what a source collector produces for one category.
// Errors are informational: an empty result with errors is still a result.
type CollectionResult struct {
	// Category is the section this result belongs to.
	Category Category

	// Prices holds spot prices (crypto).
	Prices []PriceQuote

	// Quotes holds market quotes (regional market).
	Quotes []MarketQuote

	// Items is ordered newest first.
	Items []CandidateItem

	// Errors lists human-readable failures of individual sources.
	Errors []string
}

// Digest is the payload handed to the delivery collaborator after a run.
type Digest struct {
	// RunID identifies the run that produced the digest.
	RunID string

	// GeneratedAt is when the digest was assembled.
	GeneratedAt time.Time

	// Prices and Quotes are the numeric side-channel facts.
	Prices []PriceQuote
	Quotes []MarketQuote

	// Sections holds the delivered items per category, in collection order.
	Sections map[Category][]VerifiedItem

	// Rejected counts items the verifier marked untrusted.
	Rejected int

	// Errors lists degraded sources and collectors.
	Errors []string
}

// Section returns the verified items for a category.
func (d Digest) Section(c Category) []VerifiedItem {
	return d.Sections[c]
}

// ItemCount returns the number of delivered items across all sections.
func (d Digest) ItemCount() int {
	n := 0
	for _, items := range d.Sections {
		n += len(items)
	}
	return n
}

// Degraded returns the number of degraded sources.
func (d Digest) Degraded() int {
	return len(d.Errors)
}

// RunReport summarises one pipeline pass.
type RunReport struct {
	// RunID is a unique identifier for the run.
	RunID string

	// StartedAt and EndedAt bracket the run.
	StartedAt time.Time
	EndedAt   time.Time

	// Collected is the number of candidate items after local dedup.
	Collected int

	// New is the number of items not seen in previous runs.
	New int

	// Delivered is the number of items handed off.
	Delivered int

	// Rejected is the number of items the verifier marked untrusted.
	Rejected int

	// Pruned is the number of seen records removed by maintenance.
	Pruned int64

	// Errors lists degraded sources.
	Errors []string

	// Handoff is true if the digest reached the delivery collaborator.
	Handoff bool
}

// Duration returns how long the run took.
func (r RunReport) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}
