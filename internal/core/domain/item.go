package domain

import "time"

// Category tags every item with the digest section it belongs to.
// The tag is carried end-to-end and never re-derived.
type Category string

// Known categories.
const (
	// CategoryCrypto covers cryptocurrency news and prices.
	CategoryCrypto Category = "crypto"

	// CategoryMarket covers the regional stock market.
	CategoryMarket Category = "market"

	// CategoryGeopolitical covers world and geopolitical news.
	CategoryGeopolitical Category = "geopolitical"
)

// AllCategories returns the categories in digest order.
func AllCategories() []Category {
	return []Category{CategoryCrypto, CategoryMarket, CategoryGeopolitical}
}

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategoryCrypto, CategoryMarket, CategoryGeopolitical:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// Label returns a human-readable section title.
func (c Category) Label() string {
	switch c {
	case CategoryCrypto:
		return "Crypto"
	case CategoryMarket:
		return "Market"
	case CategoryGeopolitical:
		return "Geopolitics"
	default:
		return "Unknown"
	}
}

// CandidateItem is one piece of news collected in the current run.
// It is immutable once created by a feed adapter.
type CandidateItem struct {
	// Title is the sanitised headline.
	Title string

	// URL links to the article.
	URL string

	// Source is the outlet name.
	Source string

	// Category is the digest section.
	Category Category

	// Published is when the item was published, nil if unknown.
	Published *time.Time

	// Summary is an optional sanitised excerpt.
	Summary string
}

// PublishedOrZero returns the publish time, or the zero time when absent.
func (c CandidateItem) PublishedOrZero() time.Time {
	if c.Published == nil {
		return time.Time{}
	}
	return *c.Published
}

// Verdict is the trust decision returned by the evaluator.
type Verdict string

// Verdict values.
const (
	VerdictPass      Verdict = "PASS"
	VerdictUncertain Verdict = "UNCERTAIN"
	VerdictFail      Verdict = "FAIL"
)

// IsValid returns true if the verdict is recognised.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictPass, VerdictUncertain, VerdictFail:
		return true
	default:
		return false
	}
}

// VerifiedItem is a candidate annotated with a trust verdict.
type VerifiedItem struct {
	CandidateItem

	// Trusted is false only for items the evaluator (or fallback) rejected.
	Trusted bool

	// Note is an optional caveat shown next to the item.
	Note string
}
