package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"time"
)

// SeenRecord is the durable memory of an item surfaced in a previous run.
type SeenRecord struct {
	// ContentHash is the primary key, see ContentHash.
	ContentHash string

	// Title is the original title, kept for inspection.
	Title string

	// Category is the section the item was delivered in.
	Category Category

	// FirstSeenAt is when the item was first recorded.
	FirstSeenAt time.Time
}

// StoreStats reports the size of the deduplication store.
type StoreStats struct {
	// Total is the number of records held.
	Total int

	// Today is the number of records first seen since midnight UTC.
	Today int
}

// trackingParams are query parameters stripped before hashing.
var trackingParams = map[string]bool{
	"utm_campaign": true,
	"utm_source":   true,
	"utm_medium":   true,
	"utm_content":  true,
	"utm_term":     true,
	"fbclid":       true,
	"gclid":        true,
}

// NormalizeTitle lowercases, trims and collapses internal whitespace.
// It is idempotent.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// NormalizeURL canonicalises a link so that tracking parameters and scheme
// or host casing map to the same string. Path and query case are kept:
// servers treat them as case-sensitive.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return strings.ToLower(trimmed)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	query := u.Query()
	for key := range query {
		if trackingParams[strings.ToLower(key)] {
			query.Del(key)
		}
	}
	// Encode sorts by key, so parameter order does not matter.
	u.RawQuery = query.Encode()

	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = ""
	}

	return u.String()
}

// ContentHash fingerprints a (url, title) pair after normalisation.
func ContentHash(rawURL, title string) string {
	sum := sha256.Sum256([]byte(NormalizeURL(rawURL) + "|" + NormalizeTitle(title)))
	return hex.EncodeToString(sum[:])
}

// SeenRecordFor builds the record stored for a candidate item.
func SeenRecordFor(item CandidateItem, now time.Time) SeenRecord {
	return SeenRecord{
		ContentHash: ContentHash(item.URL, item.Title),
		Title:       item.Title,
		Category:    item.Category,
		FirstSeenAt: now.UTC(),
	}
}

// DedupeByTitle folds items by normalised title, keeping the first occurrence.
func DedupeByTitle(items []CandidateItem) []CandidateItem {
	seen := make(map[string]bool, len(items))
	out := make([]CandidateItem, 0, len(items))
	for _, item := range items {
		key := NormalizeTitle(item.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// SortNewestFirst orders items by publish time descending.
// Items without a timestamp sort as the oldest.
func SortNewestFirst(items []CandidateItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedOrZero().After(items[j].PublishedOrZero())
	})
}
