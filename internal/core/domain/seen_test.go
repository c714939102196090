package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercases", input: "Bitcoin Hits ATH", expected: "bitcoin hits ath"},
		{name: "trims", input: "  padded  ", expected: "padded"},
		{name: "collapses whitespace", input: "a \t b\n\nc", expected: "a b c"},
		{name: "empty", input: "", expected: ""},
		{name: "whitespace only", input: " \t ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTitle(tt.input))
		})
	}
}

func TestNormalizeTitle_Idempotent(t *testing.T) {
	inputs := []string{
		"Bitcoin Hits ATH",
		"  Markets   RALLY as\tRates fall ",
		"ÉCLAIR  Über  Straße",
		"",
		"already normal",
	}
	for _, in := range inputs {
		once := NormalizeTitle(in)
		assert.Equal(t, once, NormalizeTitle(once), "input %q", in)
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "strips utm params", input: "https://x.com/a?utm_source=x&utm_medium=rss", expected: "https://x.com/a"},
		{name: "keeps other params", input: "https://x.com/a?id=7&utm_campaign=c", expected: "https://x.com/a?id=7"},
		{name: "sorts params", input: "https://x.com/a?b=2&a=1", expected: "https://x.com/a?a=1&b=2"},
		{name: "lowercases host", input: "HTTPS://X.COM/Path", expected: "https://x.com/Path"},
		{name: "drops fragment", input: "https://x.com/a#section", expected: "https://x.com/a"},
		{name: "drops trailing slash", input: "https://x.com/a/", expected: "https://x.com/a"},
		{name: "keeps root slash", input: "https://x.com/", expected: "https://x.com/"},
		{name: "trims whitespace", input: "  https://x.com/a  ", expected: "https://x.com/a"},
		{name: "unparseable falls back", input: "Not A URL", expected: "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeURL(tt.input))
		})
	}
}

func TestContentHash_StableUnderTracking(t *testing.T) {
	plain := ContentHash("https://x.com/a", "Same Title")
	tracked := ContentHash("https://x.com/a?utm_source=x", "Same Title")
	assert.Equal(t, plain, tracked)
}

func TestContentHash_StableUnderTitleVariation(t *testing.T) {
	a := ContentHash("https://x.com/a", "Same Title")
	b := ContentHash("https://X.com/a", "  same   TITLE ")
	assert.Equal(t, a, b)
}

func TestContentHash_PathCaseIsSignificant(t *testing.T) {
	lower := ContentHash("https://x.com/news/abc", "Title")
	upper := ContentHash("https://x.com/news/ABC", "Title")
	assert.NotEqual(t, lower, upper)
	assert.Equal(t, "https://x.com/news/ABC", NormalizeURL("https://X.COM/news/ABC"))
}

func TestContentHash_DistinguishesPairs(t *testing.T) {
	base := ContentHash("https://x.com/a", "Title")
	assert.NotEqual(t, base, ContentHash("https://x.com/b", "Title"))
	assert.NotEqual(t, base, ContentHash("https://x.com/a", "Other"))
	assert.Len(t, base, 64)
}

func TestSeenRecordFor(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	item := CandidateItem{Title: "T", URL: "https://x.com/a", Category: CategoryMarket}

	rec := SeenRecordFor(item, now)

	assert.Equal(t, ContentHash(item.URL, item.Title), rec.ContentHash)
	assert.Equal(t, "T", rec.Title)
	assert.Equal(t, CategoryMarket, rec.Category)
	assert.Equal(t, time.UTC, rec.FirstSeenAt.Location())
	assert.True(t, rec.FirstSeenAt.Equal(now))
}

func TestDedupeByTitle_FirstOccurrenceWins(t *testing.T) {
	items := []CandidateItem{
		{Title: "Fed Holds Rates", Source: "first"},
		{Title: "fed  holds rates ", Source: "second"},
		{Title: "Other", Source: "third"},
	}

	out := DedupeByTitle(items)

	assert.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Source)
	assert.Equal(t, "third", out[1].Source)
}

func TestSortNewestFirst(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	items := []CandidateItem{
		{Title: "undated"},
		{Title: "old", Published: &t1},
		{Title: "new", Published: &t2},
	}

	SortNewestFirst(items)

	assert.Equal(t, "new", items[0].Title)
	assert.Equal(t, "old", items[1].Title)
	assert.Equal(t, "undated", items[2].Title)
}
