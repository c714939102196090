package feeds

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Character budgets for sanitised text.
const (
	TitleBudget   = 200
	SummaryBudget = 160
)

// ellipsis marks truncated text.
const ellipsis = "..."

// strict removes every tag and keeps only text.
var strict = bluemonday.StrictPolicy()

// CleanText strips markup, decodes entities, collapses whitespace and
// truncates to budget runes, ending with an ellipsis when cut.
func CleanText(s string, budget int) string {
	if s == "" {
		return ""
	}
	// Escaped markup is decoded before sanitising so it is stripped too.
	text := strict.Sanitize(unescapeAll(s))
	text = html.UnescapeString(text)
	text = strings.Join(strings.Fields(text), " ")
	return truncate(text, budget)
}

// maxUnescape bounds entity decoding of repeatedly escaped input.
const maxUnescape = 3

// unescapeAll decodes entities until the text stops changing.
func unescapeAll(s string) string {
	for i := 0; i < maxUnescape; i++ {
		decoded := html.UnescapeString(s)
		if decoded == s {
			break
		}
		s = decoded
	}
	return s
}

func truncate(s string, budget int) string {
	if budget <= 0 || utf8.RuneCountInString(s) <= budget {
		return s
	}
	keep := budget - utf8.RuneCountInString(ellipsis)
	if keep < 1 {
		keep = 1
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:keep]), " ") + ellipsis
}
