package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driven"
	"github.com/custodia-labs/marketbrief/internal/logger"
	"github.com/custodia-labs/marketbrief/internal/retry"
)

// FallbackNote marks items the allow-list could not vouch for.
const FallbackNote = "verification unavailable"

// uncertainPrefix is prepended to the reason of UNCERTAIN verdicts.
const uncertainPrefix = "unverified: "

// DefaultVerifyPrompt is used when no template is configured.
const DefaultVerifyPrompt = driven.DefaultVerifyPrompt

// ItemVerifier resolves a trust verdict for each candidate item.
type ItemVerifier interface {
	// Verify returns one VerifiedItem per candidate, in input order.
	Verify(ctx context.Context, items []domain.CandidateItem) []domain.VerifiedItem
}

// Ensure Verifier implements the interface.
var _ ItemVerifier = (*Verifier)(nil)

// Verifier sends candidate batches to an evaluator and falls back to a
// tier-1 allow-list when the evaluator is unavailable.
type Verifier struct {
	evaluator driven.Evaluator
	prompts   driven.PromptStore
	allowList []string
	policy    retry.Policy
}

// NewVerifier creates a verification service.
// The evaluator and prompts parameters are optional (can be nil). Without an
// evaluator every batch is resolved by the allow-list.
func NewVerifier(
	evaluator driven.Evaluator,
	prompts driven.PromptStore,
	settings domain.VerificationSettings,
) *Verifier {
	return &Verifier{
		evaluator: evaluator,
		prompts:   prompts,
		allowList: settings.AllowList,
		policy:    retry.Policy{Attempts: settings.Retries, Backoff: settings.Backoff},
	}
}

// Verify judges the whole batch with a single evaluator request.
func (v *Verifier) Verify(ctx context.Context, items []domain.CandidateItem) []domain.VerifiedItem {
	if len(items) == 0 {
		return []domain.VerifiedItem{}
	}

	if v.evaluator == nil {
		logger.Debug("No evaluator configured, using allow-list for %d items", len(items))
		return Fallback(items, v.allowList)
	}

	prompt := BuildPrompt(v.template(), items)

	var response string
	attempts, err := v.policy.Do(ctx, func(ctx context.Context) error {
		out, err := v.evaluator.Evaluate(ctx, prompt)
		if err != nil {
			return err
		}
		response = out
		return nil
	})
	if err != nil {
		logger.Warn("%v: %s after %d attempts: %v",
			domain.ErrEvaluatorUnavailable, v.evaluator.Name(), attempts, err)
		return Fallback(items, v.allowList)
	}

	verdicts, err := ParseVerdicts(response)
	if err != nil {
		logger.Warn("Unparseable evaluator output, defaulting to PASS: %v", err)
	}
	return ApplyVerdicts(items, verdicts)
}

// template returns the configured prompt, or the default. The store is
// reloaded first so edits on disk apply to the next run.
func (v *Verifier) template() string {
	if v.prompts == nil {
		return DefaultVerifyPrompt
	}
	v.prompts.Reload()
	tmpl, err := v.prompts.Load(driven.PromptVerify)
	if err != nil || !strings.Contains(tmpl, "%s") {
		logger.Debug("Using default verify prompt (load error: %v)", err)
		return DefaultVerifyPrompt
	}
	return tmpl
}

// BuildPrompt enumerates items with 1-based indices into the template.
func BuildPrompt(template string, items []domain.CandidateItem) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. [%s] %s\n   source: %s\n   url: %s\n",
			i+1, item.Category, item.Title, item.Source, item.URL)
	}
	return fmt.Sprintf(template, b.String())
}

// Judgement is one evaluator verdict.
type Judgement struct {
	Index   int            `json:"index"`
	Verdict domain.Verdict `json:"verdict"`
	Reason  string         `json:"reason"`
}

// ParseVerdicts extracts the first bracketed JSON array of verdicts from
// free text and indexes the verdicts by their 1-based position. Each '['
// is tried in order and text after the array is ignored. A response
// without a parseable array yields an empty map and an error; callers
// treat every item as PASS in that case.
func ParseVerdicts(response string) (map[int]Judgement, error) {
	judgements, found := firstArray(response)
	if !found {
		return map[int]Judgement{}, fmt.Errorf("%w: no JSON verdict array in response", domain.ErrInvalidInput)
	}

	out := make(map[int]Judgement, len(judgements))
	for _, j := range judgements {
		j.Verdict = domain.Verdict(strings.ToUpper(strings.TrimSpace(string(j.Verdict))))
		if _, dup := out[j.Index]; dup {
			continue
		}
		out[j.Index] = j
	}
	return out, nil
}

// firstArray decodes the first non-empty verdict array in text. An empty
// array is only returned when no non-empty one follows it.
func firstArray(text string) ([]Judgement, bool) {
	found := false
	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}
		var judgements []Judgement
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&judgements); err != nil {
			continue
		}
		if len(judgements) > 0 {
			return judgements, true
		}
		found = true
	}
	return nil, found
}

// ApplyVerdicts maps verdicts onto items. Missing indices and unknown
// verdicts resolve to PASS.
func ApplyVerdicts(items []domain.CandidateItem, verdicts map[int]Judgement) []domain.VerifiedItem {
	out := make([]domain.VerifiedItem, len(items))
	for i, item := range items {
		vi := domain.VerifiedItem{CandidateItem: item, Trusted: true}
		if j, ok := verdicts[i+1]; ok {
			switch j.Verdict {
			case domain.VerdictFail:
				vi.Trusted = false
				vi.Note = j.Reason
			case domain.VerdictUncertain:
				vi.Note = uncertainPrefix + j.Reason
			}
		}
		out[i] = vi
	}
	return out
}

// Fallback marks an item trusted iff its source contains an allow-listed
// outlet, case-insensitively. It is pure.
func Fallback(items []domain.CandidateItem, allowList []string) []domain.VerifiedItem {
	out := make([]domain.VerifiedItem, len(items))
	for i, item := range items {
		vi := domain.VerifiedItem{CandidateItem: item}
		if allowListed(item.Source, allowList) {
			vi.Trusted = true
		} else {
			vi.Note = FallbackNote
		}
		out[i] = vi
	}
	return out
}

func allowListed(source string, allowList []string) bool {
	s := strings.ToLower(source)
	if s == "" {
		return false
	}
	for _, outlet := range allowList {
		o := strings.ToLower(strings.TrimSpace(outlet))
		if o != "" && strings.Contains(s, o) {
			return true
		}
	}
	return false
}
