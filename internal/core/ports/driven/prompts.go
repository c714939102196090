package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names.
const (
	// PromptVerify asks the evaluator to judge a batch of news items.
	// The template expects a single %s placeholder for the enumerated items.
	PromptVerify = "verify"
)

// DefaultVerifyPrompt is the built-in verification template.
// It has a single %s placeholder for the enumerated items.
const DefaultVerifyPrompt = `You are a news authenticity checker for a market briefing.
For each numbered item below, decide whether it is a genuine report from a
credible outlet (PASS), plausible but unconfirmed (UNCERTAIN), or likely
fabricated, satire, spam or clickbait (FAIL).

Items:
%s
Respond with only a JSON array, one object per item, in this shape:
[{"index": 1, "verdict": "PASS", "reason": "short reason"}]`
