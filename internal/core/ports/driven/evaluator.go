package driven

import "context"

// Evaluator is a natural-language backend that judges item trust.
// Backends are interchangeable; one is selected at startup from configuration.
//
// Implementations include:
//   - Ollama (local models)
//   - OpenAI (GPT-4o and compatible APIs)
//   - Anthropic (Claude)
type Evaluator interface {
	// Evaluate sends a prompt and returns the raw response text.
	Evaluate(ctx context.Context, prompt string) (string, error)

	// Name returns the backend and model, for logs.
	Name() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
