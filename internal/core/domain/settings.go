package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies the backend used to evaluate item trust.
type AIProvider string

// Available AI providers.
const (
	// AIProviderNone disables AI verification; the allow-list fallback is always used.
	AIProviderNone AIProvider = "none"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderNone, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderNone:
		return "Disabled (allow-list only)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EvaluatorSettings holds trust evaluator configuration.
type EvaluatorSettings struct {
	// Provider is the evaluator backend.
	Provider AIProvider

	// Model is the model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI and Anthropic).
	APIKey string

	// Timeout bounds a single evaluator call.
	Timeout time.Duration
}

// IsConfigured returns true if an AI backend is selected and usable.
func (e EvaluatorSettings) IsConfigured() bool {
	if e.Provider == "" || e.Provider == AIProviderNone {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}
