// Package ai provides factory functions for creating trust evaluator adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/marketbrief/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/marketbrief/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/marketbrief/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEvaluator creates the evaluator selected by settings.
// Returns nil when no provider is selected; the verifier then relies on the allow-list.
func CreateEvaluator(settings domain.EvaluatorSettings) (driven.Evaluator, error) {
	switch settings.Provider {
	case "", domain.AIProviderNone:
		return nil, nil

	case domain.AIProviderOllama:
		return ollamallm.New(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.New(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.New(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, settings.Provider)
	}
}

// CreateAndValidateEvaluator creates an evaluator and validates connectivity.
// Returns the evaluator if successful, or an error with guidance.
func CreateAndValidateEvaluator(ctx context.Context, settings domain.EvaluatorSettings) (driven.Evaluator, error) {
	evaluator, err := CreateEvaluator(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Check the [evaluator] section of the config file",
			domain.ErrEvaluatorUnavailable, err)
	}
	if evaluator == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := evaluator.Ping(pingCtx); err != nil {
		_ = evaluator.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEvaluatorUnavailable, err)
	}

	return evaluator, nil
}
