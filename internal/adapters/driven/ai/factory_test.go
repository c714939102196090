package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
)

func TestCreateEvaluator(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.EvaluatorSettings
		wantName string
		wantErr  error
	}{
		{name: "empty provider returns nil"},
		{name: "none returns nil", settings: domain.EvaluatorSettings{Provider: domain.AIProviderNone}},
		{
			name:     "ollama",
			settings: domain.EvaluatorSettings{Provider: domain.AIProviderOllama, Model: "llama3.1"},
			wantName: "ollama/llama3.1",
		},
		{
			name:     "openai",
			settings: domain.EvaluatorSettings{Provider: domain.AIProviderOpenAI, APIKey: "k"},
			wantName: "openai/gpt-4o-mini",
		},
		{
			name:     "anthropic",
			settings: domain.EvaluatorSettings{Provider: domain.AIProviderAnthropic, APIKey: "k", Model: "claude-x"},
			wantName: "anthropic/claude-x",
		},
		{
			name:     "unknown provider",
			settings: domain.EvaluatorSettings{Provider: "gemini"},
			wantErr:  domain.ErrUnsupportedProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evaluator, err := CreateEvaluator(tt.settings)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantName == "" {
				assert.Nil(t, evaluator)
				return
			}
			require.NotNil(t, evaluator)
			assert.Equal(t, tt.wantName, evaluator.Name())
		})
	}
}

func TestCreateEvaluator_MissingAPIKey(t *testing.T) {
	_, err := CreateEvaluator(domain.EvaluatorSettings{Provider: domain.AIProviderOpenAI})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestCreateAndValidateEvaluator(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer healthy.Close()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	t.Run("reachable", func(t *testing.T) {
		evaluator, err := CreateAndValidateEvaluator(context.Background(), domain.EvaluatorSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  healthy.URL,
		})
		require.NoError(t, err)
		require.NotNil(t, evaluator)
		assert.NoError(t, evaluator.Close())
	})

	t.Run("unreachable", func(t *testing.T) {
		evaluator, err := CreateAndValidateEvaluator(context.Background(), domain.EvaluatorSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  down.URL,
		})
		require.ErrorIs(t, err, domain.ErrEvaluatorUnavailable)
		assert.Nil(t, evaluator)
	})

	t.Run("bad settings", func(t *testing.T) {
		_, err := CreateAndValidateEvaluator(context.Background(), domain.EvaluatorSettings{Provider: "gemini"})
		require.ErrorIs(t, err, domain.ErrEvaluatorUnavailable)
		assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)
	})

	t.Run("none", func(t *testing.T) {
		evaluator, err := CreateAndValidateEvaluator(context.Background(), domain.EvaluatorSettings{})
		require.NoError(t, err)
		assert.Nil(t, evaluator)
	})
}
