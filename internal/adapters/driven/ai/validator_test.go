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

func TestNewConfigValidator(t *testing.T) {
	validator := NewConfigValidator()

	require.NotNil(t, validator)
}

func TestConfigValidator_ValidateEvaluator_Unconfigured(t *testing.T) {
	validator := NewConfigValidator()

	err := validator.ValidateEvaluator(context.Background(), domain.EvaluatorSettings{Provider: domain.AIProviderNone})

	// Nothing to validate.
	assert.NoError(t, err)
}

func TestConfigValidator_ValidateEvaluator_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "valid" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	validator := NewConfigValidator()
	settings := domain.EvaluatorSettings{Provider: domain.AIProviderAnthropic, BaseURL: srv.URL, APIKey: "valid"}
	assert.NoError(t, validator.ValidateEvaluator(context.Background(), settings))

	settings.APIKey = "revoked"
	err := validator.ValidateEvaluator(context.Background(), settings)
	require.ErrorIs(t, err, domain.ErrEvaluatorUnavailable)
	assert.Contains(t, err.Error(), "status 401")
}
