package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestEvaluator_Evaluate(t *testing.T) {
	var got messagesRequest
	var key, version string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		key = r.Header.Get("x-api-key")
		version = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Here: "},{"type":"text","text":"[]"}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	e, err := New(Config{APIKey: "ak", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := e.Evaluate(context.Background(), "judge this")
	require.NoError(t, err)
	assert.Equal(t, "Here: []", out)
	assert.Equal(t, "ak", key)
	assert.Equal(t, anthropicVersion, version)
	assert.Equal(t, maxTokens, got.MaxTokens)
	assert.Equal(t, DefaultModel, got.Model)
	assert.NotEmpty(t, got.System)
}

func TestEvaluator_Evaluate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", http.StatusTooManyRequests, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`, "slow down"},
		{"empty", http.StatusOK, `{"content":[]}`, "no text"},
		{"html", http.StatusServiceUnavailable, `<html/>`, "status 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			e, err := New(Config{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)
			_, err = e.Evaluate(context.Background(), "p")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEvaluator_NameAndPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	e, err := New(Config{APIKey: "k", BaseURL: srv.URL, Model: "claude-test"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-test", e.Name())
	assert.NoError(t, e.Ping(context.Background()))
	assert.NoError(t, e.Close())
}
