package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestParse_OverlaysDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	cfg, err := Parse([]byte(`
retention_days = 14
run_timeout = "90s"

[fetch]
retries = 5
backoff = "250ms"

[evaluator]
provider = "Ollama"
model = "qwen2.5"

[market]
weekend_cap = 3

[schedule]
interval = "1h30m"
run_on_start = false
`))

	require.NoError(t, err)
	defaults := domain.DefaultConfig()

	assert.Equal(t, 14, cfg.RetentionDays)
	assert.Equal(t, 90*time.Second, cfg.RunTimeout)
	assert.Equal(t, 5, cfg.Fetch.Retries)
	assert.Equal(t, 250*time.Millisecond, cfg.Fetch.Backoff)
	assert.Equal(t, defaults.Fetch.Timeout, cfg.Fetch.Timeout)
	assert.Equal(t, domain.AIProviderOllama, cfg.Evaluator.Provider)
	assert.Equal(t, "qwen2.5", cfg.Evaluator.Model)
	assert.Equal(t, 3, cfg.Market.WeekendCap)
	assert.Equal(t, defaults.Market.WeekdayCap, cfg.Market.WeekdayCap)
	assert.Equal(t, defaults.Market.Symbols, cfg.Market.Symbols)
	assert.Equal(t, 90*time.Minute, cfg.Schedule.Interval)
	assert.False(t, cfg.Schedule.RunOnStart)
	assert.Equal(t, defaults.Feeds, cfg.Feeds)
	assert.Equal(t, defaults.Verification.AllowList, cfg.Verification.AllowList)
}

func TestParse_FeedsReplaceDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[[feeds]]
name = "Reuters World"
kind = "rss"
category = "geopolitical"
url = "https://example.com/world.rss"
limit = 12

[[feeds]]
name = "Search"
kind = "SEARCH"
category = "market"
url = "https://news.example.com/rss/search"
query = "IDX composite"
`))

	require.NoError(t, err)
	require.Len(t, cfg.Feeds, 2)
	assert.Equal(t, domain.FeedSettings{
		Name:     "Reuters World",
		Kind:     domain.FeedKindRSS,
		Category: domain.CategoryGeopolitical,
		URL:      "https://example.com/world.rss",
		Limit:    12,
	}, cfg.Feeds[0])
	assert.Equal(t, domain.FeedKindSearch, cfg.Feeds[1].Kind)
	assert.Equal(t, "IDX composite", cfg.Feeds[1].Query)
}

func TestParse_Lists(t *testing.T) {
	cfg, err := Parse([]byte(`
[verification]
allow_list = ["Reuters"]

[crypto]
coins = ["solana"]
`))

	require.NoError(t, err)
	assert.Equal(t, []string{"Reuters"}, cfg.Verification.AllowList)
	assert.Equal(t, []string{"solana"}, cfg.Crypto.Coins)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{name: "syntax", input: "retention_days = ", errMsg: "line 1"},
		{name: "unknown key", input: "[fetch]\nretry = 2", errMsg: "unknown key"},
		{name: "bad duration", input: `run_timeout = "soon"`, errMsg: "invalid duration"},
		{name: "provider", input: "[evaluator]\nprovider = \"gemini\"", errMsg: "unsupported provider"},
		{name: "timezone", input: "[market]\ntimezone = \"Mars/Olympus\"", errMsg: "market.timezone"},
		{name: "cap", input: "[crypto]\ncap = 0", errMsg: "crypto cap"},
		{
			name:   "feed category",
			input:  "[[feeds]]\nname = \"x\"\nkind = \"rss\"\ncategory = \"sports\"\nurl = \"https://x\"",
			errMsg: "unknown category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParse_APIKeyFromEnvironment(t *testing.T) {
	t.Setenv(APIKeyEnv, "sk-env")

	cfg, err := Parse([]byte("[evaluator]\nprovider = \"openai\"\napi_key = \"sk-file\""))

	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.Evaluator.APIKey)
	assert.True(t, cfg.Evaluator.IsConfigured())
}

func TestParse_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	cfg, err := Parse([]byte("[storage]\ndata_dir = \"~/briefs\""))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "briefs"), cfg.DataDir)
}

func TestLoad_PrefixesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("retention_days = -1"), 0600))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "retention_days")
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)

	err = WriteDefault(path)
	assert.ErrorIs(t, err, os.ErrExist)
}

func TestDefaultPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	path, err := DefaultPath()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".marketbrief", "config.toml"), path)
}
