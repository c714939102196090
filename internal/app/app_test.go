package app

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marketbrief/internal/adapters/driven/config/file"
	"github.com/custodia-labs/marketbrief/internal/adapters/driving/cli"
	"github.com/custodia-labs/marketbrief/internal/core/domain"
)

func feedXML(items ...string) string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>`)
	for i, title := range items {
		fmt.Fprintf(&b, `<item><title>%s</title><link>https://news.example/%d-%d</link></item>`, title, len(title), i)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/wire.rss", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(feedXML("ETF inflows hit record")))
	})
	mux.HandleFunc("/blog.rss", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(feedXML("Ten coins that will 100x")))
	})
	mux.HandleFunc("/world.rss", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(feedXML("Ceasefire talks resume")))
	})
	mux.HandleFunc("/price", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":67000.5,"usd_24h_change":1.234}}`))
	})
	mux.HandleFunc("/chart/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"^JKSE","currency":"IDR","regularMarketPrice":7250.5,"chartPreviousClose":7200}}],"error":null}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, baseURL string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	cfg := fmt.Sprintf(`
[storage]
data_dir = %q

[fetch]
retries = 1
backoff = "1ms"
rate_per_host = 0.0

[evaluator]
provider = "none"

[verification]
allow_list = ["Reuters", "BBC"]
prompt_dir = %q

[crypto]
coins = ["bitcoin"]
price_url = "%s/price"

[market]
symbols = ["^JKSE"]
quote_url = "%s/chart"

[[feeds]]
name = "Reuters Markets"
kind = "rss"
category = "crypto"
url = "%s/wire.rss"

[[feeds]]
name = "Moon Blog"
kind = "rss"
category = "crypto"
url = "%s/blog.rss"

[[feeds]]
name = "BBC World"
kind = "rss"
category = "geopolitical"
url = "%s/world.rss"
`, dataDir, filepath.Join(dir, "prompts"), baseURL, baseURL, baseURL, baseURL, baseURL)

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0600))
	return path, dataDir
}

func TestBootstrap_EndToEnd(t *testing.T) {
	t.Setenv(file.APIKeyEnv, "")
	srv := upstream(t)
	path, dataDir := writeConfig(t, srv.URL)

	var out bytes.Buffer
	rt, err := Bootstrap(context.Background(), cli.Options{ConfigPath: path, Out: &out})
	require.NoError(t, err)

	report, err := rt.Runner.RunOnce(context.Background())
	require.NoError(t, err)
	require.NoError(t, rt.Close())

	assert.Equal(t, path, rt.ConfigPath)
	assert.Equal(t, 3, report.Collected)
	assert.Equal(t, 3, report.New)
	assert.Equal(t, 2, report.Delivered)
	assert.Equal(t, 1, report.Rejected)
	assert.True(t, report.Handoff)
	assert.Empty(t, report.Errors)

	digest := out.String()
	assert.Contains(t, digest, "ETF inflows hit record")
	assert.Contains(t, digest, "Ceasefire talks resume")
	assert.NotContains(t, digest, "Ten coins")
	assert.Contains(t, digest, "BTC")
	assert.Contains(t, digest, "67000.50 USD")
	assert.Contains(t, digest, "7250.50 IDR")
	assert.FileExists(t, filepath.Join(dataDir, "seen.db"))

	// A fresh runtime on the same store sees nothing new.
	out.Reset()
	rt, err = Bootstrap(context.Background(), cli.Options{ConfigPath: path, Out: &out})
	require.NoError(t, err)
	defer rt.Close()

	report, err = rt.Runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.New)

	stats, err := rt.Maintainer.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
}

func TestBootstrap_DryRunUsesMemory(t *testing.T) {
	t.Setenv(file.APIKeyEnv, "")
	srv := upstream(t)
	path, dataDir := writeConfig(t, srv.URL)

	for range 2 {
		rt, err := Bootstrap(context.Background(), cli.Options{ConfigPath: path, DryRun: true, Out: &bytes.Buffer{}})
		require.NoError(t, err)

		report, err := rt.Runner.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, report.New)
		require.NoError(t, rt.Close())
	}

	assert.NoFileExists(t, filepath.Join(dataDir, "seen.db"))
}

func TestBootstrap_SkipRunOnStart(t *testing.T) {
	t.Setenv(file.APIKeyEnv, "")
	path, _ := writeConfig(t, "http://127.0.0.1:1")

	rt, err := Bootstrap(context.Background(), cli.Options{ConfigPath: path, DryRun: true, SkipRunOnStart: true})
	require.NoError(t, err)
	defer rt.Close()

	assert.False(t, rt.Config.Schedule.RunOnStart)
	assert.NotNil(t, rt.Scheduler)
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[evaluator]\nprovider = \"gemini\""), 0600))

	_, err := Bootstrap(context.Background(), cli.Options{ConfigPath: path})

	assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)
}

func TestBuildEvaluator(t *testing.T) {
	evaluator, err := buildEvaluator(domain.EvaluatorSettings{Provider: domain.AIProviderOpenAI})
	require.NoError(t, err)
	assert.Nil(t, evaluator)

	evaluator, err = buildEvaluator(domain.EvaluatorSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"})
	require.NoError(t, err)
	require.NotNil(t, evaluator)
	assert.Equal(t, "ollama/llama3.2", evaluator.Name())
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	got, err := InitConfig(path)

	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.FileExists(t, path)
}

func TestDependencies(t *testing.T) {
	d := Dependencies()

	assert.NotNil(t, d.Bootstrap)
	assert.NotNil(t, d.WatchConfig)
	assert.NotNil(t, d.LoadConfig)
	assert.NotNil(t, d.InitConfig)
	assert.NotNil(t, d.ValidateEvaluator)
}
