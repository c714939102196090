// Package app wires configuration, adapters and core services into the
// runtime used by the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/marketbrief/internal/adapters/driven/ai"
	"github.com/custodia-labs/marketbrief/internal/adapters/driven/config/file"
	"github.com/custodia-labs/marketbrief/internal/adapters/driven/delivery/console"
	"github.com/custodia-labs/marketbrief/internal/adapters/driven/feeds"
	"github.com/custodia-labs/marketbrief/internal/adapters/driven/fetch"
	"github.com/custodia-labs/marketbrief/internal/adapters/driven/quotes"
	"github.com/custodia-labs/marketbrief/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/marketbrief/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/marketbrief/internal/adapters/driving/cli"
	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driven"
	"github.com/custodia-labs/marketbrief/internal/core/services"
	"github.com/custodia-labs/marketbrief/internal/logger"
)

// Dependencies returns the constructors the CLI commands use.
func Dependencies() cli.Dependencies {
	return cli.Dependencies{
		Bootstrap:         Bootstrap,
		WatchConfig:       WatchConfig,
		LoadConfig:        file.Load,
		InitConfig:        InitConfig,
		ValidateEvaluator: ai.NewConfigValidator().ValidateEvaluator,
	}
}

// Bootstrap loads configuration and wires every component.
func Bootstrap(_ context.Context, opts cli.Options) (*cli.Runtime, error) {
	path, err := resolvePath(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	cfg, err := file.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.SkipRunOnStart {
		cfg.Schedule.RunOnStart = false
	}

	fetcher := fetch.New(cfg.Fetch)
	collectors, err := buildCollectors(cfg, fetcher)
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg, opts.DryRun)
	if err != nil {
		return nil, err
	}

	evaluator, err := buildEvaluator(cfg.Evaluator)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var prompts driven.PromptStore
	if ps, err := file.NewPromptStore(cfg.Verification.PromptDir); err != nil {
		logger.Warn("prompt store unavailable, using built-in prompt: %v", err)
	} else {
		prompts = ps
	}
	verifier := services.NewVerifier(evaluator, prompts, cfg.Verification)

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	deliverer := console.New(out, cfg.Location())

	pipeline := services.NewPipeline(
		services.PipelineConfig{RetentionDays: cfg.RetentionDays, RunTimeout: cfg.RunTimeout},
		collectors,
		store,
		verifier,
		deliverer,
	)

	return &cli.Runtime{
		ConfigPath: path,
		Config:     cfg,
		Runner:     pipeline,
		Maintainer: pipeline,
		Scheduler:  services.NewScheduler(cfg.Schedule, pipeline),
		Close: func() error {
			var errs []error
			errs = append(errs, store.Close())
			if evaluator != nil {
				errs = append(errs, evaluator.Close())
			}
			return errors.Join(errs...)
		},
	}, nil
}

// buildCollectors creates one collector per category.
func buildCollectors(cfg domain.Config, fetcher *fetch.Fetcher) ([]services.CategoryCollector, error) {
	sources, err := feeds.Build(cfg.Feeds, fetcher)
	if err != nil {
		return nil, err
	}
	byCategory := feeds.ByCategory(sources)

	var prices []driven.PriceSource
	if len(cfg.Crypto.Coins) > 0 {
		coingecko, err := quotes.NewCoinGeckoSource(cfg.Crypto, fetcher)
		if err != nil {
			return nil, fmt.Errorf("crypto prices: %w", err)
		}
		prices = append(prices, coingecko)
	}

	var markets []driven.MarketSource
	if len(cfg.Market.Symbols) > 0 {
		markets = append(markets, quotes.NewYahooSource(cfg.Market, fetcher))
	}

	collectors := make([]services.CategoryCollector, 0, len(domain.AllCategories()))
	for _, cat := range domain.AllCategories() {
		cc := services.CollectorConfig{
			Category: cat,
			Caps:     cfg.CapPolicy(cat),
			Feeds:    byCategory[cat],
		}
		switch cat {
		case domain.CategoryCrypto:
			cc.Prices = prices
		case domain.CategoryMarket:
			cc.Markets = markets
		}
		collectors = append(collectors, services.NewCollector(cc))
	}
	return collectors, nil
}

// openStore returns the durable store, or an in-memory one for dry runs.
func openStore(cfg domain.Config, dryRun bool) (driven.SeenStore, error) {
	if dryRun {
		logger.Info("Dry run: seen items are kept in memory")
		return memory.NewSeenStore(), nil
	}
	db, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("Seen store at %s", db.Path())
	return db.SeenStore(), nil
}

// buildEvaluator returns nil when AI verification is off or unusable.
func buildEvaluator(settings domain.EvaluatorSettings) (driven.Evaluator, error) {
	if !settings.IsConfigured() {
		if settings.Provider.RequiresAPIKey() {
			logger.Warn("%s evaluator has no API key (set %s); using allow-list only", settings.Provider, file.APIKeyEnv)
		}
		return nil, nil
	}
	evaluator, err := ai.CreateEvaluator(settings)
	if err != nil {
		return nil, fmt.Errorf("create evaluator: %w", err)
	}
	logger.Debug("Evaluator: %s", evaluator.Name())
	return evaluator, nil
}

// WatchConfig reloads the config at path on change until ctx ends.
func WatchConfig(ctx context.Context, path string, onChange func(error)) error {
	return file.NewWatcher(path, func(_ domain.Config, err error) {
		onChange(err)
	}).Run(ctx)
}

// InitConfig writes the default config and returns where it went.
func InitConfig(path string) (string, error) {
	path, err := resolvePath(path)
	if err != nil {
		return "", err
	}
	return path, file.WriteDefault(path)
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return file.DefaultPath()
}
