package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
)

// APIKeyEnv overrides evaluator.api_key so keys can stay out of the file.
const APIKeyEnv = "MARKETBRIEF_EVALUATOR_API_KEY"

// duration is a time.Duration written as a string such as "90s" or "6h".
type duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// MarshalText renders the duration in Go syntax.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// fileConfig mirrors the TOML layout of config.toml.
type fileConfig struct {
	RetentionDays int      `toml:"retention_days"`
	RunTimeout    duration `toml:"run_timeout"`

	Storage struct {
		DataDir string `toml:"data_dir"`
	} `toml:"storage"`

	Fetch struct {
		Timeout     duration `toml:"timeout"`
		Retries     int      `toml:"retries"`
		Backoff     duration `toml:"backoff"`
		UserAgent   string   `toml:"user_agent"`
		RatePerHost float64  `toml:"rate_per_host"`
	} `toml:"fetch"`

	Evaluator struct {
		Provider string   `toml:"provider"`
		Model    string   `toml:"model,omitempty"`
		BaseURL  string   `toml:"base_url,omitempty"`
		APIKey   string   `toml:"api_key,omitempty"`
		Timeout  duration `toml:"timeout"`
	} `toml:"evaluator"`

	Verification struct {
		Retries   int      `toml:"retries"`
		Backoff   duration `toml:"backoff"`
		AllowList []string `toml:"allow_list"`
		PromptDir string   `toml:"prompt_dir,omitempty"`
	} `toml:"verification"`

	Crypto struct {
		Cap        int      `toml:"cap"`
		Coins      []string `toml:"coins"`
		VsCurrency string   `toml:"vs_currency"`
		PriceURL   string   `toml:"price_url"`
	} `toml:"crypto"`

	Market struct {
		Timezone   string   `toml:"timezone"`
		WeekdayCap int      `toml:"weekday_cap"`
		WeekendCap int      `toml:"weekend_cap"`
		Symbols    []string `toml:"symbols"`
		QuoteURL   string   `toml:"quote_url"`
	} `toml:"market"`

	Geopolitical struct {
		Cap int `toml:"cap"`
	} `toml:"geopolitical"`

	Schedule struct {
		Interval   duration `toml:"interval"`
		RunOnStart bool     `toml:"run_on_start"`
	} `toml:"schedule"`

	Feeds []feedEntry `toml:"feeds"`
}

// feedEntry is one [[feeds]] table.
type feedEntry struct {
	Name     string `toml:"name"`
	Kind     string `toml:"kind"`
	Category string `toml:"category"`
	URL      string `toml:"url"`
	Query    string `toml:"query,omitempty"`
	Limit    int    `toml:"limit,omitempty"`
}

// DefaultPath returns ~/.marketbrief/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".marketbrief", "config.toml"), nil
}

// Load reads and validates the configuration at path.
// An empty path means DefaultPath. A missing file yields the defaults.
func Load(path string) (domain.Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return domain.Config{}, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return domain.Config{}, fmt.Errorf("read config: %w", err)
		}
		data = nil
	}

	cfg, err := Parse(data)
	if err != nil {
		return domain.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of the defaults, applies environment
// overrides and validates the result. Unknown keys are rejected.
func Parse(data []byte) (domain.Config, error) {
	fc := fromDomain(domain.DefaultConfig())
	fc.Feeds = nil
	fc.Verification.AllowList = nil
	fc.Crypto.Coins = nil
	fc.Market.Symbols = nil

	if len(bytes.TrimSpace(data)) > 0 {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fc); err != nil {
			return domain.Config{}, fmt.Errorf("%w: %s", domain.ErrInvalidConfig, describe(err))
		}
	}

	cfg := fc.toDomain()
	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.Evaluator.APIKey = key
	}
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// WriteDefault writes the default configuration to path.
// It refuses to replace an existing file.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(fromDomain(domain.DefaultConfig()))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// describe adds position or key detail to go-toml errors.
func describe(err error) string {
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Sprintf("line %d column %d: %s", row, col, decodeErr.Error())
	}
	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) {
		return "unknown key\n" + strictErr.String()
	}
	return err.Error()
}

func fromDomain(c domain.Config) fileConfig {
	var fc fileConfig
	fc.RetentionDays = c.RetentionDays
	fc.RunTimeout = duration(c.RunTimeout)
	fc.Storage.DataDir = c.DataDir

	fc.Fetch.Timeout = duration(c.Fetch.Timeout)
	fc.Fetch.Retries = c.Fetch.Retries
	fc.Fetch.Backoff = duration(c.Fetch.Backoff)
	fc.Fetch.UserAgent = c.Fetch.UserAgent
	fc.Fetch.RatePerHost = c.Fetch.RatePerHost

	fc.Evaluator.Provider = string(c.Evaluator.Provider)
	fc.Evaluator.Model = c.Evaluator.Model
	fc.Evaluator.BaseURL = c.Evaluator.BaseURL
	fc.Evaluator.APIKey = c.Evaluator.APIKey
	fc.Evaluator.Timeout = duration(c.Evaluator.Timeout)

	fc.Verification.Retries = c.Verification.Retries
	fc.Verification.Backoff = duration(c.Verification.Backoff)
	fc.Verification.AllowList = c.Verification.AllowList
	fc.Verification.PromptDir = c.Verification.PromptDir

	fc.Crypto.Cap = c.Crypto.Cap
	fc.Crypto.Coins = c.Crypto.Coins
	fc.Crypto.VsCurrency = c.Crypto.VsCurrency
	fc.Crypto.PriceURL = c.Crypto.PriceURL

	fc.Market.Timezone = c.Market.Timezone
	fc.Market.WeekdayCap = c.Market.WeekdayCap
	fc.Market.WeekendCap = c.Market.WeekendCap
	fc.Market.Symbols = c.Market.Symbols
	fc.Market.QuoteURL = c.Market.QuoteURL

	fc.Geopolitical.Cap = c.Geopolitical.Cap

	fc.Schedule.Interval = duration(c.Schedule.Interval)
	fc.Schedule.RunOnStart = c.Schedule.RunOnStart

	for _, f := range c.Feeds {
		fc.Feeds = append(fc.Feeds, feedEntry{
			Name:     f.Name,
			Kind:     string(f.Kind),
			Category: string(f.Category),
			URL:      f.URL,
			Query:    f.Query,
			Limit:    f.Limit,
		})
	}
	return fc
}

func (fc fileConfig) toDomain() domain.Config {
	defaults := domain.DefaultConfig()

	c := domain.Config{
		DataDir:       expandHome(fc.Storage.DataDir),
		RetentionDays: fc.RetentionDays,
		RunTimeout:    time.Duration(fc.RunTimeout),
		Fetch: domain.FetchSettings{
			Timeout:     time.Duration(fc.Fetch.Timeout),
			Retries:     fc.Fetch.Retries,
			Backoff:     time.Duration(fc.Fetch.Backoff),
			UserAgent:   fc.Fetch.UserAgent,
			RatePerHost: fc.Fetch.RatePerHost,
		},
		Evaluator: domain.EvaluatorSettings{
			Provider: domain.AIProvider(strings.ToLower(strings.TrimSpace(fc.Evaluator.Provider))),
			Model:    fc.Evaluator.Model,
			BaseURL:  fc.Evaluator.BaseURL,
			APIKey:   fc.Evaluator.APIKey,
			Timeout:  time.Duration(fc.Evaluator.Timeout),
		},
		Verification: domain.VerificationSettings{
			Retries:   fc.Verification.Retries,
			Backoff:   time.Duration(fc.Verification.Backoff),
			AllowList: orDefault(fc.Verification.AllowList, defaults.Verification.AllowList),
			PromptDir: expandHome(fc.Verification.PromptDir),
		},
		Crypto: domain.CryptoSettings{
			Cap:        fc.Crypto.Cap,
			Coins:      orDefault(fc.Crypto.Coins, defaults.Crypto.Coins),
			VsCurrency: fc.Crypto.VsCurrency,
			PriceURL:   fc.Crypto.PriceURL,
		},
		Market: domain.MarketSettings{
			Timezone:   fc.Market.Timezone,
			WeekdayCap: fc.Market.WeekdayCap,
			WeekendCap: fc.Market.WeekendCap,
			Symbols:    orDefault(fc.Market.Symbols, defaults.Market.Symbols),
			QuoteURL:   fc.Market.QuoteURL,
		},
		Geopolitical: domain.GeopoliticalSettings{Cap: fc.Geopolitical.Cap},
		Schedule: domain.ScheduleSettings{
			Interval:   time.Duration(fc.Schedule.Interval),
			RunOnStart: fc.Schedule.RunOnStart,
		},
	}

	if fc.Feeds == nil {
		c.Feeds = defaults.Feeds
	}
	for _, f := range fc.Feeds {
		c.Feeds = append(c.Feeds, domain.FeedSettings{
			Name:     f.Name,
			Kind:     domain.FeedKind(strings.ToLower(f.Kind)),
			Category: domain.Category(strings.ToLower(f.Category)),
			URL:      f.URL,
			Query:    f.Query,
			Limit:    f.Limit,
		})
	}
	return c
}

func orDefault(v, def []string) []string {
	if v == nil {
		return def
	}
	return v
}

// expandHome resolves a leading "~/" against the user's home directory.
func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
