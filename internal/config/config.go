// Package config loads the place digest configuration: an optional YAML file,
// an optional .env file with provider credentials, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// News sources.
const (
	NewsSourceNewsAPI = "newsapi"
	NewsSourceRSS     = "rss"
)

// Config is the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Collect   CollectConfig   `yaml:"collect"`
	Providers ProvidersConfig `yaml:"providers"`
	Render    RenderConfig    `yaml:"render"`
}

// StoreConfig selects and configures the cache backend.
type StoreConfig struct {
	Backend     string `yaml:"backend"`
	Dir         string `yaml:"dir"`
	DatabaseURL string `yaml:"database_url"`
}

// CollectConfig tunes the collectors.
type CollectConfig struct {
	BaseCurrency string        `yaml:"base_currency"`
	Parallelism  int           `yaml:"parallelism"`
	HTTPTimeout  time.Duration `yaml:"http_timeout"`
	NewsSource   string        `yaml:"news_source"`
}

// EndpointConfig describes one JSON API provider.
// APIKey is never read from YAML; it comes from the environment or .env only.
type EndpointConfig struct {
	BaseURL       string  `yaml:"base_url"`
	APIKey        string  `yaml:"-"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// FeedConfig describes the RSS headline source.
// FeedURL must contain the {country} placeholder.
type FeedConfig struct {
	FeedURL       string  `yaml:"feed_url"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// ProvidersConfig groups every external provider.
type ProvidersConfig struct {
	Countries EndpointConfig `yaml:"countries"`
	Weather   EndpointConfig `yaml:"weather"`
	Currency  EndpointConfig `yaml:"currency"`
	News      EndpointConfig `yaml:"news"`
	RSS       FeedConfig     `yaml:"rss"`
}

// RenderConfig selects the report labels.
type RenderConfig struct {
	Language string `yaml:"language"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendFile,
			Dir:     ".cache/placedigest",
		},
		Collect: CollectConfig{
			BaseCurrency: "RUB",
			Parallelism:  5,
			HTTPTimeout:  30 * time.Second,
			NewsSource:   NewsSourceNewsAPI,
		},
		Providers: ProvidersConfig{
			Countries: EndpointConfig{BaseURL: "https://restcountries.com/v2", RatePerSecond: 1, Burst: 1},
			Weather:   EndpointConfig{BaseURL: "https://api.openweathermap.org/data/2.5", RatePerSecond: 10, Burst: 5},
			Currency:  EndpointConfig{BaseURL: "https://api.apilayer.com/fixer", RatePerSecond: 1, Burst: 1},
			News:      EndpointConfig{BaseURL: "https://newsapi.org/v2", RatePerSecond: 5, Burst: 5},
			RSS: FeedConfig{
				FeedURL:       "https://news.google.com/rss?gl={country}&hl=en-{country}&ceid={country}:en",
				RatePerSecond: 2,
				Burst:         2,
			},
		},
		Render: RenderConfig{Language: "ru"},
	}
}

// Load builds the configuration.
// path is an optional YAML file; envFile is an optional dotenv file whose
// variables never override ones already set in the process environment.
// A missing envFile is not an error; a missing YAML file is.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 -- path is provided by trusted source (CLI flag)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Store.Backend = getEnvString("PLACEDIGEST_STORE", cfg.Store.Backend)
	cfg.Store.Dir = getEnvString("PLACEDIGEST_CACHE_DIR", cfg.Store.Dir)
	cfg.Store.DatabaseURL = getEnvString("DATABASE_URL", cfg.Store.DatabaseURL)
	cfg.Store.DatabaseURL = getEnvString("PLACEDIGEST_DATABASE_URL", cfg.Store.DatabaseURL)

	cfg.Collect.BaseCurrency = strings.ToUpper(getEnvString("PLACEDIGEST_BASE_CURRENCY", cfg.Collect.BaseCurrency))
	cfg.Collect.Parallelism = getEnvInt("PLACEDIGEST_PARALLELISM", cfg.Collect.Parallelism)
	cfg.Collect.HTTPTimeout = getEnvDuration("PLACEDIGEST_HTTP_TIMEOUT", cfg.Collect.HTTPTimeout)
	cfg.Collect.NewsSource = getEnvString("PLACEDIGEST_NEWS_SOURCE", cfg.Collect.NewsSource)

	cfg.Providers.Weather.APIKey = getEnvString("WEATHER_API_KEY", cfg.Providers.Weather.APIKey)
	cfg.Providers.Currency.APIKey = getEnvString("CURRENCY_API_KEY", cfg.Providers.Currency.APIKey)
	cfg.Providers.News.APIKey = getEnvString("NEWS_API_KEY", cfg.Providers.News.APIKey)
	cfg.Providers.RSS.FeedURL = getEnvString("PLACEDIGEST_RSS_URL", cfg.Providers.RSS.FeedURL)

	cfg.Render.Language = getEnvString("PLACEDIGEST_LANG", cfg.Render.Language)
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Store.Dir == "" {
			errs = append(errs, fmt.Errorf("store dir is required for the file backend"))
		}
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("database url is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}

	if len(c.Collect.BaseCurrency) != 3 {
		errs = append(errs, fmt.Errorf("base currency must be a 3-letter code, got %q", c.Collect.BaseCurrency))
	}
	if c.Collect.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("parallelism must be at least 1, got %d", c.Collect.Parallelism))
	}
	if err := validatePositiveDuration(c.Collect.HTTPTimeout); err != nil {
		errs = append(errs, fmt.Errorf("http timeout: %w", err))
	}

	switch c.Collect.NewsSource {
	case NewsSourceNewsAPI:
	case NewsSourceRSS:
		if !strings.Contains(c.Providers.RSS.FeedURL, "{country}") {
			errs = append(errs, fmt.Errorf("rss feed url must contain the {country} placeholder"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown news source %q", c.Collect.NewsSource))
	}

	endpoints := map[string]EndpointConfig{
		"countries": c.Providers.Countries,
		"weather":   c.Providers.Weather,
		"currency":  c.Providers.Currency,
		"news":      c.Providers.News,
	}
	for _, name := range []string{"countries", "weather", "currency", "news"} {
		ep := endpoints[name]
		if ep.BaseURL == "" {
			errs = append(errs, fmt.Errorf("%s base url is required", name))
		}
		if ep.RatePerSecond <= 0 || ep.Burst < 1 {
			errs = append(errs, fmt.Errorf("%s rate limit must be positive", name))
		}
	}

	if c.Render.Language != "ru" && c.Render.Language != "en" {
		errs = append(errs, fmt.Errorf("render language must be ru or en, got %q", c.Render.Language))
	}

	return errors.Join(errs...)
}

// MissingKeys names the providers selected by the configuration that have no API key.
// Collection against them will fail with an authorization error.
func (c *Config) MissingKeys() []string {
	var missing []string
	if c.Providers.Weather.APIKey == "" {
		missing = append(missing, "WEATHER_API_KEY")
	}
	if c.Providers.Currency.APIKey == "" {
		missing = append(missing, "CURRENCY_API_KEY")
	}
	if c.Collect.NewsSource == NewsSourceNewsAPI && c.Providers.News.APIKey == "" {
		missing = append(missing, "NEWS_API_KEY")
	}
	return missing
}
