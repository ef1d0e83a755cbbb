// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/shelfsearch/shelf-search/internal/pkg/security"
)

// Config holds all application configuration.
type Config struct {
	// Catalog configuration
	Catalog CatalogConfig `yaml:"catalog"`

	// Dataset configuration
	Dataset DatasetConfig `yaml:"dataset"`

	// Embedding configuration
	Embed EmbedConfig `yaml:"embed"`

	// Vector index configuration
	Vector VectorConfig `yaml:"vector"`

	// LLM provider configuration
	LLM LLMConfig `yaml:"llm"`

	// Scrape collaborator configuration
	Scrape ScrapeConfig `yaml:"scrape"`

	// Benchmark configuration
	Bench BenchConfig `yaml:"bench"`

	// Bus configuration
	Bus BusConfig `yaml:"bus"`

	// Redis configuration
	Redis RedisConfig `yaml:"redis"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// CatalogConfig holds catalog source settings.
type CatalogConfig struct {
	Path string `envconfig:"SHELF_CATALOG_PATH" yaml:"path"`
}

// DatasetConfig holds ground-truth dataset settings.
type DatasetConfig struct {
	Path string `envconfig:"SHELF_DATASET_PATH" yaml:"path"`
}

// EmbedConfig holds embedding function settings.
type EmbedConfig struct {
	// Provider selects the embedding function: hashing (deterministic,
	// local) or openai (remote, via the LLM endpoint).
	Provider  string `envconfig:"SHELF_EMBED_PROVIDER" yaml:"provider"`
	Model     string `envconfig:"SHELF_EMBED_MODEL" yaml:"model"`
	Dimension int    `envconfig:"SHELF_EMBED_DIM" yaml:"dimension"`
	CacheSize int    `envconfig:"SHELF_EMBED_CACHE_SIZE" yaml:"cache_size"`
	BatchSize int    `envconfig:"SHELF_EMBED_BATCH_SIZE" yaml:"batch_size"`
}

// VectorConfig holds vector index settings.
type VectorConfig struct {
	// Backend selects the index: memory (in-process, default) or qdrant.
	Backend    string `envconfig:"SHELF_VECTOR_BACKEND" yaml:"backend"`
	Host       string `envconfig:"SHELF_QDRANT_HOST" yaml:"host"`
	Port       int    `envconfig:"SHELF_QDRANT_PORT" yaml:"port"`
	APIKey     string `envconfig:"SHELF_QDRANT_API_KEY" yaml:"api_key"`
	UseTLS     bool   `envconfig:"SHELF_QDRANT_TLS" yaml:"use_tls"`
	Collection string `envconfig:"SHELF_QDRANT_COLLECTION" yaml:"collection"`
}

// LLMConfig holds settings for the OpenAI-compatible provider used by the
// synthesizer, the judge, and the optional remote embedder.
type LLMConfig struct {
	BaseURL           string        `envconfig:"SHELF_LLM_BASE_URL" yaml:"base_url"`
	APIKey            string        `envconfig:"SHELF_LLM_API_KEY" yaml:"api_key"`
	Model             string        `envconfig:"SHELF_LLM_MODEL" yaml:"model"`
	JudgeModel        string        `envconfig:"SHELF_LLM_JUDGE_MODEL" yaml:"judge_model"`
	Timeout           time.Duration `envconfig:"SHELF_LLM_TIMEOUT" yaml:"timeout"`
	RequestsPerSecond float64       `envconfig:"SHELF_LLM_RPS" yaml:"requests_per_second"`
	Burst             int           `envconfig:"SHELF_LLM_BURST" yaml:"burst"`
	BreakerEnabled    bool          `envconfig:"SHELF_LLM_BREAKER" yaml:"breaker_enabled"`
}

// ScrapeConfig holds the scraping collaborator settings for the keyword
// baseline.
type ScrapeConfig struct {
	// Source selects the listing source: http (the collaborator's listing
	// endpoint), file (a scraped dump on disk), or catalog (derived from
	// the loaded catalog, offline mode).
	Source     string        `envconfig:"SHELF_SCRAPE_SOURCE" yaml:"source"`
	ListingURL string        `envconfig:"SHELF_SCRAPE_URL" yaml:"listing_url"`
	FilePath   string        `envconfig:"SHELF_SCRAPE_FILE" yaml:"file_path"`
	Timeout    time.Duration `envconfig:"SHELF_SCRAPE_TIMEOUT" yaml:"timeout"`
}

// BenchConfig holds benchmark orchestrator settings.
type BenchConfig struct {
	Workers      int           `envconfig:"SHELF_BENCH_WORKERS" yaml:"workers"`
	QueryTimeout time.Duration `envconfig:"SHELF_BENCH_QUERY_TIMEOUT" yaml:"query_timeout"`
	KWide        int           `envconfig:"SHELF_BENCH_K_WIDE" yaml:"k_wide"`
	TopN         int           `envconfig:"SHELF_BENCH_TOP_N" yaml:"top_n"`
	JudgeSamples int           `envconfig:"SHELF_BENCH_JUDGE_SAMPLES" yaml:"judge_samples"`
	OutputDir    string        `envconfig:"SHELF_BENCH_OUTPUT_DIR" yaml:"output_dir"`
	Evaluate     bool          `envconfig:"SHELF_BENCH_EVALUATE" yaml:"evaluate"`
}

// BusConfig holds event bus settings.
type BusConfig struct {
	Backend     string `envconfig:"SHELF_BUS_BACKEND" yaml:"backend"`
	Brokers     string `envconfig:"SHELF_KAFKA_BROKERS" yaml:"brokers"`
	TopicPrefix string `envconfig:"SHELF_BUS_TOPIC_PREFIX" yaml:"topic_prefix"`
	Group       string `envconfig:"SHELF_KAFKA_GROUP" yaml:"group"`
	JournalPath string `envconfig:"SHELF_BUS_JOURNAL" yaml:"journal_path"`
}

// RedisConfig holds Redis settings for benchmark run history.
type RedisConfig struct {
	Enabled bool   `envconfig:"SHELF_REDIS_ENABLED" yaml:"enabled"`
	URL     string `envconfig:"SHELF_REDIS_URL" yaml:"url"`
}

// MetricsConfig holds metrics exposure settings.
type MetricsConfig struct {
	// HTTPAddr serves Prometheus text exposition for the duration of a
	// bench run when non-empty (e.g. ":9090").
	HTTPAddr string `envconfig:"SHELF_METRICS_ADDR" yaml:"http_addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"SHELF_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"SHELF_LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from defaults, an optional YAML file, and
// environment variables, in increasing priority.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	setDefaults(cfg)

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Catalog = CatalogConfig{
		Path: "data/catalog.json",
	}

	cfg.Dataset = DatasetConfig{
		Path: "data/ground_truth.json",
	}

	cfg.Embed = EmbedConfig{
		Provider:  "hashing",
		Model:     "text-embedding-3-small",
		Dimension: 256,
		CacheSize: 10000,
		BatchSize: 32,
	}

	cfg.Vector = VectorConfig{
		Backend:    "memory",
		Host:       "localhost",
		Port:       6334,
		Collection: "products",
	}

	cfg.LLM = LLMConfig{
		BaseURL:           "https://api.openai.com/v1",
		Model:             "gpt-4o-mini",
		JudgeModel:        "gpt-4o-mini",
		Timeout:           60 * time.Second,
		RequestsPerSecond: 2,
		Burst:             4,
		BreakerEnabled:    true,
	}

	cfg.Scrape = ScrapeConfig{
		Source:  "catalog",
		Timeout: 30 * time.Second,
	}

	cfg.Bench = BenchConfig{
		Workers:      4,
		QueryTimeout: 2 * time.Minute,
		KWide:        30,
		TopN:         10,
		JudgeSamples: 1,
		OutputDir:    "results",
		Evaluate:     true,
	}

	cfg.Bus = BusConfig{
		Backend:     "memory",
		TopicPrefix: "shelf",
		Group:       "shelf-search",
	}

	cfg.Redis = RedisConfig{
		Enabled: false,
		URL:     "redis://localhost:6379",
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate validates the configuration, collecting all errors.
func (c *Config) Validate() error {
	var errs []string

	if err := security.ValidateDataPath(c.Catalog.Path); err != nil {
		errs = append(errs, fmt.Sprintf("catalog path: %v", err))
	}
	if c.Dataset.Path != "" {
		if err := security.ValidateDataPath(c.Dataset.Path); err != nil {
			errs = append(errs, fmt.Sprintf("dataset path: %v", err))
		}
	}

	validEmbed := map[string]bool{"hashing": true, "openai": true}
	if !validEmbed[c.Embed.Provider] {
		errs = append(errs, fmt.Sprintf("invalid embed provider: %s (must be hashing or openai)", c.Embed.Provider))
	}
	if c.Embed.Dimension < 1 {
		errs = append(errs, "embed dimension must be positive")
	}
	if c.Embed.BatchSize < 1 {
		errs = append(errs, "embed batch_size must be positive")
	}

	validBackends := map[string]bool{"memory": true, "qdrant": true}
	if !validBackends[c.Vector.Backend] {
		errs = append(errs, fmt.Sprintf("invalid vector backend: %s (must be memory or qdrant)", c.Vector.Backend))
	}
	if c.Vector.Backend == "qdrant" {
		if c.Vector.Host == "" {
			errs = append(errs, "qdrant host is required for the qdrant backend")
		}
		if c.Vector.Port < 1 || c.Vector.Port > 65535 {
			errs = append(errs, "qdrant port must be between 1 and 65535")
		}
	}

	validSources := map[string]bool{"http": true, "file": true, "catalog": true}
	if !validSources[c.Scrape.Source] {
		errs = append(errs, fmt.Sprintf("invalid scrape source: %s (must be http, file, or catalog)", c.Scrape.Source))
	}
	if c.Scrape.Source == "http" && c.Scrape.ListingURL == "" {
		errs = append(errs, "scrape listing_url is required for the http source")
	}
	if c.Scrape.Source == "file" && c.Scrape.FilePath == "" {
		errs = append(errs, "scrape file_path is required for the file source")
	}

	if c.Bench.Workers < 1 {
		errs = append(errs, "bench workers must be positive")
	}
	if c.Bench.QueryTimeout <= 0 {
		errs = append(errs, "bench query_timeout must be positive")
	}
	if c.Bench.TopN < 1 {
		errs = append(errs, "bench top_n must be positive")
	}
	if c.Bench.KWide <= c.Bench.TopN {
		errs = append(errs, "bench k_wide must exceed top_n to leave headroom for filtering")
	}
	// Median over an even sample count is undefined for this scoring scheme.
	if c.Bench.JudgeSamples < 1 || c.Bench.JudgeSamples%2 == 0 {
		errs = append(errs, "bench judge_samples must be a positive odd number")
	}

	validBus := map[string]bool{"memory": true, "kafka": true}
	if !validBus[c.Bus.Backend] {
		errs = append(errs, fmt.Sprintf("invalid bus backend: %s (must be memory or kafka)", c.Bus.Backend))
	}
	if c.Bus.Backend == "kafka" && c.Bus.Brokers == "" {
		errs = append(errs, "kafka brokers are required for the kafka bus backend")
	}

	if c.LLM.RequestsPerSecond < 0 {
		errs = append(errs, "llm requests_per_second cannot be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
