// Package config loads docsync settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/dshills/docsync/internal/embedder"
	"github.com/dshills/docsync/internal/walker"
)

var ErrMissingRequired = errors.New("missing required configuration")

// Store backends
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Log formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

type Config struct {
	// Source tree
	Root            string   `envconfig:"DOCSYNC_ROOT" default:"docs"`
	Extensions      []string `envconfig:"DOCSYNC_EXTENSIONS" default:".mdx,.md"`
	Ignore          []string `envconfig:"DOCSYNC_IGNORE"`
	TraversalPolicy string   `envconfig:"DOCSYNC_TRAVERSAL_POLICY" default:"abort"`

	// Store
	Store       string `envconfig:"DOCSYNC_STORE" default:"sqlite"`
	SQLitePath  string `envconfig:"DOCSYNC_SQLITE_PATH" default:".docsync/index.db"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Embeddings
	EmbeddingProvider  string  `envconfig:"DOCSYNC_EMBEDDING_PROVIDER" default:"openai"`
	EmbeddingModel     string  `envconfig:"DOCSYNC_EMBEDDING_MODEL"`
	EmbeddingBaseURL   string  `envconfig:"DOCSYNC_EMBEDDING_BASE_URL"`
	EmbeddingDimension int     `envconfig:"DOCSYNC_EMBEDDING_DIMENSION"` // 0 = provider default for the model
	EmbeddingRPS       float64 `envconfig:"DOCSYNC_EMBEDDING_RPS" default:"5"`
	EmbeddingBurst     int     `envconfig:"DOCSYNC_EMBEDDING_BURST" default:"1"`
	EmbeddingCacheSize int     `envconfig:"DOCSYNC_EMBEDDING_CACHE_SIZE" default:"10000"`
	OpenAIAPIKey       string  `envconfig:"OPENAI_API_KEY"`
	JinaAPIKey         string  `envconfig:"JINA_API_KEY"`

	// Run lock
	RedisURL string        `envconfig:"REDIS_URL"`
	LockTTL  time.Duration `envconfig:"DOCSYNC_LOCK_TTL" default:"10m"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// Resilience
	BootstrapRetryAttempts int           `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"5"`
	BootstrapRetryDelay    time.Duration `envconfig:"BOOTSTRAP_RETRY_DELAY" default:"2s"`
}

// Load reads .env (when present) and the process environment. The result is
// not validated; commands call Validate or ValidateStore for what they need.
func Load() (*Config, error) {
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateStore checks the settings needed to open the document store.
func (c *Config) ValidateStore() error {
	switch c.Store {
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: DOCSYNC_SQLITE_PATH", ErrMissingRequired)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL", ErrMissingRequired)
		}
	default:
		return fmt.Errorf("invalid DOCSYNC_STORE %q: want %s or %s", c.Store, StoreSQLite, StorePostgres)
	}
	return nil
}

// Validate checks everything a sync run needs: the source tree settings,
// the store and the embedding provider's credentials.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("%w: DOCSYNC_ROOT", ErrMissingRequired)
	}
	if _, err := walker.ParsePolicy(c.TraversalPolicy); err != nil {
		return err
	}
	if err := walker.ValidatePatterns(c.Ignore); err != nil {
		return err
	}
	if err := c.ValidateStore(); err != nil {
		return err
	}

	switch strings.ToLower(c.EmbeddingProvider) {
	case embedder.ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingRequired)
		}
	case embedder.ProviderJina:
		if c.JinaAPIKey == "" {
			return fmt.Errorf("%w: JINA_API_KEY", ErrMissingRequired)
		}
	case embedder.ProviderLocal:
	default:
		return fmt.Errorf("invalid DOCSYNC_EMBEDDING_PROVIDER %q", c.EmbeddingProvider)
	}

	if c.EmbeddingDimension < 0 {
		return fmt.Errorf("invalid DOCSYNC_EMBEDDING_DIMENSION %d", c.EmbeddingDimension)
	}

	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// Embedder returns the embedder settings for the configured provider.
func (c *Config) Embedder() embedder.Config {
	cfg := embedder.Config{
		Provider:          strings.ToLower(c.EmbeddingProvider),
		Model:             c.EmbeddingModel,
		BaseURL:           c.EmbeddingBaseURL,
		Dimension:         c.EmbeddingDimension,
		RequestsPerSecond: c.EmbeddingRPS,
		Burst:             c.EmbeddingBurst,
		CacheSize:         c.EmbeddingCacheSize,
	}
	switch cfg.Provider {
	case embedder.ProviderOpenAI:
		cfg.APIKey = c.OpenAIAPIKey
	case embedder.ProviderJina:
		cfg.APIKey = c.JinaAPIKey
	}
	return cfg
}

// Walker returns the walker options and traversal policy.
func (c *Config) Walker() (walker.Options, walker.Policy, error) {
	policy, err := walker.ParsePolicy(c.TraversalPolicy)
	if err != nil {
		return walker.Options{}, "", err
	}
	return walker.Options{Extensions: c.Extensions, Ignore: c.Ignore}, policy, nil
}
