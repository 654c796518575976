package embedder

import (
	"fmt"
	"net/http"
	"strings"
)

// Config holds embedder configuration
type Config struct {
	Provider          string
	APIKey            string
	Model             string
	BaseURL           string
	Dimension         int
	RequestsPerSecond float64
	Burst             int
	CacheSize         int
	HTTPClient        *http.Client
	Retry             *RetryConfig
}

// New creates an embedder with explicit configuration. A zero CacheSize
// disables caching; remote providers are throttled when
// RequestsPerSecond is positive.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	opts := RemoteOptions{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		Dimension:  cfg.Dimension,
		HTTPClient: cfg.HTTPClient,
		Cache:      cache,
		Limiter:    NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		Retry:      cfg.Retry,
	}

	var (
		emb Embedder
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI, "":
		emb, err = NewOpenAIProvider(opts)
	case ProviderJina:
		emb, err = NewJinaProvider(opts)
	case ProviderLocal:
		emb, err = NewLocalProvider(cache)
	default:
		err = fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return emb, nil
}
