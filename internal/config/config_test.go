package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docsync/internal/config"
	"github.com/dshills/docsync/internal/embedder"
	"github.com/dshills/docsync/internal/walker"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "docs", cfg.Root)
	assert.Equal(t, []string{".mdx", ".md"}, cfg.Extensions)
	assert.Equal(t, config.StoreSQLite, cfg.Store)
	assert.Equal(t, "openai", cfg.EmbeddingProvider)
	assert.Equal(t, 10*time.Minute, cfg.LockTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, config.LogFormatText, cfg.LogFormat)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCSYNC_ROOT", "content")
	t.Setenv("DOCSYNC_IGNORE", "drafts/**,**/_*.mdx")
	t.Setenv("DOCSYNC_EMBEDDING_RPS", "2.5")
	t.Setenv("DOCSYNC_LOCK_TTL", "90s")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "content", cfg.Root)
	assert.Equal(t, []string{"drafts/**", "**/_*.mdx"}, cfg.Ignore)
	assert.Equal(t, 2.5, cfg.EmbeddingRPS)
	assert.Equal(t, 90*time.Second, cfg.LockTTL)
}

func TestLoad_FromEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".env", []byte("OPENAI_API_KEY=from-file\nDOCSYNC_STORE=postgres\n"), 0o644))
	// dotenv never overrides variables already set
	t.Setenv("DOCSYNC_STORE", "sqlite")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.OpenAIAPIKey)
	assert.Equal(t, config.StoreSQLite, cfg.Store)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCSYNC_EMBEDDING_BURST", "lots")

	_, err := config.Load()
	assert.Error(t, err)
}

func validConfig() config.Config {
	return config.Config{
		Root:              "docs",
		TraversalPolicy:   "abort",
		Store:             config.StoreSQLite,
		SQLitePath:        "index.db",
		EmbeddingProvider: "openai",
		OpenAIAPIKey:      "sk-test",
		LogFormat:         config.LogFormatText,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		errIs  error
		errMsg string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "local provider needs no key", mutate: func(c *config.Config) {
			c.EmbeddingProvider = "local"
			c.OpenAIAPIKey = ""
		}},
		{name: "missing openai key", mutate: func(c *config.Config) { c.OpenAIAPIKey = "" }, errIs: config.ErrMissingRequired, errMsg: "OPENAI_API_KEY"},
		{name: "missing jina key", mutate: func(c *config.Config) { c.EmbeddingProvider = "jina" }, errIs: config.ErrMissingRequired, errMsg: "JINA_API_KEY"},
		{name: "missing database url", mutate: func(c *config.Config) { c.Store = config.StorePostgres }, errIs: config.ErrMissingRequired, errMsg: "DATABASE_URL"},
		{name: "missing root", mutate: func(c *config.Config) { c.Root = " " }, errIs: config.ErrMissingRequired, errMsg: "DOCSYNC_ROOT"},
		{name: "unknown store", mutate: func(c *config.Config) { c.Store = "mysql" }, errMsg: "DOCSYNC_STORE"},
		{name: "unknown provider", mutate: func(c *config.Config) { c.EmbeddingProvider = "cohere" }, errMsg: "DOCSYNC_EMBEDDING_PROVIDER"},
		{name: "unknown policy", mutate: func(c *config.Config) { c.TraversalPolicy = "retry" }, errMsg: "traversal policy"},
		{name: "bad ignore pattern", mutate: func(c *config.Config) { c.Ignore = []string{"[unclosed"} }, errMsg: "ignore pattern"},
		{name: "negative dimension", mutate: func(c *config.Config) { c.EmbeddingDimension = -1 }, errMsg: "DOCSYNC_EMBEDDING_DIMENSION"},
		{name: "bad log format", mutate: func(c *config.Config) { c.LogFormat = "xml" }, errMsg: "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			}
		})
	}
}

func TestConfig_ValidateStore(t *testing.T) {
	cfg := config.Config{Store: config.StorePostgres, DatabaseURL: "postgres://localhost/docs"}
	assert.NoError(t, cfg.ValidateStore(), "store checks ignore embedding credentials")
}

func TestConfig_Embedder(t *testing.T) {
	cfg := validConfig()
	cfg.EmbeddingProvider = "Jina"
	cfg.JinaAPIKey = "jina-key"
	cfg.EmbeddingRPS = 3
	cfg.EmbeddingCacheSize = 50

	emb := cfg.Embedder()
	assert.Equal(t, "jina", emb.Provider)
	assert.Equal(t, "jina-key", emb.APIKey)
	assert.Equal(t, 3.0, emb.RequestsPerSecond)
	assert.Equal(t, 50, emb.CacheSize)
}

func TestConfig_EmbeddingDimension(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCSYNC_EMBEDDING_PROVIDER", "jina")
	t.Setenv("JINA_API_KEY", "jina-key")
	t.Setenv("DOCSYNC_EMBEDDING_MODEL", "jina-embeddings-v2-base-en")
	t.Setenv("DOCSYNC_EMBEDDING_DIMENSION", "768")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 768, cfg.EmbeddingDimension)
	assert.Equal(t, 768, cfg.Embedder().Dimension)

	emb, err := embedder.New(cfg.Embedder())
	require.NoError(t, err)
	assert.Equal(t, 768, emb.Dimension())
	assert.Equal(t, "jina-embeddings-v2-base-en", emb.Model())

	t.Run("unlisted openai model", func(t *testing.T) {
		c := validConfig()
		c.EmbeddingModel = "text-embedding-custom"

		_, err := embedder.New(c.Embedder())
		assert.ErrorIs(t, err, embedder.ErrUnsupportedModel)

		c.EmbeddingDimension = 512
		emb, err := embedder.New(c.Embedder())
		require.NoError(t, err)
		assert.Equal(t, 512, emb.Dimension())
	})

	t.Run("provider default when unset", func(t *testing.T) {
		c := validConfig()
		assert.Zero(t, c.Embedder().Dimension)

		emb, err := embedder.New(c.Embedder())
		require.NoError(t, err)
		assert.Equal(t, embedder.OpenAIDimension, emb.Dimension())
	})
}

func TestConfig_Walker(t *testing.T) {
	cfg := validConfig()
	cfg.TraversalPolicy = "skip"
	cfg.Ignore = []string{"drafts/**"}

	opts, policy, err := cfg.Walker()
	require.NoError(t, err)
	assert.Equal(t, walker.PolicySkip, policy)
	assert.Equal(t, []string{"drafts/**"}, opts.Ignore)
}
