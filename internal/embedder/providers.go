package embedder

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Provider configuration
const (
	ProviderJina   = "jina"
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"

	// Default models
	DefaultJinaModel   = "jina-embeddings-v3"
	DefaultOpenAIModel = "text-embedding-ada-002"

	// Default endpoints
	DefaultJinaBaseURL   = "https://api.jina.ai/v1"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// Dimensions
	JinaDimension   = 1024
	OpenAIDimension = 1536
	LocalDimension  = 384

	// MaxInputChars is the length inputs are cut to after the provider
	// rejects them for exceeding the model context.
	MaxInputChars = 16000

	DefaultCacheSize = 10000
	DefaultTimeout   = 30 * time.Second

	// Retry configuration
	MaxRetries        = 3
	InitialBackoffMs  = 500
	MaxBackoffMs      = 30000
	BackoffMultiplier = 2.0
)

var openAIDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// RemoteOptions configures an HTTP embedding provider.
type RemoteOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	Dimension  int
	HTTPClient *http.Client
	Cache      *Cache
	Limiter    *RateLimiter
	Retry      *RetryConfig
}

// RemoteProvider implements Embedder against an OpenAI-compatible
// /embeddings endpoint. OpenAI and Jina share the wire format.
type RemoteProvider struct {
	name       string
	apiKey     string
	model      string
	baseURL    string
	dimension  int
	httpClient *http.Client
	cache      *Cache
	limiter    *RateLimiter
	retry      RetryConfig
}

// NewOpenAIProvider creates an OpenAI embedder
func NewOpenAIProvider(opts RemoteOptions) (*RemoteProvider, error) {
	if opts.Model == "" {
		opts.Model = DefaultOpenAIModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultOpenAIBaseURL
	}
	if opts.Dimension == 0 {
		opts.Dimension = openAIDimensions[opts.Model]
	}
	if opts.Dimension == 0 {
		return nil, fmt.Errorf("%w: %s (set a dimension explicitly)", ErrUnsupportedModel, opts.Model)
	}
	return newRemoteProvider(ProviderOpenAI, opts)
}

// NewJinaProvider creates a Jina AI embedder
func NewJinaProvider(opts RemoteOptions) (*RemoteProvider, error) {
	if opts.Model == "" {
		opts.Model = DefaultJinaModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultJinaBaseURL
	}
	if opts.Dimension == 0 {
		opts.Dimension = JinaDimension
	}
	return newRemoteProvider(ProviderJina, opts)
}

func newRemoteProvider(name string, opts RemoteOptions) (*RemoteProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: %s api key not set", ErrNoProviderEnabled, name)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	retry := DefaultRetryConfig()
	if opts.Retry != nil {
		retry = *opts.Retry
	}
	return &RemoteProvider{
		name:       name,
		apiKey:     opts.APIKey,
		model:      opts.Model,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		dimension:  opts.Dimension,
		httpClient: client,
		cache:      opts.Cache,
		limiter:    opts.Limiter,
		retry:      retry,
	}, nil
}

// Embed requests one embedding. Transient failures are retried with backoff.
// When the provider reports the input is too long it is truncated to
// MaxInputChars and sent once more.
func (p *RemoteProvider) Embed(ctx context.Context, text string) (*Embedding, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	hash := ComputeHash(text)
	if p.cache != nil {
		if emb, ok := p.cache.Get(hash); ok {
			return emb, nil
		}
	}

	emb, err := retryWithBackoff(ctx, p.retry, retryable, func() (*Embedding, error) {
		return p.callAPI(ctx, text)
	})
	if errors.Is(err, ErrContextLength) {
		truncated, cut := Truncate(text, MaxInputChars)
		if !cut {
			return nil, fmt.Errorf("%w: %w", ErrProviderFailed, err)
		}
		slog.WarnContext(ctx, "context length exceeded, retrying truncated input",
			"provider", p.name, "chars", len(text), "limit", MaxInputChars)
		emb, err = p.callAPI(ctx, truncated)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrProviderFailed, err)
	}

	if emb.Dimension != p.dimension {
		return nil, fmt.Errorf("%w: expected dimension %d, got %d", ErrProviderFailed, p.dimension, emb.Dimension)
	}

	emb.Hash = hash
	if p.cache != nil {
		p.cache.Set(hash, emb)
	}
	return emb, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func (p *RemoteProvider) callAPI(ctx context.Context, text string) (*Embedding, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(embeddingRequest{Model: p.model, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		apiErr := &APIError{
			Provider:   p.name,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(bodyBytes)),
			RetryAfter: parseRetryAfter(resp, time.Now()),
		}
		if isContextLengthError(apiErr) {
			return nil, fmt.Errorf("%w: %w", ErrContextLength, apiErr)
		}
		return nil, apiErr
	}

	var apiResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Data) == 0 {
		return nil, errors.New("no embeddings returned")
	}

	vector := apiResp.Data[0].Embedding
	tokens := apiResp.Usage.TotalTokens
	if tokens == 0 {
		tokens = apiResp.Usage.PromptTokens
	}
	model := apiResp.Model
	if model == "" {
		model = p.model
	}

	return &Embedding{
		Vector:     vector,
		Dimension:  len(vector),
		TokenCount: tokens,
		Provider:   p.name,
		Model:      model,
	}, nil
}

// isContextLengthError matches the 400 providers return when the input is
// longer than the model accepts.
func isContextLengthError(err *APIError) bool {
	return err.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(err.Body), "context")
}

func (p *RemoteProvider) Dimension() int {
	return p.dimension
}

func (p *RemoteProvider) Provider() string {
	return p.name
}

func (p *RemoteProvider) Model() string {
	return p.model
}

func (p *RemoteProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

// LocalProvider produces deterministic pseudo-embeddings without network
// access. Vectors derive from the text hash, so equal inputs always map to
// equal vectors. Useful for offline runs and tests.
type LocalProvider struct {
	model string
	cache *Cache
}

// NewLocalProvider creates a new local embedder
func NewLocalProvider(cache *Cache) (*LocalProvider, error) {
	return &LocalProvider{
		model: "local-embeddings",
		cache: cache,
	}, nil
}

func (l *LocalProvider) Embed(ctx context.Context, text string) (*Embedding, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash := ComputeHash(text)
	if l.cache != nil {
		if emb, ok := l.cache.Get(hash); ok {
			return emb, nil
		}
	}

	vector := make([]float32, LocalDimension)
	seed := sha256.Sum256([]byte(text))
	for i := range vector {
		if i > 0 && i%len(seed) == 0 {
			seed = sha256.Sum256(seed[:])
		}
		vector[i] = float32(seed[i%len(seed)]) / 255.0
	}

	emb := &Embedding{
		Vector:     vector,
		Dimension:  LocalDimension,
		TokenCount: (len(text) + 3) / 4,
		Provider:   ProviderLocal,
		Model:      l.model,
		Hash:       hash,
	}

	if l.cache != nil {
		l.cache.Set(hash, emb)
	}

	return emb, nil
}

func (l *LocalProvider) Dimension() int {
	return LocalDimension
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return l.model
}

func (l *LocalProvider) Close() error {
	return nil
}
