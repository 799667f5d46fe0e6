package rag

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/danruto/raggy/rag/providers"
)

// EmbedderConfig holds the configuration for creating an Embedder
type EmbedderConfig struct {
	Provider string
	Options  map[string]interface{}
}

// EmbedderOption is a function type for configuring the EmbedderConfig
type EmbedderOption func(*EmbedderConfig)

// SetProvider sets the provider for the Embedder
func SetProvider(provider string) EmbedderOption {
	return func(c *EmbedderConfig) {
		c.Provider = provider
	}
}

// SetModel sets the model for the Embedder
func SetModel(model string) EmbedderOption {
	return func(c *EmbedderConfig) {
		c.Options["model"] = model
	}
}

// SetAPIKey sets the API key for the Embedder
func SetAPIKey(apiKey string) EmbedderOption {
	return func(c *EmbedderConfig) {
		c.Options["api_key"] = apiKey
	}
}

// SetBaseURL sets the endpoint address for providers that serve models
// locally, such as ollama.
func SetBaseURL(baseURL string) EmbedderOption {
	return func(c *EmbedderConfig) {
		c.Options["base_url"] = baseURL
	}
}

// SetEmbedderOption sets a custom option for the Embedder
func SetEmbedderOption(key string, value interface{}) EmbedderOption {
	return func(c *EmbedderConfig) {
		c.Options[key] = value
	}
}

// NewEmbedder creates a new Embedder instance based on the provided options
func NewEmbedder(opts ...EmbedderOption) (providers.Embedder, error) {
	config := &EmbedderConfig{
		Options: make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.Provider == "" {
		return nil, fmt.Errorf("provider must be specified")
	}
	factory, err := providers.GetEmbedderFactory(config.Provider)
	if err != nil {
		return nil, err
	}
	return factory(config.Options)
}

// EmbeddingService embeds chunks one by one through a single provider,
// throttled so a large ingestion batch cannot flood the embedding backend.
type EmbeddingService struct {
	embedder providers.Embedder
	limiter  *rate.Limiter
	logger   Logger
}

// EmbeddingServiceOption configures an EmbeddingService.
type EmbeddingServiceOption func(*EmbeddingService)

// WithEmbedRateLimit caps embedding calls at n per second.
func WithEmbedRateLimit(n int) EmbeddingServiceOption {
	return func(s *EmbeddingService) {
		s.limiter = rate.NewLimiter(rate.Limit(n), n)
	}
}

// WithEmbedLogger sets the logger used by the EmbeddingService.
func WithEmbedLogger(logger Logger) EmbeddingServiceOption {
	return func(s *EmbeddingService) {
		s.logger = logger
	}
}

// NewEmbeddingService creates an embedding service around the given
// embedder. By default calls are not throttled.
func NewEmbeddingService(embedder providers.Embedder, opts ...EmbeddingServiceOption) *EmbeddingService {
	s := &EmbeddingService{
		embedder: embedder,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		logger:   NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Embed generates the embedding for a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("error embedding text: %w", err)
	}
	return embedding, nil
}

// EmbedChunks embeds every chunk in order. The first failure aborts the
// batch; the caller must treat the batch as partially persisted at most.
func (s *EmbeddingService) EmbedChunks(ctx context.Context, chunks []Chunk) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		s.logger.Debug("embedding chunk", "index", i, "size", len(chunk.Text))
		embedding, err := s.Embed(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("error embedding chunk %d: %w", i+1, err)
		}
		embeddings = append(embeddings, embedding)
	}
	return embeddings, nil
}

// Dimension reports the embedding dimension of the underlying provider.
func (s *EmbeddingService) Dimension() (int, error) {
	return s.embedder.GetDimension()
}
