package raggy

import (
	"github.com/danruto/raggy/rag"
	"github.com/danruto/raggy/rag/providers"
)

// Embedder generates vector embeddings for text.
type Embedder = providers.Embedder

// EmbeddingService wraps an Embedder with rate limiting and chunk batching.
type EmbeddingService = rag.EmbeddingService

// EmbedderOption is a function type for configuring embedder creation.
type EmbedderOption = rag.EmbedderOption

// NewEmbedder creates an Embedder for a registered provider ("ollama" or
// "openai").
func NewEmbedder(opts ...EmbedderOption) (Embedder, error) {
	return rag.NewEmbedder(opts...)
}

// NewEmbeddingService wraps an embedder for use with a vector store.
func NewEmbeddingService(embedder Embedder, opts ...rag.EmbeddingServiceOption) *EmbeddingService {
	return rag.NewEmbeddingService(embedder, opts...)
}

// SetProvider selects the embedding provider.
func SetProvider(provider string) EmbedderOption {
	return rag.SetProvider(provider)
}

// SetModel sets the embedding model.
func SetModel(model string) EmbedderOption {
	return rag.SetModel(model)
}

// SetAPIKey sets the API key for hosted providers.
func SetAPIKey(apiKey string) EmbedderOption {
	return rag.SetAPIKey(apiKey)
}

// SetBaseURL sets the endpoint address for locally served providers.
func SetBaseURL(baseURL string) EmbedderOption {
	return rag.SetBaseURL(baseURL)
}
