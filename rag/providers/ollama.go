package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ollama "github.com/ollama/ollama/api"
)

func init() {
	RegisterEmbedder("ollama", NewOllamaEmbedder)
}

const (
	defaultOllamaHost       = "http://localhost:11434"
	defaultOllamaEmbedModel = "nomic-embed-text"
)

// OllamaEmbedder implements the Embedder interface against a local Ollama
// server. The first successful call pins the embedding dimension; it is the
// model's output size and never changes for a given model.
type OllamaEmbedder struct {
	client    *ollama.Client
	modelName string
	dimension int
}

// NewOllamaEmbedder creates an Ollama embedding provider. Recognized config
// keys:
//   - model: embedding model name (defaults to nomic-embed-text)
//   - base_url: server address (defaults to http://localhost:11434)
//   - timeout: HTTP timeout as time.Duration
func NewOllamaEmbedder(config map[string]interface{}) (Embedder, error) {
	baseURL := defaultOllamaHost
	if u, ok := config["base_url"].(string); ok && u != "" {
		baseURL = u
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{Timeout: 120 * time.Second}
	if timeout, ok := config["timeout"].(time.Duration); ok {
		hc.Timeout = timeout
	}

	e := &OllamaEmbedder{
		client:    ollama.NewClient(parsedURL, hc),
		modelName: defaultOllamaEmbedModel,
	}
	if model, ok := config["model"].(string); ok && model != "" {
		e.modelName = model
	}
	return e, nil
}

// Embed converts the input text into a vector using the configured model.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embed(ctx, &ollama.EmbedRequest{
		Model: e.modelName,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding from ollama: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for model %s", e.modelName)
	}
	embedding := resp.Embeddings[0]
	if e.dimension == 0 {
		e.dimension = len(embedding)
	}
	return embedding, nil
}

// GetDimension returns the embedding dimension. Known models are answered
// without a server round trip; otherwise one probe embedding is required
// first.
func (e *OllamaEmbedder) GetDimension() (int, error) {
	if e.dimension > 0 {
		return e.dimension, nil
	}
	switch e.modelName {
	case "nomic-embed-text":
		return 768, nil
	case "mxbai-embed-large":
		return 1024, nil
	case "all-minilm":
		return 384, nil
	default:
		return 0, fmt.Errorf("unknown dimension for model %s, embed a probe text first", e.modelName)
	}
}
