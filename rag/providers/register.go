// Package providers implements the embedding providers available to the
// raggy framework. Providers register themselves under a name; the embedding
// layer looks them up through the factory registry so new providers can be
// added without touching the rest of the system.
package providers

import (
	"context"
	"fmt"
	"sync"
)

// EmbedderFactory is a function type that creates a new Embedder
type EmbedderFactory func(config map[string]interface{}) (Embedder, error)

var (
	embedderFactories = make(map[string]EmbedderFactory)
	mu                sync.RWMutex
)

// RegisterEmbedder registers a new embedder factory
func RegisterEmbedder(name string, factory EmbedderFactory) {
	mu.Lock()
	defer mu.Unlock()
	embedderFactories[name] = factory
}

// GetEmbedderFactory returns the factory for the given embedder name
func GetEmbedderFactory(name string) (EmbedderFactory, error) {
	mu.RLock()
	defer mu.RUnlock()
	factory, ok := embedderFactories[name]
	if !ok {
		return nil, fmt.Errorf("embedder not found: %s", name)
	}
	return factory, nil
}

// ListEmbedders returns the names of all registered embedder factories.
func ListEmbedders() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(embedderFactories))
	for name := range embedderFactories {
		names = append(names, name)
	}
	return names
}

// Embedder interface defines the contract for embedding implementations.
// Embeddings are deterministic for identical input text; the dimension is
// fixed by the model selected at construction time.
type Embedder interface {
	// Embed generates the embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float32, error)

	// GetDimension returns the dimension of the embeddings for the
	// current model
	GetDimension() (int, error)
}
