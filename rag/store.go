package rag

import (
	"context"
	"fmt"
	"time"
)

// VectorStore persists chunk text, metadata and embeddings and answers
// similarity queries. Add embeds and appends, never touching existing
// entries; Retrieve is read-only and returns the closest chunks first.
type VectorStore interface {
	// Add embeds the chunks and appends them to the collection. Whether a
	// failed batch leaves a partially written subset depends on the
	// backend; callers should treat failure as unknown partial state.
	Add(ctx context.Context, chunks []Chunk) error
	// Retrieve embeds the query and returns up to topK nearest chunks by
	// the store's native metric. An empty collection yields an empty
	// slice, not an error.
	Retrieve(ctx context.Context, query string, topK int) ([]ScoredChunk, error)
	// Count reports the number of stored entries.
	Count(ctx context.Context) (int, error)
	// Reset drops every entry in the collection.
	Reset(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}

// StoreConfig selects and configures a VectorStore backend.
type StoreConfig struct {
	// Type selects the backend: "chromem" (default), "memory" or "milvus"
	Type string
	// Path is the on-disk directory for the chromem backend
	Path string
	// Address is the server address for the milvus backend
	Address string
	// Collection is the named collection inside the backend
	Collection string
	// Timeout bounds milvus connection establishment
	Timeout time.Duration
	// Logger receives store diagnostics
	Logger Logger
}

// StoreOption configures a StoreConfig.
type StoreOption func(*StoreConfig)

// WithStoreType selects the backend type.
func WithStoreType(storeType string) StoreOption {
	return func(c *StoreConfig) {
		c.Type = storeType
	}
}

// WithStorePath sets the on-disk directory for persistent backends.
func WithStorePath(path string) StoreOption {
	return func(c *StoreConfig) {
		c.Path = path
	}
}

// WithStoreAddress sets the server address for remote backends.
func WithStoreAddress(address string) StoreOption {
	return func(c *StoreConfig) {
		c.Address = address
	}
}

// WithCollection sets the collection name.
func WithCollection(name string) StoreOption {
	return func(c *StoreConfig) {
		c.Collection = name
	}
}

// WithStoreTimeout bounds connection establishment for remote backends.
func WithStoreTimeout(timeout time.Duration) StoreOption {
	return func(c *StoreConfig) {
		c.Timeout = timeout
	}
}

// WithStoreLogger sets the logger used by the store.
func WithStoreLogger(logger Logger) StoreOption {
	return func(c *StoreConfig) {
		c.Logger = logger
	}
}

// Store defaults. The persistence directory and collection name are fixed
// well-known values so a later session can reopen what an earlier one wrote.
const (
	DefaultStoreType  = "chromem"
	DefaultStorePath  = "chroma_db"
	DefaultCollection = "documents"
)

// NewStore creates a VectorStore backend. The embedding service supplies
// vectors for both added chunks and queries; collection name, embedding
// dimension and distance metric are fixed when the collection is first
// created and must match on every reopen.
func NewStore(embedder *EmbeddingService, opts ...StoreOption) (VectorStore, error) {
	cfg := &StoreConfig{
		Type:       DefaultStoreType,
		Path:       DefaultStorePath,
		Collection: DefaultCollection,
		Timeout:    time.Minute,
		Logger:     NopLogger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch cfg.Type {
	case "chromem":
		return newChromemStore(cfg, embedder)
	case "memory":
		return newMemoryStore(cfg, embedder), nil
	case "milvus":
		return newMilvusStore(cfg, embedder)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}
