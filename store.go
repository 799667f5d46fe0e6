package raggy

import (
	"github.com/danruto/raggy/rag"
)

// VectorStore persists chunks and answers similarity queries.
type VectorStore = rag.VectorStore

// ScoredChunk is a retrieved chunk with its similarity score.
type ScoredChunk = rag.ScoredChunk

// StoreOption configures a VectorStore backend.
type StoreOption = rag.StoreOption

// NewVectorStore creates a store backend directly, bypassing the Assistant.
// Useful when embedding and retrieval are driven by custom code.
func NewVectorStore(embedder *rag.EmbeddingService, opts ...StoreOption) (VectorStore, error) {
	return rag.NewStore(embedder, opts...)
}
