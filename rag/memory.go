package rag

import (
	"context"
	"math"
	"sort"
	"sync"
)

// memoryStore is a brute-force cosine-similarity store with no persistence.
// It backs tests and throwaway sessions; the interface semantics match the
// persistent backends.
type memoryStore struct {
	mu       sync.RWMutex
	embedder *EmbeddingService
	chunks   []Chunk
	vectors  [][]float32
	logger   Logger
}

func newMemoryStore(cfg *StoreConfig, embedder *EmbeddingService) *memoryStore {
	return &memoryStore{
		embedder: embedder,
		logger:   cfg.Logger,
	}
}

// Add embeds the chunks and appends them; existing entries are untouched.
func (s *memoryStore) Add(ctx context.Context, chunks []Chunk) error {
	vectors, err := s.embedder.EmbedChunks(ctx, chunks)
	if err != nil {
		return &StoreError{Op: "add", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range chunks {
		s.chunks = append(s.chunks, Chunk{
			Text:     chunks[i].Text,
			Metadata: copyMetadata(chunks[i].Metadata),
		})
		s.vectors = append(s.vectors, vectors[i])
	}
	s.logger.Debug("added chunks", "count", len(chunks), "total", len(s.chunks))
	return nil
}

// Retrieve returns the topK chunks by cosine similarity, closest first.
func (s *memoryStore) Retrieve(ctx context.Context, query string, topK int) ([]ScoredChunk, error) {
	if topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	empty := len(s.chunks) == 0
	s.mu.RUnlock()
	if empty {
		return nil, nil
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &StoreError{Op: "retrieve", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]ScoredChunk, len(s.chunks))
	for i := range s.chunks {
		scored[i] = ScoredChunk{
			Chunk: s.chunks[i],
			Score: cosineSimilarity(s.vectors[i], embedding),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

// Count reports the number of stored entries.
func (s *memoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// Reset drops every entry.
func (s *memoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	s.vectors = nil
	return nil
}

// Close is a no-op.
func (s *memoryStore) Close() error { return nil }

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
