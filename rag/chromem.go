package rag

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
)

// chromemStore is the default VectorStore backend: an embedded vector
// database persisted to a directory on disk. Reopening the same path picks
// up previously written entries without re-embedding them. The distance
// metric is chromem's native cosine similarity, fixed at collection
// creation.
type chromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   *EmbeddingService
	name       string
	logger     Logger
}

func newChromemStore(cfg *StoreConfig, embedder *EmbeddingService) (*chromemStore, error) {
	db, err := chromem.NewPersistentDB(cfg.Path, false)
	if err != nil {
		return nil, &StoreError{Op: "open", Err: fmt.Errorf("persistent db at %s: %w", cfg.Path, err)}
	}

	s := &chromemStore{
		db:       db,
		embedder: embedder,
		name:     cfg.Collection,
		logger:   cfg.Logger,
	}
	col, err := db.GetOrCreateCollection(cfg.Collection, nil, s.embeddingFunc())
	if err != nil {
		return nil, &StoreError{Op: "open", Err: fmt.Errorf("collection %s: %w", cfg.Collection, err)}
	}
	s.collection = col

	s.logger.Debug("opened chromem collection", "path", cfg.Path, "collection", cfg.Collection, "entries", col.Count())
	return s, nil
}

// embeddingFunc adapts the EmbeddingService to chromem's callback shape, so
// queries and documents are embedded by the same fixed provider.
func (s *chromemStore) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.Embed(ctx, text)
	}
}

// Add embeds the chunks and appends them to the collection. Each entry gets
// a fresh UUID; re-adding identical content therefore creates duplicate
// entries rather than overwriting.
func (s *chromemStore) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return &StoreError{Op: "add", Err: err}
		}
		docs = append(docs, chromem.Document{
			ID:        uuid.New().String(),
			Content:   chunk.Text,
			Metadata:  stringifyMetadata(chunk.Metadata),
			Embedding: embedding,
		})
	}

	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return &StoreError{Op: "add", Err: err}
	}
	s.logger.Debug("added chunks", "collection", s.name, "count", len(docs))
	return nil
}

// Retrieve embeds the query and returns the topK most similar chunks,
// closest first. chromem rejects result counts above the collection size,
// so topK is clamped; an empty collection short-circuits to no results.
func (s *chromemStore) Retrieve(ctx context.Context, query string, topK int) ([]ScoredChunk, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}
	if topK <= 0 {
		return nil, nil
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &StoreError{Op: "retrieve", Err: err}
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, &StoreError{Op: "retrieve", Err: err}
	}

	scored := make([]ScoredChunk, len(results))
	for i, result := range results {
		scored[i] = ScoredChunk{
			Chunk: Chunk{
				Text:     result.Content,
				Metadata: unstringifyMetadata(result.Metadata),
			},
			Score: float64(result.Similarity),
		}
	}
	return scored, nil
}

// Count reports the number of stored entries.
func (s *chromemStore) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Reset drops the collection contents; the next Add starts from scratch.
func (s *chromemStore) Reset(ctx context.Context) error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return &StoreError{Op: "reset", Err: err}
	}
	col, err := s.db.GetOrCreateCollection(s.name, nil, s.embeddingFunc())
	if err != nil {
		return &StoreError{Op: "reset", Err: err}
	}
	s.collection = col
	return nil
}

// Close is a no-op; chromem persists on every write.
func (s *chromemStore) Close() error { return nil }

// stringifyMetadata converts sanitized scalar metadata to chromem's
// map[string]string schema. Only scalars reach this point; the sanitizer
// has already dropped everything else.
func stringifyMetadata(md map[string]interface{}) map[string]string {
	out := make(map[string]string, len(md))
	for k, v := range md {
		switch val := v.(type) {
		case string:
			out[k] = val
		case bool:
			out[k] = strconv.FormatBool(val)
		case float32:
			out[k] = strconv.FormatFloat(float64(val), 'f', -1, 32)
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}

// unstringifyMetadata widens chromem's string metadata back into the
// generic map shape used across the pipeline. Values stay strings; numeric
// provenance like page numbers is for display, not arithmetic.
func unstringifyMetadata(md map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}
