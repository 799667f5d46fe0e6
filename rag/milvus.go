package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// milvusStore is the server-backed VectorStore for deployments that outgrow
// the embedded backend. The collection schema is fixed at creation:
// ID (varchar, primary), Text, Metadata (JSON as varchar) and an
// HNSW-indexed Embedding under the inner-product metric, with the dimension
// taken from the embedder.
type milvusStore struct {
	client   client.Client
	embedder *EmbeddingService
	name     string
	logger   Logger
	loaded   bool
}

const (
	milvusMaxTextLength = 65535
	milvusIDLength      = 64
	milvusHNSWM         = 16
	milvusHNSWEfBuild   = 256
	milvusHNSWEfSearch  = 64
)

func newMilvusStore(cfg *StoreConfig, embedder *EmbeddingService) (*milvusStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
	if err != nil {
		return nil, &StoreError{Op: "open", Err: fmt.Errorf("connect %s: %w", cfg.Address, err)}
	}

	return &milvusStore{
		client:   c,
		embedder: embedder,
		name:     cfg.Collection,
		logger:   cfg.Logger,
	}, nil
}

// ensureCollection creates the collection, its index, and loads it on first
// use. Dimension and metric are fixed here and must match on every reopen.
func (s *milvusStore) ensureCollection(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	exists, err := s.client.HasCollection(ctx, s.name)
	if err != nil {
		return err
	}
	if !exists {
		dim, err := s.embedder.Dimension()
		if err != nil {
			return fmt.Errorf("embedding dimension: %w", err)
		}
		schema := entity.NewSchema().WithName(s.name).
			WithField(entity.NewField().WithName("ID").WithDataType(entity.FieldTypeVarChar).WithMaxLength(milvusIDLength).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName("Text").WithDataType(entity.FieldTypeVarChar).WithMaxLength(milvusMaxTextLength)).
			WithField(entity.NewField().WithName("Metadata").WithDataType(entity.FieldTypeVarChar).WithMaxLength(milvusMaxTextLength)).
			WithField(entity.NewField().WithName("Embedding").WithDataType(entity.FieldTypeFloatVector).WithDim(int64(dim)))

		if err := s.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}

		idx, err := entity.NewIndexHNSW(entity.IP, milvusHNSWM, milvusHNSWEfBuild)
		if err != nil {
			return fmt.Errorf("build index: %w", err)
		}
		if err := s.client.CreateIndex(ctx, s.name, "Embedding", idx, false); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
		s.logger.Info("created milvus collection", "collection", s.name, "dimension", dim)
	}

	if err := s.client.LoadCollection(ctx, s.name, false); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	s.loaded = true
	return nil
}

// Add embeds the chunks and inserts them as one batch.
func (s *milvusStore) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx); err != nil {
		return &StoreError{Op: "add", Err: err}
	}

	vectors, err := s.embedder.EmbedChunks(ctx, chunks)
	if err != nil {
		return &StoreError{Op: "add", Err: err}
	}

	dim := len(vectors[0])
	ids := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	metas := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = uuid.New().String()
		texts[i] = chunk.Text
		encoded, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return &StoreError{Op: "add", Err: fmt.Errorf("encode metadata: %w", err)}
		}
		metas[i] = string(encoded)
	}

	_, err = s.client.Insert(ctx, s.name, "",
		entity.NewColumnVarChar("ID", ids),
		entity.NewColumnVarChar("Text", texts),
		entity.NewColumnVarChar("Metadata", metas),
		entity.NewColumnFloatVector("Embedding", dim, vectors),
	)
	if err != nil {
		return &StoreError{Op: "add", Err: err}
	}
	if err := s.client.Flush(ctx, s.name, false); err != nil {
		return &StoreError{Op: "add", Err: err}
	}
	s.logger.Debug("added chunks", "collection", s.name, "count", len(chunks))
	return nil
}

// Retrieve embeds the query and runs an inner-product HNSW search.
func (s *milvusStore) Retrieve(ctx context.Context, query string, topK int) ([]ScoredChunk, error) {
	if topK <= 0 {
		return nil, nil
	}

	exists, err := s.client.HasCollection(ctx, s.name)
	if err != nil {
		return nil, &StoreError{Op: "retrieve", Err: err}
	}
	if !exists {
		return nil, nil
	}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, &StoreError{Op: "retrieve", Err: err}
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &StoreError{Op: "retrieve", Err: err}
	}

	sp, err := entity.NewIndexHNSWSearchParam(milvusHNSWEfSearch)
	if err != nil {
		return nil, &StoreError{Op: "retrieve", Err: err}
	}

	results, err := s.client.Search(ctx, s.name, nil, "", []string{"Text", "Metadata"},
		[]entity.Vector{entity.FloatVector(embedding)},
		"Embedding", entity.IP, topK, sp)
	if err != nil {
		return nil, &StoreError{Op: "retrieve", Err: err}
	}

	var scored []ScoredChunk
	for _, rs := range results {
		for i := 0; i < rs.ResultCount; i++ {
			chunk := Chunk{Metadata: map[string]interface{}{}}
			if col := rs.Fields.GetColumn("Text"); col != nil {
				if v, err := col.Get(i); err == nil {
					if text, ok := v.(string); ok {
						chunk.Text = text
					}
				}
			}
			if col := rs.Fields.GetColumn("Metadata"); col != nil {
				if v, err := col.Get(i); err == nil {
					if encoded, ok := v.(string); ok && encoded != "" {
						var md map[string]interface{}
						if err := json.Unmarshal([]byte(encoded), &md); err == nil {
							chunk.Metadata = md
						}
					}
				}
			}
			scored = append(scored, ScoredChunk{Chunk: chunk, Score: float64(rs.Scores[i])})
		}
	}
	return scored, nil
}

// Count reports the server-side row count.
func (s *milvusStore) Count(ctx context.Context) (int, error) {
	exists, err := s.client.HasCollection(ctx, s.name)
	if err != nil {
		return 0, &StoreError{Op: "count", Err: err}
	}
	if !exists {
		return 0, nil
	}
	stats, err := s.client.GetCollectionStatistics(ctx, s.name)
	if err != nil {
		return 0, &StoreError{Op: "count", Err: err}
	}
	count, err := strconv.Atoi(stats["row_count"])
	if err != nil {
		return 0, &StoreError{Op: "count", Err: fmt.Errorf("parse row_count: %w", err)}
	}
	return count, nil
}

// Reset drops the collection; the next Add recreates it.
func (s *milvusStore) Reset(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, s.name)
	if err != nil {
		return &StoreError{Op: "reset", Err: err}
	}
	if exists {
		if err := s.client.DropCollection(ctx, s.name); err != nil {
			return &StoreError{Op: "reset", Err: err}
		}
	}
	s.loaded = false
	return nil
}

// Close releases the client connection.
func (s *milvusStore) Close() error {
	return s.client.Close()
}
