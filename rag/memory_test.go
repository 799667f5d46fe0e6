package rag

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hashEmbedder maps each word into a fixed-size bag-of-words vector, so
// texts sharing words land close under cosine similarity. Deterministic and
// offline.
type hashEmbedder struct {
	dim  int
	fail bool
}

func (e *hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.fail {
		return nil, fmt.Errorf("embedder down")
	}
	v := make([]float32, e.dim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(w))
		v[h.Sum32()%uint32(e.dim)]++
	}
	return v, nil
}

func (e *hashEmbedder) GetDimension() (int, error) { return e.dim, nil }

func newTestStore(t *testing.T) VectorStore {
	t.Helper()
	service := NewEmbeddingService(&hashEmbedder{dim: 64})
	store, err := NewStore(service, WithStoreType("memory"))
	require.NoError(t, err)
	return store
}

func TestMemoryStoreEmptyRetrieve(t *testing.T) {
	store := newTestStore(t)

	results, err := store.Retrieve(context.Background(), "anything", 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryStoreAddAndRetrieve(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Add(ctx, []Chunk{
		{Text: "the capital of freedonia is sylvania city", Metadata: map[string]interface{}{"source": "atlas.txt"}},
		{Text: "bananas ripen faster in paper bags", Metadata: map[string]interface{}{"source": "kitchen.txt"}},
		{Text: "the treaty was signed in autumn", Metadata: map[string]interface{}{"source": "history.txt"}},
	})
	require.NoError(t, err)

	results, err := store.Retrieve(ctx, "what is the capital of freedonia", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Text, "freedonia")
	assert.Equal(t, "atlas.txt", results[0].Metadata["source"])
}

func TestMemoryStoreScoresDescend(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []Chunk{
		{Text: "apples and oranges"},
		{Text: "oranges and lemons"},
		{Text: "completely unrelated machinery manual"},
	}))

	results, err := store.Retrieve(ctx, "oranges", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestMemoryStoreTopKClamped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []Chunk{{Text: "only entry"}}))

	results, err := store.Retrieve(ctx, "entry", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestMemoryStoreAddAppends(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []Chunk{{Text: "one"}, {Text: "two"}}))
	require.NoError(t, store.Add(ctx, []Chunk{{Text: "three"}}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMemoryStoreReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []Chunk{{Text: "gone soon"}}))
	require.NoError(t, store.Reset(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	results, err := store.Retrieve(ctx, "gone", 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryStoreEmbedFailure(t *testing.T) {
	service := NewEmbeddingService(&hashEmbedder{dim: 8, fail: true})
	store, err := NewStore(service, WithStoreType("memory"))
	require.NoError(t, err)

	err = store.Add(context.Background(), []Chunk{{Text: "x"}})
	require.Error(t, err)

	var storeErr *StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestNewStoreUnknownType(t *testing.T) {
	service := NewEmbeddingService(&hashEmbedder{dim: 8})
	_, err := NewStore(service, WithStoreType("bolt"))
	require.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
