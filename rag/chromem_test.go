package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChromemTestStore(t *testing.T, dir string) VectorStore {
	t.Helper()
	service := NewEmbeddingService(&hashEmbedder{dim: 64})
	store, err := NewStore(service,
		WithStoreType("chromem"),
		WithStorePath(dir),
	)
	require.NoError(t, err)
	return store
}

func TestChromemStoreRoundTrip(t *testing.T) {
	store := newChromemTestStore(t, t.TempDir())
	ctx := context.Background()

	err := store.Add(ctx, []Chunk{
		{Text: "the cathedral was finished in 1882", Metadata: map[string]interface{}{"source": "guide.pdf", "page": 12}},
		{Text: "trains depart hourly from the old station", Metadata: map[string]interface{}{"source": "guide.pdf", "page": 31}},
	})
	require.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	results, err := store.Retrieve(ctx, "when was the cathedral finished", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Text, "cathedral")
	assert.Equal(t, "guide.pdf", results[0].Metadata["source"])
	assert.Equal(t, "12", results[0].Metadata["page"])
}

func TestChromemStoreEmptyRetrieve(t *testing.T) {
	store := newChromemTestStore(t, t.TempDir())

	results, err := store.Retrieve(context.Background(), "anything", 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChromemStoreTopKClamped(t *testing.T) {
	store := newChromemTestStore(t, t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []Chunk{{Text: "single entry"}}))

	results, err := store.Retrieve(ctx, "entry", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestChromemStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := newChromemTestStore(t, dir)
	require.NoError(t, first.Add(ctx, []Chunk{{Text: "persisted across sessions"}}))
	require.NoError(t, first.Close())

	second := newChromemTestStore(t, dir)
	count, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := second.Retrieve(ctx, "persisted sessions", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "persisted across sessions", results[0].Text)
}

func TestChromemStoreReset(t *testing.T) {
	store := newChromemTestStore(t, t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []Chunk{{Text: "soon gone"}}))
	require.NoError(t, store.Reset(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, store.Add(ctx, []Chunk{{Text: "fresh start"}}))
	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
