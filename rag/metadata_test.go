package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterComplexMetadata(t *testing.T) {
	chunks := []Chunk{
		{
			Text: "first",
			Metadata: map[string]interface{}{
				"source": "doc.pdf",
				"page":   3,
				"score":  0.5,
				"draft":  true,
				"tags":   []string{"a", "b"},
				"nested": map[string]interface{}{"k": "v"},
			},
		},
		{
			Text:     "second",
			Metadata: map[string]interface{}{"anything": nil},
		},
	}

	filtered := FilterComplexMetadata(chunks)
	require.Len(t, filtered, 2)

	assert.Equal(t, "first", filtered[0].Text)
	assert.Equal(t, map[string]interface{}{
		"source": "doc.pdf",
		"page":   3,
		"score":  0.5,
		"draft":  true,
	}, filtered[0].Metadata)

	// A chunk is never dropped, even if every key goes.
	assert.Equal(t, "second", filtered[1].Text)
	assert.Empty(t, filtered[1].Metadata)
}

func TestFilterComplexMetadataLeavesInputAlone(t *testing.T) {
	chunks := []Chunk{
		{Text: "a", Metadata: map[string]interface{}{"keep": "x", "drop": []int{1}}},
	}
	_ = FilterComplexMetadata(chunks)

	assert.Contains(t, chunks[0].Metadata, "drop")
}

func TestFilterComplexMetadataEmpty(t *testing.T) {
	assert.Empty(t, FilterComplexMetadata(nil))
	assert.Empty(t, FilterComplexMetadata([]Chunk{}))
}
