package raggy

import (
	"github.com/danruto/raggy/rag"
)

// Chunk represents a piece of text carrying the metadata of the document it
// was split from.
type Chunk = rag.Chunk

// Chunker defines the interface for text chunking implementations.
type Chunker interface {
	// Chunk splits the input text into a slice of Chunks according to the
	// implementation's strategy.
	Chunk(text string) []Chunk
}

// TokenCounter defines the interface for measuring text length in units.
type TokenCounter interface {
	// Count returns the number of units in the given text.
	Count(text string) int
}

// ChunkerOption is a function type for configuring Chunker instances.
type ChunkerOption = rag.SplitterOption

// NewChunker creates a recursive splitter. By default it produces chunks of
// at most 1024 runes with a 100 rune overlap, splitting on paragraphs first
// and falling back through lines, sentences and words.
func NewChunker(options ...ChunkerOption) (Chunker, error) {
	return rag.NewRecursiveSplitter(options...)
}

// ChunkSize sets the maximum size of each chunk in units.
func ChunkSize(size int) ChunkerOption {
	return rag.ChunkSize(size)
}

// ChunkOverlap sets the number of trailing units shared between adjacent
// chunks.
func ChunkOverlap(overlap int) ChunkerOption {
	return rag.ChunkOverlap(overlap)
}

// WithSeparators replaces the separator hierarchy tried during splitting.
func WithSeparators(separators []string) ChunkerOption {
	return rag.WithSeparators(separators)
}

// WithTokenCounter sets a custom token counter implementation. This allows
// swapping the default rune counting for word-based counting or
// model-accurate tokenization.
func WithTokenCounter(counter TokenCounter) ChunkerOption {
	return rag.WithTokenCounter(counter)
}

// NewWordTokenCounter creates a simple whitespace-based word counter.
func NewWordTokenCounter() TokenCounter {
	return rag.WordCounter{}
}

// NewTikTokenCounter creates a token counter using the tiktoken library,
// which implements the same tokenization used by OpenAI models. The encoding
// parameter specifies which tokenization model to use (e.g. "cl100k_base").
func NewTikTokenCounter(encoding string) (TokenCounter, error) {
	return rag.NewTikTokenCounter(encoding)
}
