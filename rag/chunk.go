package rag

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Chunker defines the interface for text chunking implementations.
type Chunker interface {
	// Chunk splits the input text into a slice of Chunks according to the
	// implementation's strategy.
	Chunk(text string) []Chunk
}

// TokenCounter defines the interface for measuring text length in units.
// The default counts runes; a tiktoken-backed counter is available for
// model-accurate token counts.
type TokenCounter interface {
	// Count returns the number of units in the given text.
	Count(text string) int
}

// RecursiveSplitter splits text into bounded, overlapping chunks. It tries
// the configured separators in order (paragraph, line, sentence, word by
// default), recursing into pieces that are still too large, and finally
// falls back to splitting at arbitrary rune boundaries. Adjacent small
// pieces are merged back together up to ChunkSize, and each chunk after the
// first starts with the trailing ChunkOverlap units of its predecessor.
type RecursiveSplitter struct {
	// ChunkSize is the maximum size of each chunk in units
	ChunkSize int
	// ChunkOverlap is the number of trailing units shared with the
	// previous chunk
	ChunkOverlap int
	// Separators are tried in order; the empty string means "split at
	// rune boundaries" and should come last
	Separators []string
	// TokenCounter measures piece and chunk sizes
	TokenCounter TokenCounter
}

// SplitterOption configures a RecursiveSplitter.
type SplitterOption func(*RecursiveSplitter)

// Splitter defaults.
const (
	DefaultChunkSize    = 1024
	DefaultChunkOverlap = 100
)

// ChunkSize sets the maximum chunk size in units.
func ChunkSize(size int) SplitterOption {
	return func(s *RecursiveSplitter) {
		s.ChunkSize = size
	}
}

// ChunkOverlap sets the number of trailing units shared between adjacent
// chunks.
func ChunkOverlap(overlap int) SplitterOption {
	return func(s *RecursiveSplitter) {
		s.ChunkOverlap = overlap
	}
}

// WithSeparators replaces the separator hierarchy.
func WithSeparators(separators []string) SplitterOption {
	return func(s *RecursiveSplitter) {
		s.Separators = separators
	}
}

// WithTokenCounter sets a custom token counter implementation.
func WithTokenCounter(counter TokenCounter) SplitterOption {
	return func(s *RecursiveSplitter) {
		s.TokenCounter = counter
	}
}

// DefaultSeparators returns the separator hierarchy used when none is
// configured: paragraphs first, then lines, then sentence ends, then words,
// then arbitrary rune boundaries.
func DefaultSeparators() []string {
	return []string{"\n\n", "\n", ". ", "! ", "? ", " ", ""}
}

// NewRecursiveSplitter creates a RecursiveSplitter with the given options.
// Defaults: ChunkSize 1024, ChunkOverlap 100, rune-based counting and the
// DefaultSeparators hierarchy.
func NewRecursiveSplitter(options ...SplitterOption) (*RecursiveSplitter, error) {
	s := &RecursiveSplitter{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		Separators:   DefaultSeparators(),
		TokenCounter: RuneCounter{},
	}
	for _, option := range options {
		option(s)
	}
	if s.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", s.ChunkSize)
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, chunk size), got %d", s.ChunkOverlap)
	}
	return s, nil
}

// Chunk splits text into chunks of at most ChunkSize units. The only case
// where a chunk exceeds the bound is a single atomic piece that none of the
// configured separators can break (for example an unbroken token run longer
// than ChunkSize when the separators stop at word boundaries).
func (s *RecursiveSplitter) Chunk(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	pieces := s.splitRecursive(text, s.Separators)
	return s.merge(pieces)
}

// Split maps the splitter over documents, producing chunks in document
// order. Chunk metadata is the parent document's metadata copied verbatim;
// filtering for the store schema happens downstream.
func (s *RecursiveSplitter) Split(docs []Document) []Chunk {
	var chunks []Chunk
	for _, doc := range docs {
		for _, c := range s.Chunk(doc.Content) {
			c.Metadata = copyMetadata(doc.Metadata)
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// splitRecursive breaks text into ordered pieces, each within ChunkSize
// where the separators allow it. Separators stay attached to the piece they
// terminate so that concatenating pieces reconstructs the input.
func (s *RecursiveSplitter) splitRecursive(text string, separators []string) []string {
	if s.TokenCounter.Count(text) <= s.ChunkSize {
		return []string{text}
	}
	if len(separators) == 0 {
		return []string{text}
	}

	sep := separators[0]
	rest := separators[1:]

	if sep == "" {
		return s.splitRunes(text)
	}

	parts := splitKeep(text, sep)
	if len(parts) == 1 {
		// Separator not present, try the next one.
		return s.splitRecursive(text, rest)
	}

	var pieces []string
	for _, part := range parts {
		if s.TokenCounter.Count(part) > s.ChunkSize {
			pieces = append(pieces, s.splitRecursive(part, rest)...)
		} else {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

// splitRunes is the last resort: groups of at most ChunkSize runes. With a
// non-rune TokenCounter a group may still measure above ChunkSize units;
// that is the documented oversize edge case.
func (s *RecursiveSplitter) splitRunes(text string) []string {
	runes := []rune(text)
	var pieces []string
	for start := 0; start < len(runes); start += s.ChunkSize {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}

// merge packs pieces into chunks of at most ChunkSize units, carrying the
// previous chunk's tail into the next chunk as overlap. The overlap is
// shortened when needed so it never pushes a chunk over the bound.
func (s *RecursiveSplitter) merge(pieces []string) []Chunk {
	var chunks []Chunk
	var sb strings.Builder
	count := 0
	fresh := true // current chunk holds no piece yet, only overlap

	flush := func() string {
		text := sb.String()
		chunks = append(chunks, Chunk{Text: text})
		sb.Reset()
		count = 0
		fresh = true
		return text
	}

	for _, piece := range pieces {
		pc := s.TokenCounter.Count(piece)
		if !fresh && count+pc > s.ChunkSize {
			prev := flush()
			budget := s.ChunkOverlap
			if room := s.ChunkSize - pc; room < budget {
				budget = room
			}
			if budget > 0 {
				tail := s.overlapTail(prev, budget)
				sb.WriteString(tail)
				count = s.TokenCounter.Count(tail)
			}
		}
		sb.WriteString(piece)
		count += pc
		fresh = false
	}
	if sb.Len() > 0 && !fresh {
		flush()
	}
	return chunks
}

// overlapTail returns the longest suffix of text measuring at most maxUnits.
func (s *RecursiveSplitter) overlapTail(text string, maxUnits int) string {
	runes := []rune(text)
	start := len(runes)
	for start > 0 {
		next := start - 1
		if s.TokenCounter.Count(string(runes[next:])) > maxUnits {
			break
		}
		start = next
	}
	return string(runes[start:])
}

// splitKeep splits text on sep, keeping sep attached to the piece it ends.
func splitKeep(text, sep string) []string {
	raw := strings.Split(text, sep)
	if len(raw) == 1 {
		return raw
	}
	parts := make([]string, 0, len(raw))
	for i, p := range raw {
		if i < len(raw)-1 {
			p += sep
		}
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// RuneCounter counts length in runes. It matches the character-based sizing
// of the default configuration.
type RuneCounter struct{}

// Count returns the number of runes in the text.
func (RuneCounter) Count(text string) int {
	return len([]rune(text))
}

// WordCounter counts whitespace-separated words. A rough approximation of
// model tokens, useful when tiktoken's tables are unavailable.
type WordCounter struct{}

// Count returns the number of words in the text.
func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// TikTokenCounter provides accurate token counting using the tiktoken
// library, which implements the tokenization schemes used by OpenAI models.
type TikTokenCounter struct {
	tke *tiktoken.Tiktoken
}

// NewTikTokenCounter creates a TikTokenCounter for the given encoding,
// for example "cl100k_base".
func NewTikTokenCounter(encoding string) (*TikTokenCounter, error) {
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding: %w", err)
	}
	return &TikTokenCounter{tke: tke}, nil
}

// Count returns the exact number of tokens under the configured encoding.
func (ttc *TikTokenCounter) Count(text string) int {
	return len(ttc.tke.Encode(text, nil, nil))
}
