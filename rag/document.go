package rag

// Document represents one raw ingested unit of text with provenance
// metadata. Loaders produce Documents; they are never persisted directly,
// only their chunks are.
type Document struct {
	// Content is the extracted text of the document
	Content string
	// Metadata carries source-level provenance such as the file path, URL
	// or page number. Values may be of any type at this stage; complex
	// values are dropped by FilterComplexMetadata before persistence.
	Metadata map[string]interface{}
}

// Chunk is a bounded slice of a Document's text together with the metadata
// inherited from its parent. Chunks are created during ingestion, embedded
// and written once, and never mutated afterwards.
type Chunk struct {
	// Text contains the actual content of the chunk
	Text string
	// Metadata is the parent Document's metadata copied verbatim; the
	// sanitizer narrows it to scalar values before persistence
	Metadata map[string]interface{}
}

// ScoredChunk is a retrieval result: a stored chunk plus its similarity to
// the query under the store's native metric, closest first.
type ScoredChunk struct {
	Chunk
	Score float64
}

// copyMetadata clones a metadata map so chunks never share state with their
// parent Document or with each other.
func copyMetadata(md map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}
