package raggy

import (
	"github.com/danruto/raggy/rag"
)

// RetrievalChain answers questions by retrieving stored chunks and prompting
// an LLM with them.
type RetrievalChain = rag.RetrievalChain

// ChainOption configures a RetrievalChain.
type ChainOption = rag.ChainOption

// NewRetrievalChain wires a store and an LLM into a question-answering
// pipeline, for callers composing the parts by hand instead of using the
// Assistant.
func NewRetrievalChain(store VectorStore, llm LLM, opts ...ChainOption) (*RetrievalChain, error) {
	return rag.NewRetrievalChain(store, llm, opts...)
}
