package raggy

import (
	"github.com/danruto/raggy/rag"
)

// FetchError reports a failed URL fetch.
type FetchError = rag.FetchError

// StoreError reports a failed vector store operation.
type StoreError = rag.StoreError

// GenerationError reports a failed LLM completion.
type GenerationError = rag.GenerationError
