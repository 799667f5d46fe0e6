package raggy

import (
	"github.com/danruto/raggy/rag"
)

// Document is a unit of loaded content with its provenance metadata.
type Document = rag.Document

// Loader reads one source into documents.
type Loader = rag.Loader

// DocumentLoader routes sources to format-specific loaders and fetches web
// pages.
type DocumentLoader = rag.DocumentLoader

// LoaderOption configures a DocumentLoader.
type LoaderOption = rag.LoaderOption

// NewDocumentLoader creates a loader with PDF, DOCX and plain-text support
// registered.
func NewDocumentLoader(opts ...LoaderOption) *DocumentLoader {
	return rag.NewDocumentLoader(opts...)
}
