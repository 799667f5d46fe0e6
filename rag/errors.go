package rag

import "fmt"

// FetchError reports a failed URL ingestion: DNS, connection, HTTP status or
// markup conversion problems. It is recoverable; callers should surface the
// URL and cause to the user and keep the process alive.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StoreError reports a failure while embedding or persisting chunks. After a
// StoreError the batch is in unknown partial state; re-ingesting the same
// document is safe but may create duplicate entries.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vector store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// GenerationError reports that the generation backend was unreachable or
// returned an error. Recoverable; callers should show a failure message
// instead of crashing.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation with model %s: %v", e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
