// Package raggy provides a retrieval-augmented question-answering assistant.
// Documents and web pages are loaded, split into overlapping chunks, embedded
// and persisted in a vector store; questions are answered by retrieving the
// closest chunks and prompting a local language model with them.
package raggy

import (
	"context"
	"fmt"

	"github.com/danruto/raggy/rag"
)

// Assistant is the high-level entry point. It owns the full pipeline: a
// document loader, a chunker, an embedding service, a persistent vector
// store and a retrieval chain. The store and chain are opened lazily, so an
// Assistant that only ever answers questions reattaches to whatever an
// earlier session persisted on disk.
//
// An Assistant is not safe for concurrent use.
type Assistant struct {
	loader   *rag.DocumentLoader
	splitter *rag.RecursiveSplitter
	embedder *rag.EmbeddingService
	store    rag.VectorStore
	chain    *rag.RetrievalChain
	llm      rag.LLM
	cfg      assistantConfig
	logger   rag.Logger
}

type assistantConfig struct {
	storeType    string
	storePath    string
	storeAddress string
	collection   string
	embedModel   string
	llmModel     string
	baseURL      string
	temperature  float64
	chunkSize    int
	chunkOverlap int
	topK         int
	rateLimit    int
}

// AssistantOption configures an Assistant.
type AssistantOption func(*assistantConfig, *Assistant)

// WithModel sets the generation model served by ollama.
func WithModel(model string) AssistantOption {
	return func(c *assistantConfig, _ *Assistant) {
		c.llmModel = model
	}
}

// WithEmbeddingModel sets the embedding model served by ollama.
func WithEmbeddingModel(model string) AssistantOption {
	return func(c *assistantConfig, _ *Assistant) {
		c.embedModel = model
	}
}

// WithBaseURL sets the ollama server address for both embedding and
// generation.
func WithBaseURL(baseURL string) AssistantOption {
	return func(c *assistantConfig, _ *Assistant) {
		c.baseURL = baseURL
	}
}

// WithTemperature sets the generation sampling temperature.
func WithTemperature(temperature float64) AssistantOption {
	return func(c *assistantConfig, _ *Assistant) {
		c.temperature = temperature
	}
}

// WithStore selects the vector store backend type.
func WithStore(storeType string) AssistantOption {
	return func(c *assistantConfig, _ *Assistant) {
		c.storeType = storeType
	}
}

// WithStorePath sets the on-disk directory for the persistent store.
func WithStorePath(path string) AssistantOption {
	return func(c *assistantConfig, _ *Assistant) {
		c.storePath = path
	}
}

// WithStoreAddress sets the server address for remote store backends.
func WithStoreAddress(address string) AssistantOption {
	return func(c *assistantConfig, _ *Assistant) {
		c.storeAddress = address
	}
}

// WithCollection sets the store collection name.
func WithCollection(name string) AssistantOption {
	return func(c *assistantConfig, _ *Assistant) {
		c.collection = name
	}
}

// WithChunking sets the chunk size and overlap used during ingestion.
func WithChunking(size, overlap int) AssistantOption {
	return func(c *assistantConfig, _ *Assistant) {
		c.chunkSize = size
		c.chunkOverlap = overlap
	}
}

// WithTopK sets the number of chunks retrieved per question.
func WithTopK(topK int) AssistantOption {
	return func(c *assistantConfig, _ *Assistant) {
		c.topK = topK
	}
}

// WithEmbedRateLimit caps embedding calls at n per second.
func WithEmbedRateLimit(n int) AssistantOption {
	return func(c *assistantConfig, _ *Assistant) {
		c.rateLimit = n
	}
}

// WithLogger sets the logger shared across the assistant's components.
func WithLogger(logger rag.Logger) AssistantOption {
	return func(_ *assistantConfig, a *Assistant) {
		a.logger = logger
	}
}

// WithLLM replaces the generation backend. Intended for alternative
// providers and tests; the default is a local ollama server.
func WithLLM(llm rag.LLM) AssistantOption {
	return func(_ *assistantConfig, a *Assistant) {
		a.llm = llm
	}
}

// WithEmbedder replaces the embedding backend. Intended for alternative
// providers and tests; the default is the ollama provider.
func WithEmbedder(embedder Embedder) AssistantOption {
	return func(_ *assistantConfig, a *Assistant) {
		a.embedder = rag.NewEmbeddingService(embedder)
	}
}

// NewAssistant creates an Assistant with local-first defaults: an ollama
// server on its standard port for both embedding and generation, and an
// embedded store persisted under the default path.
func NewAssistant(opts ...AssistantOption) (*Assistant, error) {
	a := &Assistant{
		logger: rag.NewNopLogger(),
	}
	cfg := assistantConfig{
		storeType:    rag.DefaultStoreType,
		storePath:    rag.DefaultStorePath,
		collection:   rag.DefaultCollection,
		embedModel:   "nomic-embed-text",
		llmModel:     rag.DefaultLLMModel,
		baseURL:      rag.DefaultLLMBaseURL,
		temperature:  rag.DefaultLLMTemperature,
		chunkSize:    rag.DefaultChunkSize,
		chunkOverlap: rag.DefaultChunkOverlap,
		topK:         rag.DefaultTopK,
	}
	for _, opt := range opts {
		opt(&cfg, a)
	}
	a.cfg = cfg

	a.loader = rag.NewDocumentLoader(rag.WithLoaderLogger(a.logger))

	splitter, err := rag.NewRecursiveSplitter(
		rag.ChunkSize(cfg.chunkSize),
		rag.ChunkOverlap(cfg.chunkOverlap),
	)
	if err != nil {
		return nil, fmt.Errorf("configuring splitter: %w", err)
	}
	a.splitter = splitter

	if a.embedder == nil {
		embedder, err := rag.NewEmbedder(
			rag.SetProvider("ollama"),
			rag.SetModel(cfg.embedModel),
			rag.SetBaseURL(cfg.baseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("configuring embedder: %w", err)
		}
		embedOpts := []rag.EmbeddingServiceOption{rag.WithEmbedLogger(a.logger)}
		if cfg.rateLimit > 0 {
			embedOpts = append(embedOpts, rag.WithEmbedRateLimit(cfg.rateLimit))
		}
		a.embedder = rag.NewEmbeddingService(embedder, embedOpts...)
	}

	if a.llm == nil {
		llm, err := rag.NewOllamaLLM(
			rag.WithLLMModel(cfg.llmModel),
			rag.WithLLMBaseURL(cfg.baseURL),
			rag.WithLLMTemperature(cfg.temperature),
			rag.WithLLMLogger(a.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("configuring llm: %w", err)
		}
		a.llm = llm
	}

	return a, nil
}

// ensureStore opens the vector store and chain on first use. After Clear the
// next call reopens the same persistent path, picking up whatever is still
// on disk.
func (a *Assistant) ensureStore() error {
	if a.store != nil {
		return nil
	}
	store, err := rag.NewStore(a.embedder,
		rag.WithStoreType(a.cfg.storeType),
		rag.WithStorePath(a.cfg.storePath),
		rag.WithStoreAddress(a.cfg.storeAddress),
		rag.WithCollection(a.cfg.collection),
		rag.WithStoreLogger(a.logger),
	)
	if err != nil {
		return err
	}
	chain, err := rag.NewRetrievalChain(store, a.llm,
		rag.WithTopK(a.cfg.topK),
		rag.WithChainLogger(a.logger),
	)
	if err != nil {
		store.Close()
		return err
	}
	a.store = store
	a.chain = chain
	return nil
}

// Ingest loads a file, splits it into chunks and persists them. The
// declared content type routes to a loader; pass "" to sniff the file.
// Unsupported content types are skipped without error, leaving the store
// untouched.
func (a *Assistant) Ingest(ctx context.Context, path string, contentType string) error {
	docs, err := a.loader.Load(ctx, path, contentType)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	if docs == nil {
		a.logger.Info("skipping unsupported content type", "path", path, "content_type", contentType)
		return nil
	}
	return a.ingest(ctx, docs)
}

// IngestURL fetches a web page, converts it to text and persists it like a
// local document.
func (a *Assistant) IngestURL(ctx context.Context, pageURL string) error {
	docs, err := a.loader.LoadURL(ctx, pageURL)
	if err != nil {
		return err
	}
	return a.ingest(ctx, docs)
}

func (a *Assistant) ingest(ctx context.Context, docs []rag.Document) error {
	chunks := a.splitter.Split(docs)
	chunks = rag.FilterComplexMetadata(chunks)
	if len(chunks) == 0 {
		return nil
	}
	if err := a.ensureStore(); err != nil {
		return err
	}
	if err := a.store.Add(ctx, chunks); err != nil {
		return err
	}
	a.logger.Info("ingested documents", "documents", len(docs), "chunks", len(chunks))
	return nil
}

// Ask answers a question against the store's current contents. Asking
// before any ingestion is valid; the store opens against its persistent
// path, and if nothing is stored the model answers from its own knowledge.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	if err := a.ensureStore(); err != nil {
		return "", err
	}
	return a.chain.Run(ctx, question)
}

// Count reports the number of chunks currently stored.
func (a *Assistant) Count(ctx context.Context) (int, error) {
	if err := a.ensureStore(); err != nil {
		return 0, err
	}
	return a.store.Count(ctx)
}

// Clear drops the assistant's handle on the store without deleting
// persisted data. The next Ingest or Ask reopens the persistent path, so
// previously stored chunks come back.
func (a *Assistant) Clear() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	a.chain = nil
	a.logger.Info("cleared store handle")
	return err
}

// Reset deletes every stored chunk, then drops the handle.
func (a *Assistant) Reset(ctx context.Context) error {
	if err := a.ensureStore(); err != nil {
		return err
	}
	if err := a.store.Reset(ctx); err != nil {
		return err
	}
	return a.Clear()
}

// Close releases the assistant's resources.
func (a *Assistant) Close() error {
	return a.Clear()
}
