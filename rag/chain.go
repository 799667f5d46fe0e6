package rag

import (
	"context"
	"fmt"
	"strings"
)

// systemInstruction grounds the model in the retrieved context while leaving
// it free to answer from general knowledge when the context is irrelevant.
const systemInstruction = `You are an assistant for question-answering tasks. ` +
	`Use the following pieces of retrieved context to answer the question when they are relevant. ` +
	`If the context does not contain the answer, answer from your own knowledge instead of forcing the context to fit. ` +
	`If you do not know the answer, say that you do not know. ` +
	`Do not connect unrelated pieces of context to each other unless the question asks for it.`

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 4

// promptInput carries the retrieval output into prompt assembly.
type promptInput struct {
	Context  string
	Question string
}

// RetrievalChain answers questions by retrieving the closest stored chunks,
// assembling them into a fixed two-message prompt and generating a
// completion. The chain is stateless between calls; every question runs the
// full retrieve-assemble-generate pipeline against the store's current
// contents.
type RetrievalChain struct {
	store  VectorStore
	llm    LLM
	topK   int
	logger Logger
}

// ChainOption configures a RetrievalChain.
type ChainOption func(*RetrievalChain)

// WithTopK sets the number of chunks retrieved per question.
func WithTopK(topK int) ChainOption {
	return func(c *RetrievalChain) {
		c.topK = topK
	}
}

// WithChainLogger sets the logger used by the chain.
func WithChainLogger(logger Logger) ChainOption {
	return func(c *RetrievalChain) {
		c.logger = logger
	}
}

// NewRetrievalChain wires a store and an LLM into a question-answering
// pipeline.
func NewRetrievalChain(store VectorStore, llm LLM, opts ...ChainOption) (*RetrievalChain, error) {
	if store == nil {
		return nil, fmt.Errorf("retrieval chain requires a vector store")
	}
	if llm == nil {
		return nil, fmt.Errorf("retrieval chain requires an LLM")
	}
	c := &RetrievalChain{
		store:  store,
		llm:    llm,
		topK:   DefaultTopK,
		logger: NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run answers the question against the store's current contents. An empty
// store is not an error; the model simply answers with an empty context
// block.
func (c *RetrievalChain) Run(ctx context.Context, question string) (string, error) {
	scored, err := c.retrieve(ctx, question)
	if err != nil {
		return "", err
	}

	input := c.assemble(scored, question)
	messages := c.prompt(input)

	c.logger.Debug("running chain", "question_length", len(question), "chunks", len(scored))
	answer, err := c.llm.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	return answer, nil
}

// retrieve is the first stage: nearest chunks from the store.
func (c *RetrievalChain) retrieve(ctx context.Context, question string) ([]ScoredChunk, error) {
	scored, err := c.store.Retrieve(ctx, question, c.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}
	return scored, nil
}

// assemble is the second stage: chunk texts joined into one context block.
func (c *RetrievalChain) assemble(scored []ScoredChunk, question string) promptInput {
	texts := make([]string, len(scored))
	for i, sc := range scored {
		texts[i] = sc.Text
	}
	return promptInput{
		Context:  strings.Join(texts, "\n\n"),
		Question: question,
	}
}

// prompt is the third stage: the fixed two-message chat prompt.
func (c *RetrievalChain) prompt(input promptInput) []Message {
	return []Message{
		{Role: RoleSystem, Content: systemInstruction},
		{Role: RoleUser, Content: fmt.Sprintf("Here is the document pieces: %s\nQuestion: %s", input.Context, input.Question)},
	}
}
