package rag

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM records the prompt it was given and returns a fixed answer.
type scriptedLLM struct {
	answer string
	err    error
	got    []Message
}

func (l *scriptedLLM) Generate(ctx context.Context, messages []Message) (string, error) {
	l.got = messages
	if l.err != nil {
		return "", l.err
	}
	return l.answer, nil
}

func newTestChain(t *testing.T, llm LLM, opts ...ChainOption) (*RetrievalChain, VectorStore) {
	t.Helper()
	store := newTestStore(t)
	chain, err := NewRetrievalChain(store, llm, opts...)
	require.NoError(t, err)
	return chain, store
}

func TestNewRetrievalChainValidation(t *testing.T) {
	store := newTestStore(t)

	_, err := NewRetrievalChain(nil, &scriptedLLM{})
	require.Error(t, err)

	_, err = NewRetrievalChain(store, nil)
	require.Error(t, err)
}

func TestChainPromptShape(t *testing.T) {
	llm := &scriptedLLM{answer: "the answer"}
	chain, store := newTestChain(t, llm)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []Chunk{
		{Text: "freedonia declared independence in 1933"},
	}))

	answer, err := chain.Run(ctx, "when did freedonia declare independence?")
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)

	require.Len(t, llm.got, 2)
	assert.Equal(t, RoleSystem, llm.got[0].Role)
	assert.Contains(t, llm.got[0].Content, "question-answering")

	assert.Equal(t, RoleUser, llm.got[1].Role)
	assert.True(t, strings.HasPrefix(llm.got[1].Content, "Here is the document pieces: "))
	assert.Contains(t, llm.got[1].Content, "freedonia declared independence in 1933")
	assert.Contains(t, llm.got[1].Content, "\nQuestion: when did freedonia declare independence?")
}

func TestChainEmptyStoreStillAnswers(t *testing.T) {
	llm := &scriptedLLM{answer: "from general knowledge"}
	chain, _ := newTestChain(t, llm)

	answer, err := chain.Run(context.Background(), "what color is the sky?")
	require.NoError(t, err)
	assert.Equal(t, "from general knowledge", answer)

	require.Len(t, llm.got, 2)
	assert.Contains(t, llm.got[1].Content, "Here is the document pieces: \nQuestion: what color is the sky?")
}

func TestChainJoinsChunksWithBlankLine(t *testing.T) {
	llm := &scriptedLLM{answer: "ok"}
	chain, store := newTestChain(t, llm, WithTopK(2))
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []Chunk{
		{Text: "oranges grow on trees"},
		{Text: "oranges are citrus fruit"},
		{Text: "submarines travel underwater"},
	}))

	_, err := chain.Run(ctx, "tell me about oranges")
	require.NoError(t, err)

	user := llm.got[1].Content
	assert.Contains(t, user, "\n\n")
	assert.Contains(t, user, "oranges")
	assert.NotContains(t, user, "submarines")
}

func TestChainTopKLimitsContext(t *testing.T) {
	llm := &scriptedLLM{answer: "ok"}
	chain, store := newTestChain(t, llm, WithTopK(1))
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []Chunk{
		{Text: "alpha alpha alpha"},
		{Text: "alpha beta"},
	}))

	_, err := chain.Run(ctx, "alpha")
	require.NoError(t, err)

	user := llm.got[1].Content
	block := strings.TrimPrefix(user, "Here is the document pieces: ")
	block = block[:strings.Index(block, "\nQuestion:")]
	assert.NotContains(t, block, "\n\n")
}

func TestChainSameQuestionSameRetrieval(t *testing.T) {
	llm := &scriptedLLM{answer: "ok"}
	chain, store := newTestChain(t, llm)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []Chunk{
		{Text: "the vault code is 4512"},
		{Text: "lunch is at noon"},
	}))

	_, err := chain.Run(ctx, "what is the vault code?")
	require.NoError(t, err)
	first := llm.got[1].Content

	_, err = chain.Run(ctx, "what is the vault code?")
	require.NoError(t, err)
	assert.Equal(t, first, llm.got[1].Content)
}

func TestChainPropagatesGenerationError(t *testing.T) {
	llm := &scriptedLLM{err: &GenerationError{Model: "m", Err: fmt.Errorf("model not found")}}
	chain, _ := newTestChain(t, llm)

	_, err := chain.Run(context.Background(), "anything")
	require.Error(t, err)

	var genErr *GenerationError
	assert.ErrorAs(t, err, &genErr)
}
