package raggy

import (
	"github.com/danruto/raggy/rag"
)

// Message is a single turn of a chat exchange.
type Message = rag.Message

// LLM generates a completion from an ordered list of chat messages.
type LLM = rag.LLM

// LLMOption configures an ollama-backed LLM.
type LLMOption = rag.LLMOption

// NewOllamaLLM creates a chat client against an ollama server, for callers
// composing a pipeline by hand.
func NewOllamaLLM(opts ...LLMOption) (LLM, error) {
	return rag.NewOllamaLLM(opts...)
}
