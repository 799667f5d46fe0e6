package rag

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// Message is a single turn of a chat exchange.
type Message struct {
	Role    string
	Content string
}

// Chat roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// LLM generates a completion from an ordered list of chat messages.
type LLM interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// OllamaLLM talks to a locally running ollama server. Responses are
// collected without streaming and sampled at a fixed low temperature, which
// keeps grounded answers close to the retrieved context.
type OllamaLLM struct {
	client      *ollama.Client
	model       string
	temperature float64
	logger      Logger
}

// LLM defaults. The endpoint matches ollama's standard local port.
const (
	DefaultLLMBaseURL     = "http://localhost:11434"
	DefaultLLMModel       = "llama3.2:1b"
	DefaultLLMTemperature = 0.3
)

// LLMOption configures an OllamaLLM.
type LLMOption func(*llmConfig)

type llmConfig struct {
	baseURL     string
	model       string
	temperature float64
	timeout     time.Duration
	logger      Logger
}

// WithLLMBaseURL sets the ollama server address.
func WithLLMBaseURL(baseURL string) LLMOption {
	return func(c *llmConfig) {
		c.baseURL = baseURL
	}
}

// WithLLMModel sets the generation model.
func WithLLMModel(model string) LLMOption {
	return func(c *llmConfig) {
		c.model = model
	}
}

// WithLLMTemperature sets the sampling temperature.
func WithLLMTemperature(temperature float64) LLMOption {
	return func(c *llmConfig) {
		c.temperature = temperature
	}
}

// WithLLMTimeout bounds a single generation request.
func WithLLMTimeout(timeout time.Duration) LLMOption {
	return func(c *llmConfig) {
		c.timeout = timeout
	}
}

// WithLLMLogger sets the logger used by the LLM client.
func WithLLMLogger(logger Logger) LLMOption {
	return func(c *llmConfig) {
		c.logger = logger
	}
}

// NewOllamaLLM creates a chat client against an ollama server.
func NewOllamaLLM(opts ...LLMOption) (*OllamaLLM, error) {
	cfg := &llmConfig{
		baseURL:     DefaultLLMBaseURL,
		model:       DefaultLLMModel,
		temperature: DefaultLLMTemperature,
		timeout:     2 * time.Minute,
		logger:      NopLogger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	parsed, err := url.Parse(cfg.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL %q: %w", cfg.baseURL, err)
	}

	return &OllamaLLM{
		client:      ollama.NewClient(parsed, &http.Client{Timeout: cfg.timeout}),
		model:       cfg.model,
		temperature: cfg.temperature,
		logger:      cfg.logger,
	}, nil
}

// Generate sends the messages as a single non-streaming chat request and
// returns the assembled completion.
func (l *OllamaLLM) Generate(ctx context.Context, messages []Message) (string, error) {
	chatMessages := make([]ollama.Message, len(messages))
	for i, m := range messages {
		chatMessages[i] = ollama.Message{Role: m.Role, Content: m.Content}
	}

	stream := false
	req := &ollama.ChatRequest{
		Model:    l.model,
		Messages: chatMessages,
		Stream:   &stream,
		Options: map[string]interface{}{
			"temperature": l.temperature,
		},
	}

	var reply strings.Builder
	err := l.client.Chat(ctx, req, func(resp ollama.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", &GenerationError{Model: l.model, Err: err}
	}

	l.logger.Debug("generated completion", "model", l.model, "length", reply.Len())
	return reply.String(), nil
}
