// Package config loads assistant configuration from defaults, an optional
// JSON file and environment variables, in increasing order of precedence.
//
// Configuration file search paths:
//  1. $RAGGY_CONFIG
//  2. ~/.raggy/config.json
//  3. ~/.config/raggy/config.json
//  4. ./raggy.json
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the assistant pipeline. Zero values are
// replaced by defaults in Load.
type Config struct {
	// Model is the generation model served by ollama
	Model string `json:"model" env:"RAGGY_MODEL"`
	// EmbeddingModel is the embedding model served by ollama
	EmbeddingModel string `json:"embedding_model" env:"RAGGY_EMBEDDING_MODEL"`
	// BaseURL is the ollama server address
	BaseURL string `json:"base_url" env:"RAGGY_BASE_URL"`
	// Temperature is the generation sampling temperature
	Temperature float64 `json:"temperature" env:"RAGGY_TEMPERATURE"`

	// StoreType selects the vector store backend
	StoreType string `json:"store_type" env:"RAGGY_STORE_TYPE"`
	// StorePath is the on-disk directory for the embedded store
	StorePath string `json:"store_path" env:"RAGGY_STORE_PATH"`
	// StoreAddress is the server address for remote store backends
	StoreAddress string `json:"store_address" env:"RAGGY_STORE_ADDRESS"`
	// Collection names the store collection
	Collection string `json:"collection" env:"RAGGY_COLLECTION"`

	// ChunkSize and ChunkOverlap control splitting during ingestion
	ChunkSize    int `json:"chunk_size" env:"RAGGY_CHUNK_SIZE"`
	ChunkOverlap int `json:"chunk_overlap" env:"RAGGY_CHUNK_OVERLAP"`
	// TopK is the number of chunks retrieved per question
	TopK int `json:"top_k" env:"RAGGY_TOP_K"`
	// EmbedRateLimit caps embedding calls per second; 0 means unlimited
	EmbedRateLimit int `json:"embed_rate_limit" env:"RAGGY_EMBED_RATE_LIMIT"`

	// LogLevel is one of off, error, warn, info, debug
	LogLevel string `json:"log_level" env:"RAGGY_LOG_LEVEL"`
	// Timeout bounds a single generation request
	Timeout time.Duration `json:"timeout" env:"RAGGY_TIMEOUT"`
}

// Default returns the local-first defaults: ollama on its standard port,
// an embedded store persisted next to the working directory.
func Default() *Config {
	return &Config{
		Model:          "llama3.2:1b",
		EmbeddingModel: "nomic-embed-text",
		BaseURL:        "http://localhost:11434",
		Temperature:    0.3,
		StoreType:      "chromem",
		StorePath:      "chroma_db",
		Collection:     "documents",
		ChunkSize:      1024,
		ChunkOverlap:   100,
		TopK:           4,
		LogLevel:       "warn",
		Timeout:        2 * time.Minute,
	}
}

// Load builds the effective configuration: defaults, overlaid with the
// first configuration file found, overlaid with environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := findConfigFile(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv("RAGGY_CONFIG"); path != "" {
		return path
	}

	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".raggy", "config.json"),
			filepath.Join(home, ".config", "raggy", "config.json"),
		)
	}
	candidates = append(candidates, "raggy.json")

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Save persists the configuration as JSON, creating parent directories as
// needed.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
