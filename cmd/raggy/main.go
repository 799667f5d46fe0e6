// Command raggy ingests documents and answers questions about them from the
// terminal. It expects an ollama server running locally.
//
// Usage:
//
//	raggy -ingest report.pdf -ingest notes.txt -url https://example.com/post
//	raggy -ask "What does the report conclude?"
//	raggy            # interactive: one question per line
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danruto/raggy"
	"github.com/danruto/raggy/config"
)

type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var (
		ingest stringList
		urls   stringList
	)
	flag.Var(&ingest, "ingest", "file to ingest (repeatable)")
	flag.Var(&urls, "url", "web page to ingest (repeatable)")
	ask := flag.String("ask", "", "ask a single question and exit")
	model := flag.String("model", "", "generation model (overrides config)")
	store := flag.String("store", "", "store backend: chromem, memory or milvus (overrides config)")
	logLevel := flag.String("loglevel", "", "log level: off, error, warn, info, debug (overrides config)")
	reset := flag.Bool("reset", false, "delete all stored chunks before doing anything else")
	flag.Parse()

	if err := run(ingest, urls, *ask, *model, *store, *logLevel, *reset); err != nil {
		fmt.Fprintln(os.Stderr, "raggy:", err)
		os.Exit(1)
	}
}

func run(ingest, urls []string, ask, model, store, logLevel string, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if model != "" {
		cfg.Model = model
	}
	if store != "" {
		cfg.StoreType = store
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	var level raggy.LogLevel
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return err
	}

	assistant, err := raggy.NewAssistant(
		raggy.WithModel(cfg.Model),
		raggy.WithEmbeddingModel(cfg.EmbeddingModel),
		raggy.WithBaseURL(cfg.BaseURL),
		raggy.WithTemperature(cfg.Temperature),
		raggy.WithStore(cfg.StoreType),
		raggy.WithStorePath(cfg.StorePath),
		raggy.WithStoreAddress(cfg.StoreAddress),
		raggy.WithCollection(cfg.Collection),
		raggy.WithChunking(cfg.ChunkSize, cfg.ChunkOverlap),
		raggy.WithTopK(cfg.TopK),
		raggy.WithEmbedRateLimit(cfg.EmbedRateLimit),
		raggy.WithLogger(raggy.NewLogger(level)),
	)
	if err != nil {
		return err
	}
	defer assistant.Close()

	ctx := context.Background()

	if reset {
		if err := assistant.Reset(ctx); err != nil {
			return err
		}
		fmt.Println("store cleared")
	}

	for _, path := range ingest {
		if err := assistant.Ingest(ctx, path, ""); err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		fmt.Println("ingested", path)
	}
	for _, u := range urls {
		if err := assistant.IngestURL(ctx, u); err != nil {
			return fmt.Errorf("ingesting %s: %w", u, err)
		}
		fmt.Println("ingested", u)
	}

	if ask != "" {
		answer, err := assistant.Ask(ctx, ask)
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	}

	if len(ingest) > 0 || len(urls) > 0 || reset {
		// Ingest-only invocation; nothing to ask.
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			fmt.Print("> ")
			continue
		}
		answer, err := assistant.Ask(ctx, question)
		if err != nil {
			fmt.Fprintln(os.Stderr, "raggy:", err)
		} else {
			fmt.Println(answer)
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}
