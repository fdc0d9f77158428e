// Command askdoc answers natural-language questions about remote
// documents, either one-shot from the command line or as an HTTP
// service.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/arcline-labs/askdoc/internal/adapters/driven/cache/file"
	configfile "github.com/arcline-labs/askdoc/internal/adapters/driven/config/file"
	"github.com/arcline-labs/askdoc/internal/adapters/driven/embedding/ollama"
	"github.com/arcline-labs/askdoc/internal/adapters/driven/embedding/openai"
	"github.com/arcline-labs/askdoc/internal/adapters/driven/llm/openrouter"
	"github.com/arcline-labs/askdoc/internal/adapters/driven/reranker/tei"
	"github.com/arcline-labs/askdoc/internal/adapters/driven/storage/sqlite"
	"github.com/arcline-labs/askdoc/internal/adapters/driven/vectorindex/flat"
	"github.com/arcline-labs/askdoc/internal/adapters/driving/cli"
	"github.com/arcline-labs/askdoc/internal/chunker"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
	"github.com/arcline-labs/askdoc/internal/core/services"
	"github.com/arcline-labs/askdoc/internal/downloader"
	"github.com/arcline-labs/askdoc/internal/loaders"
	"github.com/arcline-labs/askdoc/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for API keys; absence is not an error.
	_ = godotenv.Load()

	cfg, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	llm, err := buildLLM(cfg)
	if err != nil {
		return err
	}
	defer llm.Close()

	reranker := buildReranker(cfg)
	if reranker != nil {
		defer reranker.Close()
	}

	cache, err := file.New(cfg.GetString("cache.dir"), embedder.ModelName())
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}

	requestLog, err := sqlite.NewStore(cfg.GetString("data.dir"))
	if err != nil {
		return fmt.Errorf("open request log: %w", err)
	}
	defer requestLog.Close()

	var chunkOpts []chunker.Option
	if size := cfg.GetInt("chunking.size"); size > 0 {
		chunkOpts = append(chunkOpts, chunker.WithChunkSize(size))
	}
	if _, ok := cfg.Get("chunking.overlap"); ok {
		chunkOpts = append(chunkOpts, chunker.WithOverlap(cfg.GetInt("chunking.overlap")))
	}
	splitter := chunker.New(chunkOpts...)

	session := services.NewSessionService(
		downloader.New(downloader.Config{}),
		loaders.DefaultRegistry(),
		splitter,
		embedder,
		flat.NewBuilder(),
		cache,
	)

	retriever := services.NewRetrievalService(embedder, reranker, services.RetrievalConfig{
		Concurrency: cfg.GetInt("retrieval.concurrency"),
	})

	qa := services.NewQAService(session, retriever, llm, requestLog, services.QAConfig{
		TopK:                 cfg.GetInt("retrieval.top_k"),
		TokenThreshold:       cfg.GetInt("retrieval.token_threshold"),
		LLMConcurrency:       cfg.GetInt("llm.concurrency"),
		LLMRequestsPerSecond: cfg.GetFloat("llm.requests_per_second"),
	})

	cli.SetServices(qa, requestLog, cfg)
	return cli.Execute()
}

// buildEmbedder selects the embedding provider from configuration.
// Default is a local Ollama instance.
func buildEmbedder(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	switch provider := cfg.GetString("models.embedding_provider"); provider {
	case "", "ollama":
		return ollama.New(ollama.Config{
			BaseURL:    cfg.GetString("endpoints.ollama"),
			Model:      cfg.GetString("models.embedding"),
			Dimensions: cfg.GetInt("models.embedding_dimensions"),
		}), nil
	case "openai":
		return openai.New(openai.Config{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			BaseURL:    cfg.GetString("endpoints.openai"),
			Model:      cfg.GetString("models.embedding"),
			Dimensions: cfg.GetInt("models.embedding_dimensions"),
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// buildLLM constructs the chat model client.
func buildLLM(cfg driven.ConfigStore) (driven.LLMService, error) {
	return openrouter.New(openrouter.Config{
		APIKey:      os.Getenv("OPENROUTER_API_KEY"),
		BaseURL:     cfg.GetString("endpoints.openrouter"),
		Model:       cfg.GetString("models.llm"),
		Temperature: cfg.GetFloat("llm.temperature"),
		MaxTokens:   cfg.GetInt("llm.max_tokens"),
		Timeout:     durationOrZero(cfg.GetInt("llm.timeout_seconds")),
	})
}

// buildReranker returns nil when no rerank endpoint is configured;
// ranking then falls back to vector distance.
func buildReranker(cfg driven.ConfigStore) driven.Reranker {
	endpoint := cfg.GetString("endpoints.reranker")
	if endpoint == "" {
		logger.Debug("No reranker endpoint configured, using distance ranking")
		return nil
	}
	return tei.New(tei.Config{BaseURL: endpoint})
}

func durationOrZero(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
