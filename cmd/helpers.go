package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/docketdive/docketdive/internal/chat"
	"github.com/docketdive/docketdive/internal/config"
	"github.com/docketdive/docketdive/internal/embeddings"
	"github.com/docketdive/docketdive/internal/llm"
	"github.com/docketdive/docketdive/internal/prompt"
	"github.com/docketdive/docketdive/internal/retrieval"
	"github.com/docketdive/docketdive/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `docketdive init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createBaseEmbedder creates the raw embedding backend from config. Callers
// wrap it with the query or document prefix.
func createBaseEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	switch cfg.Embeddings.Provider {
	case config.EmbeddingOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.Embeddings.Model)), nil
	case config.EmbeddingOllama:
		return embeddings.NewOllamaEmbedder(cfg.Embeddings.Model, 768, cfg.Embeddings.Endpoint), nil
	case config.EmbeddingHuggingFace:
		token := os.Getenv("HF_API_TOKEN")
		return embeddings.NewHFEmbedder(cfg.Embeddings.Endpoint, token, cfg.Embeddings.Model, 768), nil
	default:
		return nil, fmt.Errorf("unsupported embeddings provider %q", cfg.Embeddings.Provider)
	}
}

// decorateEmbedder layers the optional Redis cache, retries, and the given
// retrieval prefix on top of the base embedder. The cache sits below the
// prefix so query and document variants of the same text never share a key.
// When prefixes are disabled for the backend an empty prefix is used, which
// keeps the blank-input check.
func decorateEmbedder(cfg *config.Config, base embeddings.Embedder, prefix string) embeddings.Embedder {
	e := base
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		e = embeddings.NewCachedEmbedder(e, client, time.Duration(cfg.Redis.TTLHours)*time.Hour)
	}
	e = embeddings.NewRetryingEmbedder(e, 0)
	if !cfg.Embeddings.PrefixEnabled() {
		prefix = ""
	}
	return embeddings.NewPrefixedEmbedder(e, prefix)
}

// createQueryEmbedder builds the embedder used for search queries.
func createQueryEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	base, err := createBaseEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	return decorateEmbedder(cfg, base, embeddings.QueryPrefix), nil
}

// createDocumentEmbedder builds the embedder used during ingestion.
func createDocumentEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	base, err := createBaseEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	return decorateEmbedder(cfg, base, embeddings.DocumentPrefix), nil
}

// createProviders builds the generation backends. The default backend must
// construct; the other is optional and skipped with a warning when its
// credentials are absent.
func createProviders(cfg *config.Config) (map[llm.Backend]llm.Provider, map[llm.Backend]string, error) {
	models := map[llm.Backend]string{
		llm.BackendLocal: cfg.LLM.LocalModel,
		llm.BackendCloud: cfg.LLM.CloudModel,
	}
	defaultBackend := llm.Backend(cfg.LLM.DefaultProvider)

	providers := make(map[llm.Backend]llm.Provider)
	for _, backend := range []llm.Backend{llm.BackendLocal, llm.BackendCloud} {
		if models[backend] == "" {
			continue
		}
		p, err := llm.NewProvider(backend, models[backend])
		if err != nil {
			if backend == defaultBackend {
				return nil, nil, fmt.Errorf("creating %s provider: %w", backend, err)
			}
			fmt.Fprintf(os.Stderr, "Warning: %s provider unavailable: %v\n", backend, err)
			continue
		}
		if cfg.LLM.RequestsPerMinute > 0 {
			p = llm.NewRateLimitedProvider(p, cfg.LLM.RequestsPerMinute)
		}
		providers[backend] = p
	}

	if _, ok := providers[defaultBackend]; !ok {
		return nil, nil, fmt.Errorf("default provider %q is not configured", defaultBackend)
	}

	return providers, models, nil
}

// openStore creates the vector store and loads any persisted data. A missing
// snapshot is a warning, not an error; the store starts empty.
func openStore(cfg *config.Config, queryEmbedder embeddings.Embedder) (vectordb.Store, error) {
	store, err := vectordb.NewChromemStore(queryEmbedder)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	if err := store.Load(context.Background(), cfg.Store.DataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load vector store from %s: %v\n", cfg.Store.DataDir, err)
		fmt.Fprintf(os.Stderr, "Search results will be empty. Run `docketdive ingest` first.\n")
	}
	return store, nil
}

// createPipeline assembles the full chat pipeline from config.
func createPipeline(cfg *config.Config) (*chat.Pipeline, vectordb.Store, error) {
	queryEmbedder, err := createQueryEmbedder(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating embedder: %w", err)
	}

	store, err := openStore(cfg, queryEmbedder)
	if err != nil {
		return nil, nil, err
	}

	providers, models, err := createProviders(cfg)
	if err != nil {
		return nil, nil, err
	}

	pipeline := chat.NewPipeline(chat.Deps{
		QueryEmbedder: queryEmbedder,
		Store:         store,
		Assembler: retrieval.NewAssembler(retrieval.Config{
			MinSimilarity: float32(cfg.Retrieval.MinSimilarity),
			MaxPassages:   cfg.Retrieval.MaxPassages,
			CharBudget:    cfg.Retrieval.CharBudget,
		}),
		Prompts:        prompt.NewBuilder(cfg.Language),
		Providers:      providers,
		Models:         models,
		Streamer:       chat.NewStreamer(time.Duration(cfg.LLM.FirstTokenTimeoutSecs) * time.Second),
		SearchLimit:    cfg.Retrieval.SearchLimit,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		DefaultBackend: llm.Backend(cfg.LLM.DefaultProvider),
	})

	return pipeline, store, nil
}
