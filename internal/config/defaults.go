package config

// DefaultExcludes are glob patterns excluded from ingestion by default.
var DefaultExcludes = []string{
	".git/**",
	"node_modules/**",
	"*.lock",
	"README.md",
}

// DefaultConfig returns a Config with sensible defaults. The defaults favor
// the fully local setup: Ollama generation and nomic embeddings.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                  8090,
			RequestTimeoutSeconds: 120,
		},
		LLM: LLMConfig{
			DefaultProvider:       "local",
			LocalModel:            "llama3.1",
			CloudModel:            "gpt-4o",
			Temperature:           0.2,
			MaxTokens:             2048,
			FirstTokenTimeoutSecs: 30,
			RequestsPerMinute:     60,
		},
		Embeddings: EmbeddingsConfig{
			Provider:  EmbeddingOllama,
			Model:     "nomic-embed-text",
			UsePrefix: "auto",
		},
		Retrieval: RetrievalConfig{
			MinSimilarity: 0.35,
			MaxPassages:   6,
			CharBudget:    8000,
			SearchLimit:   8,
		},
		Store: StoreConfig{
			DataDir: ".docketdive",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			TTLHours: 24,
		},
		Ingest: IngestConfig{
			CorpusDir: "corpus",
			Include:   []string{"**/*.md"},
			Exclude:   DefaultExcludes,
			ChunkSize: 1500,
		},
		Language: "en",
	}
}
