package config

// EmbeddingProviderType identifies an embedding backend.
type EmbeddingProviderType string

const (
	EmbeddingOpenAI      EmbeddingProviderType = "openai"
	EmbeddingOllama      EmbeddingProviderType = "ollama"
	EmbeddingHuggingFace EmbeddingProviderType = "huggingface"
)

// Config is the top-level DocketDive configuration, corresponding to
// .docketdive.yml.
type Config struct {
	Server     ServerConfig     `yaml:"server" koanf:"server"`
	LLM        LLMConfig        `yaml:"llm" koanf:"llm"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" koanf:"embeddings"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" koanf:"retrieval"`
	Store      StoreConfig      `yaml:"store" koanf:"store"`
	Redis      RedisConfig      `yaml:"redis" koanf:"redis"`
	Ingest     IngestConfig     `yaml:"ingest" koanf:"ingest"`
	Language   string           `yaml:"language" koanf:"language"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                  int  `yaml:"port" koanf:"port"`
	AllowAllOrigins       bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	RequestTimeoutSeconds int  `yaml:"request_timeout_seconds" koanf:"request_timeout_seconds"`
}

// LLMConfig holds generation settings for both backends.
type LLMConfig struct {
	DefaultProvider        string  `yaml:"default_provider" koanf:"default_provider"`
	LocalModel             string  `yaml:"local_model" koanf:"local_model"`
	CloudModel             string  `yaml:"cloud_model" koanf:"cloud_model"`
	Temperature            float64 `yaml:"temperature" koanf:"temperature"`
	MaxTokens              int     `yaml:"max_tokens" koanf:"max_tokens"`
	FirstTokenTimeoutSecs  int     `yaml:"first_token_timeout_seconds" koanf:"first_token_timeout_seconds"`
	RequestsPerMinute      int     `yaml:"requests_per_minute" koanf:"requests_per_minute"`
}

// EmbeddingsConfig selects the embedding backend. UsePrefix controls the
// asymmetric search_query/search_document markers: "on", "off", or "auto"
// (the default), which enables them for nomic-style backends and disables
// them for OpenAI models, which are trained without markers.
type EmbeddingsConfig struct {
	Provider  EmbeddingProviderType `yaml:"provider" koanf:"provider"`
	Model     string                `yaml:"model" koanf:"model"`
	Endpoint  string                `yaml:"endpoint" koanf:"endpoint"`
	UsePrefix string                `yaml:"use_prefix" koanf:"use_prefix"`
}

// PrefixEnabled reports whether the retrieval prefixes apply for this
// backend.
func (c EmbeddingsConfig) PrefixEnabled() bool {
	switch c.UsePrefix {
	case "on":
		return true
	case "off":
		return false
	default:
		return c.Provider != EmbeddingOpenAI
	}
}

// RetrievalConfig holds context assembly settings.
type RetrievalConfig struct {
	MinSimilarity float64 `yaml:"min_similarity" koanf:"min_similarity"`
	MaxPassages   int     `yaml:"max_passages" koanf:"max_passages"`
	CharBudget    int     `yaml:"char_budget" koanf:"char_budget"`
	SearchLimit   int     `yaml:"search_limit" koanf:"search_limit"`
}

// StoreConfig holds vector store persistence settings.
type StoreConfig struct {
	DataDir string `yaml:"data_dir" koanf:"data_dir"`
}

// RedisConfig holds the optional embedding cache settings.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" koanf:"enabled"`
	Addr     string `yaml:"addr" koanf:"addr"`
	TTLHours int    `yaml:"ttl_hours" koanf:"ttl_hours"`
}

// IngestConfig holds corpus ingestion settings.
type IngestConfig struct {
	CorpusDir string   `yaml:"corpus_dir" koanf:"corpus_dir"`
	Include   []string `yaml:"include" koanf:"include"`
	Exclude   []string `yaml:"exclude" koanf:"exclude"`
	ChunkSize int      `yaml:"chunk_size" koanf:"chunk_size"`
}
