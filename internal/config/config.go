package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the conventional config file location.
const DefaultPath = ".docketdive.yml"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (DOCKETDIVE_*). A missing file is not an
// error; defaults apply.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: DOCKETDIVE_SERVER__PORT -> server.port.
	if err := k.Load(env.Provider("DOCKETDIVE_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "DOCKETDIVE_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validEmbeddingProviders is the set of recognized embedding backends.
var validEmbeddingProviders = map[EmbeddingProviderType]bool{
	EmbeddingOpenAI:      true,
	EmbeddingOllama:      true,
	EmbeddingHuggingFace: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535")
	}

	switch c.LLM.DefaultProvider {
	case "local", "cloud":
	default:
		return fmt.Errorf("llm.default_provider %q: must be local or cloud", c.LLM.DefaultProvider)
	}

	if c.LLM.LocalModel == "" && c.LLM.CloudModel == "" {
		return fmt.Errorf("at least one of llm.local_model and llm.cloud_model is required")
	}

	if !validEmbeddingProviders[c.Embeddings.Provider] {
		return fmt.Errorf("invalid embeddings.provider %q: must be one of openai, ollama, huggingface", c.Embeddings.Provider)
	}
	if c.Embeddings.Provider == EmbeddingHuggingFace && c.Embeddings.Endpoint == "" {
		return fmt.Errorf("embeddings.endpoint is required for the huggingface provider")
	}
	switch c.Embeddings.UsePrefix {
	case "", "auto", "on", "off":
	default:
		return fmt.Errorf("embeddings.use_prefix %q: must be auto, on, or off", c.Embeddings.UsePrefix)
	}

	if c.Retrieval.MinSimilarity < 0 || c.Retrieval.MinSimilarity > 1 {
		return fmt.Errorf("retrieval.min_similarity must be in [0, 1]")
	}
	if c.Retrieval.MaxPassages <= 0 {
		return fmt.Errorf("retrieval.max_passages must be positive")
	}
	if c.Retrieval.CharBudget <= 0 {
		return fmt.Errorf("retrieval.char_budget must be positive")
	}

	if c.Store.DataDir == "" {
		return fmt.Errorf("store.data_dir is required")
	}

	return nil
}
