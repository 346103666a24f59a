package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .docketdive.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to DocketDive! Let's configure your assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Generation backend.
	providerPrompt := promptui.Select{
		Label: "Default generation backend",
		Items: []string{
			"local (Ollama on this machine)",
			"cloud (OpenAI API)",
		},
	}
	providerIdx, _, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	if providerIdx == 1 {
		cfg.LLM.DefaultProvider = "cloud"
	}

	// 2. Model for the chosen backend.
	modelDefault := cfg.LLM.LocalModel
	modelLabel := "Ollama model"
	if cfg.LLM.DefaultProvider == "cloud" {
		modelDefault = cfg.LLM.CloudModel
		modelLabel = "OpenAI model"
	}
	modelPrompt := promptui.Prompt{
		Label:   modelLabel,
		Default: modelDefault,
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	if cfg.LLM.DefaultProvider == "cloud" {
		cfg.LLM.CloudModel = model
	} else {
		cfg.LLM.LocalModel = model
	}

	// 3. Embedding backend.
	embedPrompt := promptui.Select{
		Label: "Embedding backend",
		Items: []string{"ollama", "openai", "huggingface"},
	}
	_, embedStr, err := embedPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding selection: %w", err)
	}
	cfg.Embeddings.Provider = EmbeddingProviderType(embedStr)
	switch cfg.Embeddings.Provider {
	case EmbeddingOpenAI:
		cfg.Embeddings.Model = "text-embedding-3-small"
	case EmbeddingHuggingFace:
		endpointPrompt := promptui.Prompt{
			Label: "Hugging Face inference endpoint URL",
		}
		endpoint, err := endpointPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("endpoint: %w", err)
		}
		cfg.Embeddings.Endpoint = endpoint
	}

	// 4. Corpus directory.
	corpusPrompt := promptui.Prompt{
		Label:   "Corpus directory (Markdown case law)",
		Default: cfg.Ingest.CorpusDir,
	}
	corpusDir, err := corpusPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("corpus dir: %w", err)
	}
	cfg.Ingest.CorpusDir = corpusDir

	// 5. Extra exclude patterns.
	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	if excludeStr != "" {
		cfg.Ingest.Exclude = append(cfg.Ingest.Exclude, splitAndTrim(excludeStr)...)
	}

	// 6. Default response language.
	langPrompt := promptui.Select{
		Label: "Default response language",
		Items: []string{"en", "af", "zu", "xh"},
	}
	_, lang, err := langPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("language selection: %w", err)
	}
	cfg.Language = lang

	if cfg.LLM.DefaultProvider == "cloud" || cfg.Embeddings.Provider == EmbeddingOpenAI {
		if os.Getenv("OPENAI_API_KEY") == "" {
			fmt.Println("\nNote: Set OPENAI_API_KEY in your environment before running docketdive serve.")
		}
	}
	if cfg.Embeddings.Provider == EmbeddingHuggingFace && os.Getenv("HF_API_TOKEN") == "" {
		fmt.Println("\nNote: Set HF_API_TOKEN in your environment before running docketdive serve.")
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
