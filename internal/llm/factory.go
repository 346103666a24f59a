package llm

import (
	"fmt"
	"os"
)

// Backend identifies which model backend handles a request.
type Backend string

const (
	// BackendLocal routes generation to a local Ollama instance.
	BackendLocal Backend = "local"
	// BackendCloud routes generation to the hosted OpenAI API.
	BackendCloud Backend = "cloud"
)

const defaultOllamaHost = "http://localhost:11434"

// NewProvider creates a provider for the given backend and model. This is
// the only place that branches on backend identity.
func NewProvider(backend Backend, model string) (Provider, error) {
	switch backend {
	case BackendCloud:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, model), nil

	case BackendLocal:
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = defaultOllamaHost
		}
		return NewOllamaProvider(host, model), nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}
