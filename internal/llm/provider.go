package llm

import (
	"context"
	"errors"
)

// Sentinel errors for provider failures. Callers match with errors.Is to
// decide between a pre-stream error response and a terminal error event.
var (
	// ErrUnavailable means the provider could not be reached or rejected the
	// request before any token was produced.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrTimeout means no token arrived within the configured interval.
	ErrTimeout = errors.New("provider timed out")
	// ErrUpstream means the provider failed mid-generation. Partial output
	// already delivered stands.
	ErrUpstream = errors.New("provider error")
)

// Provider defines the interface for streaming LLM backends. The two
// concrete variants (cloud/OpenAI and local/Ollama) differ only in transport
// and authentication.
type Provider interface {
	// StreamComplete starts a streaming completion. The returned Stream
	// yields chunks as the provider produces them; the call itself returns
	// once the upstream request has been accepted.
	StreamComplete(ctx context.Context, req CompletionRequest) (Stream, error)
	// Name returns the name of this provider.
	Name() string
}

// Stream is a lazy sequence of completion chunks. Recv blocks until the next
// chunk is available and returns io.EOF when the completion has finished.
// Close releases the upstream connection and must always be called.
type Stream interface {
	Recv() (Chunk, error)
	Close() error
}
