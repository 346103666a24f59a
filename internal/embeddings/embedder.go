package embeddings

import (
	"context"
	"errors"
)

var (
	// ErrEmptyInput is returned for inputs that are blank after trimming.
	// No network call is made in that case.
	ErrEmptyInput = errors.New("empty input")
	// ErrUnavailable is returned when the embedding service cannot be
	// reached or returns a non-success status.
	ErrUnavailable = errors.New("embedding provider unavailable")
)

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}
