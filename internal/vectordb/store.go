package vectordb

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the backing collection cannot be reached
// or queried.
var ErrUnavailable = errors.New("vector store unavailable")

// DefaultSearchLimit bounds context size when the caller does not specify a
// limit.
const DefaultSearchLimit = 8

// Store defines the interface for storing and searching passages by
// embedding similarity. Absence of results is an empty slice, not an error.
type Store interface {
	// AddPassages adds or updates passages. vectors holds one precomputed
	// document embedding per passage; if nil, the store embeds content with
	// its own embedding function.
	AddPassages(ctx context.Context, passages []Passage, vectors [][]float32) error

	// Search embeds the query text and performs a similarity search.
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)

	// SearchVector performs a similarity search with an already-computed
	// query embedding, requesting scores alongside content and metadata.
	SearchVector(ctx context.Context, vector []float32, limit int) ([]SearchResult, error)

	// GetBySourceURL retrieves all passages for the given source document.
	GetBySourceURL(ctx context.Context, sourceURL string) ([]Passage, error)

	// DeleteBySourceURL removes all passages for the given source document.
	DeleteBySourceURL(ctx context.Context, sourceURL string) error

	// Persist saves the store's data to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the store's data from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the total number of passages in the store.
	Count() int
}
