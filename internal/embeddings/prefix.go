package embeddings

import (
	"context"
	"strings"
)

// Asymmetric retrieval prefixes used by nomic-style embedding models. The
// corpus is indexed with the document prefix; queries must use the query
// prefix to land in the same space.
const (
	QueryPrefix    = "search_query: "
	DocumentPrefix = "search_document: "
)

// PrefixedEmbedder wraps an Embedder and prepends a fixed marker to every
// text before embedding. Inputs that are blank after trimming are rejected
// with ErrEmptyInput before any network call.
type PrefixedEmbedder struct {
	inner  Embedder
	prefix string
}

// NewPrefixedEmbedder returns an embedder that applies the given prefix.
// An empty prefix still enforces the blank-input check.
func NewPrefixedEmbedder(inner Embedder, prefix string) *PrefixedEmbedder {
	return &PrefixedEmbedder{inner: inner, prefix: prefix}
}

func (e *PrefixedEmbedder) Name() string {
	return e.inner.Name()
}

func (e *PrefixedEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

func (e *PrefixedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	prefixed := make([]string, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, ErrEmptyInput
		}
		prefixed[i] = e.prefix + text
	}
	return e.inner.Embed(ctx, prefixed)
}
