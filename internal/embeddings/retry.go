package embeddings

import (
	"context"
	"errors"
	"time"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 500 * time.Millisecond
)

// RetryingEmbedder wraps an Embedder with bounded retry and doubling
// backoff. Embedding calls are cheap and idempotent, so a short retry is
// safe here; generation calls are never retried.
type RetryingEmbedder struct {
	inner          Embedder
	maxAttempts    int
	initialBackoff time.Duration
}

// NewRetryingEmbedder wraps the given embedder. maxAttempts <= 0 selects the
// default of 3 attempts starting at 500ms backoff.
func NewRetryingEmbedder(inner Embedder, maxAttempts int) *RetryingEmbedder {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &RetryingEmbedder{
		inner:          inner,
		maxAttempts:    maxAttempts,
		initialBackoff: defaultInitialBackoff,
	}
}

func (e *RetryingEmbedder) Name() string {
	return e.inner.Name()
}

func (e *RetryingEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

func (e *RetryingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	backoff := e.initialBackoff

	var lastErr error
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		vectors, err := e.inner.Embed(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		// Client mistakes are not retryable.
		if errors.Is(err, ErrEmptyInput) {
			return nil, err
		}
		lastErr = err

		if attempt == e.maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, lastErr
}
