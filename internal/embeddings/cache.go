package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 24 * time.Hour

// CachedEmbedder is a read-through Redis cache in front of an Embedder.
// Cache failures are logged and ignored; they never fail the request.
type CachedEmbedder struct {
	inner  Embedder
	client *redis.Client
	ttl    time.Duration
}

// NewCachedEmbedder wraps the given embedder with a Redis cache.
// ttl <= 0 selects the default of 24h.
func NewCachedEmbedder(inner Embedder, client *redis.Client, ttl time.Duration) *CachedEmbedder {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedEmbedder{inner: inner, client: client, ttl: ttl}
}

func (e *CachedEmbedder) Name() string {
	return e.inner.Name()
}

func (e *CachedEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = e.cacheKey(text)
	}

	vectors := make([][]float32, len(texts))
	var missIdx []int

	cached, err := e.client.MGet(ctx, keys...).Result()
	if err != nil {
		log.Printf("embeddings: cache read failed, bypassing: %v", err)
		return e.inner.Embed(ctx, texts)
	}

	for i, val := range cached {
		s, ok := val.(string)
		if !ok {
			missIdx = append(missIdx, i)
			continue
		}
		var vec []float32
		if err := json.Unmarshal([]byte(s), &vec); err != nil {
			missIdx = append(missIdx, i)
			continue
		}
		vectors[i] = vec
	}

	if len(missIdx) == 0 {
		return vectors, nil
	}

	missTexts := make([]string, len(missIdx))
	for i, idx := range missIdx {
		missTexts[i] = texts[idx]
	}

	fresh, err := e.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	pipe := e.client.Pipeline()
	for i, idx := range missIdx {
		vectors[idx] = fresh[i]
		if data, err := json.Marshal(fresh[i]); err == nil {
			pipe.Set(ctx, keys[idx], data, e.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("embeddings: cache write failed: %v", err)
	}

	return vectors, nil
}

// cacheKey derives a stable key from the model name and the exact text,
// so prefix variants never collide.
func (e *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(e.inner.Name() + "\x00" + text))
	return "docketdive:emb:" + hex.EncodeToString(sum[:])
}
