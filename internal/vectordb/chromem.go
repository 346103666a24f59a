package vectordb

import (
	"context"
	"fmt"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/docketdive/docketdive/internal/embeddings"
)

const collectionName = "caselaw"

// ChromemStore implements Store using chromem-go. The collection's embedding
// function uses the query-side embedder; document-side embeddings are
// computed by the ingestion pipeline and passed in explicitly, which is what
// keeps the asymmetric query/document scheme intact.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemStore creates a new in-memory ChromemStore whose text queries
// are embedded with the given query embedder.
func NewChromemStore(queryEmbedder embeddings.Embedder) (*ChromemStore, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(queryEmbedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		embedFunc:  ef,
	}, nil
}

func (s *ChromemStore) AddPassages(ctx context.Context, passages []Passage, vectors [][]float32) error {
	if len(passages) == 0 {
		return nil
	}
	if vectors != nil && len(vectors) != len(passages) {
		return fmt.Errorf("got %d vectors for %d passages", len(vectors), len(passages))
	}

	docs := make([]chromem.Document, len(passages))
	for i, p := range passages {
		docs[i] = chromem.Document{
			ID:       p.ID,
			Content:  p.Content,
			Metadata: metadataToMap(p.Metadata),
		}
		if vectors != nil {
			docs[i].Embedding = vectors[i]
		}
	}

	return s.collection.AddDocuments(ctx, docs, 1)
}

func (s *ChromemStore) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	limit = s.clampLimit(limit)
	if limit == 0 {
		return nil, nil
	}

	results, err := s.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: chromem query: %v", ErrUnavailable, err)
	}
	return toSearchResults(results), nil
}

func (s *ChromemStore) SearchVector(ctx context.Context, vector []float32, limit int) ([]SearchResult, error) {
	limit = s.clampLimit(limit)
	if limit == 0 {
		return nil, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, vector, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: chromem query: %v", ErrUnavailable, err)
	}
	return toSearchResults(results), nil
}

// clampLimit applies the default and bounds limit to the collection size.
// chromem-go requires nResults <= collection size. A zero return means the
// collection is empty and the search result is an empty slice.
func (s *ChromemStore) clampLimit(limit int) int {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	count := s.collection.Count()
	if limit > count {
		limit = count
	}
	return limit
}

func (s *ChromemStore) GetBySourceURL(ctx context.Context, sourceURL string) ([]Passage, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}

	where := map[string]string{"source_url": sourceURL}

	// Use the URL as query text with count as limit to get all matches.
	results, err := s.collection.Query(ctx, sourceURL, count, where, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: chromem query by source: %v", ErrUnavailable, err)
	}

	passages := make([]Passage, len(results))
	for i, r := range results {
		passages[i] = Passage{
			ID:       r.ID,
			Content:  r.Content,
			Metadata: mapToMetadata(r.Metadata),
		}
	}
	return passages, nil
}

func (s *ChromemStore) DeleteBySourceURL(ctx context.Context, sourceURL string) error {
	where := map[string]string{"source_url": sourceURL}
	return s.collection.Delete(ctx, where, nil)
}

func (s *ChromemStore) Persist(ctx context.Context, dir string) error {
	return s.db.ExportToFile(dir+"/chromem.gob.gz", true, "")
}

func (s *ChromemStore) Load(ctx context.Context, dir string) error {
	err := s.db.ImportFromFile(dir+"/chromem.gob.gz", "")
	if err != nil {
		return fmt.Errorf("%w: import from file: %v", ErrUnavailable, err)
	}

	// Re-acquire collection reference after import.
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("%w: collection %q not found after import", ErrUnavailable, collectionName)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

func toSearchResults(results []chromem.Result) []SearchResult {
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			Passage: Passage{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		}
	}
	return out
}

// metadataToMap converts PassageMetadata to a flat map[string]string for chromem.
func metadataToMap(m PassageMetadata) map[string]string {
	return map[string]string{
		"title":        m.Title,
		"citation":     m.Citation,
		"court":        m.Court,
		"source_url":   m.SourceURL,
		"language":     m.Language,
		"type":         string(m.Type),
		"content_hash": m.ContentHash,
		"ingested_at":  m.IngestedAt.Format(time.RFC3339),
	}
}

// mapToMetadata converts a flat map[string]string back to PassageMetadata.
func mapToMetadata(m map[string]string) PassageMetadata {
	ingestedAt, _ := time.Parse(time.RFC3339, m["ingested_at"])
	return PassageMetadata{
		Title:       m["title"],
		Citation:    m["citation"],
		Court:       m["court"],
		SourceURL:   m["source_url"],
		Language:    m["language"],
		Type:        SourceType(m["type"]),
		ContentHash: m["content_hash"],
		IngestedAt:  ingestedAt,
	}
}
