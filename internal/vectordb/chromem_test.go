package vectordb

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/docketdive/docketdive/internal/embeddings"
)

// mockEmbedder returns deterministic embeddings based on text content.
// Similar texts produce similar vectors because shared characters contribute
// to the same positions in the vector.
type mockEmbedder struct {
	dims int
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		results[i] = m.deterministicVector(text)
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

func (m *mockEmbedder) deterministicVector(text string) []float32 {
	vec := make([]float32, m.dims)
	for i, ch := range text {
		idx := (int(ch) + i) % m.dims
		vec[idx] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func testPassages() []Passage {
	now := time.Now()
	return []Passage{
		{
			ID:      "vanmeyeren-1",
			Content: "The owner of dogs that attacked a passerby was held strictly liable under the actio de pauperie.",
			Metadata: PassageMetadata{
				Title:     "Van Meyeren v Cloete",
				Citation:  "(636/2019) [2020] ZASCA 100",
				Court:     "Supreme Court of Appeal",
				SourceURL: "https://www.saflii.org/za/cases/ZASCA/2020/100.html",
				Language:  "en",
				Type:      SourceCaseLaw,
				IngestedAt: now,
			},
		},
		{
			ID:      "prescription-1",
			Content: "A debt is extinguished by prescription after the period of three years, subject to interruption.",
			Metadata: PassageMetadata{
				Title:     "Prescription Act 68 of 1969",
				Citation:  "Act 68 of 1969 s 11(d)",
				Court:     "",
				SourceURL: "https://www.gov.za/documents/prescription-act",
				Language:  "en",
				Type:      SourceLegislation,
				IngestedAt: now,
			},
		},
		{
			ID:      "paia-1",
			Content: "Requests for access to records of public bodies follow the procedure in the Promotion of Access to Information Act.",
			Metadata: PassageMetadata{
				Title:     "PAIA Guide",
				Citation:  "Act 2 of 2000",
				SourceURL: "https://www.gov.za/documents/paia",
				Language:  "en",
				Type:      SourceCommentary,
				IngestedAt: now,
			},
		},
	}
}

func newTestStore(t *testing.T) *ChromemStore {
	t.Helper()
	store, err := NewChromemStore(&mockEmbedder{dims: 64})
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	return store
}

func TestChromemStoreAddAndSearch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.AddPassages(ctx, testPassages(), nil); err != nil {
		t.Fatalf("AddPassages: %v", err)
	}
	if count := store.Count(); count != 3 {
		t.Errorf("Count: got %d, want 3", count)
	}

	results, err := store.Search(ctx, "dogs attacked a passerby strict liability", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if results[0].Passage.Metadata.Title != "Van Meyeren v Cloete" {
		t.Errorf("expected Van Meyeren passage first, got %q", results[0].Passage.Metadata.Title)
	}
	if results[0].Similarity <= 0 || results[0].Similarity > 1 {
		t.Errorf("similarity out of range: %f", results[0].Similarity)
	}
}

func TestChromemStoreSearchVector(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	embedder := &mockEmbedder{dims: 64}

	passages := testPassages()
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Content
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if err := store.AddPassages(ctx, passages, vectors); err != nil {
		t.Fatalf("AddPassages: %v", err)
	}

	qvec, _ := embedder.Embed(ctx, []string{"prescription period three years debt"})
	results, err := store.SearchVector(ctx, qvec[0], 3)
	if err != nil {
		t.Fatalf("SearchVector: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	// Descending similarity order.
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Errorf("results not sorted by descending similarity")
		}
	}
}

func TestChromemStoreEmptyIsNotAnError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	results, err := store.Search(ctx, "anything", 5)
	if err != nil {
		t.Fatalf("Search on empty store: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}

	vecResults, err := store.SearchVector(ctx, make([]float32, 64), 5)
	if err != nil {
		t.Fatalf("SearchVector on empty store: %v", err)
	}
	if len(vecResults) != 0 {
		t.Errorf("expected no results, got %d", len(vecResults))
	}
}

func TestChromemStoreGetAndDeleteBySourceURL(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.AddPassages(ctx, testPassages(), nil); err != nil {
		t.Fatalf("AddPassages: %v", err)
	}

	url := "https://www.saflii.org/za/cases/ZASCA/2020/100.html"
	got, err := store.GetBySourceURL(ctx, url)
	if err != nil {
		t.Fatalf("GetBySourceURL: %v", err)
	}
	if len(got) != 1 || got[0].ID != "vanmeyeren-1" {
		t.Fatalf("unexpected passages: %+v", got)
	}

	if err := store.DeleteBySourceURL(ctx, url); err != nil {
		t.Fatalf("DeleteBySourceURL: %v", err)
	}
	if count := store.Count(); count != 2 {
		t.Errorf("Count after delete: got %d, want 2", count)
	}
}

func TestChromemStorePersistAndLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store := newTestStore(t)
	if err := store.AddPassages(ctx, testPassages(), nil); err != nil {
		t.Fatalf("AddPassages: %v", err)
	}
	if err := store.Persist(ctx, dir); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	restored := newTestStore(t)
	if err := restored.Load(ctx, dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if count := restored.Count(); count != 3 {
		t.Errorf("Count after load: got %d, want 3", count)
	}

	results, err := restored.Search(ctx, "prescription of debts", 1)
	if err != nil {
		t.Fatalf("Search after load: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Passage.Metadata.SourceURL == "" {
		t.Error("expected metadata to survive persist/load")
	}
}

var _ embeddings.Embedder = (*mockEmbedder)(nil)
