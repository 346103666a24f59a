package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// recordingEmbedder captures the texts it was asked to embed.
type recordingEmbedder struct {
	calls   [][]string
	failFor int // fail this many calls before succeeding
	err     error
}

func (r *recordingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	r.calls = append(r.calls, texts)
	if r.failFor > 0 {
		r.failFor--
		if r.err != nil {
			return nil, r.err
		}
		return nil, fmt.Errorf("%w: transient", ErrUnavailable)
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2, 3}
	}
	return out, nil
}

func (r *recordingEmbedder) Dimensions() int { return 3 }
func (r *recordingEmbedder) Name() string    { return "recording" }

func TestPrefixedEmbedderAppliesQueryMarker(t *testing.T) {
	inner := &recordingEmbedder{}
	e := NewPrefixedEmbedder(inner, QueryPrefix)

	if _, err := e.Embed(context.Background(), []string{"Van Meyeren v Cloete"}); err != nil {
		t.Fatalf("Embed: %v", err)
	}

	got := inner.calls[0][0]
	want := "search_query: Van Meyeren v Cloete"
	if got != want {
		t.Errorf("expected prefixed text %q, got %q", want, got)
	}
}

func TestPrefixedEmbedderEmptyPrefixPassesTextThrough(t *testing.T) {
	inner := &recordingEmbedder{}
	e := NewPrefixedEmbedder(inner, "")

	if _, err := e.Embed(context.Background(), []string{"Van Meyeren v Cloete"}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if got := inner.calls[0][0]; got != "Van Meyeren v Cloete" {
		t.Errorf("expected unmodified text, got %q", got)
	}

	_, err := e.Embed(context.Background(), []string{"  "})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestPrefixedEmbedderRejectsBlankInput(t *testing.T) {
	inner := &recordingEmbedder{}
	e := NewPrefixedEmbedder(inner, QueryPrefix)

	_, err := e.Embed(context.Background(), []string{"   \n\t"})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if len(inner.calls) != 0 {
		t.Errorf("expected no inner call for blank input, got %d", len(inner.calls))
	}
}

func TestRetryingEmbedderRecoversFromTransientFailure(t *testing.T) {
	inner := &recordingEmbedder{failFor: 2}
	e := NewRetryingEmbedder(inner, 3)
	e.initialBackoff = 0

	vecs, err := e.Embed(context.Background(), []string{"delictual liability"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 1 {
		t.Fatalf("expected 1 vector, got %d", len(vecs))
	}
	if len(inner.calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(inner.calls))
	}
}

func TestRetryingEmbedderDoesNotRetryEmptyInput(t *testing.T) {
	inner := &recordingEmbedder{failFor: 5, err: ErrEmptyInput}
	e := NewRetryingEmbedder(inner, 3)
	e.initialBackoff = 0

	_, err := e.Embed(context.Background(), []string{""})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if len(inner.calls) != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", len(inner.calls))
	}
}

func TestRetryingEmbedderGivesUpAfterMaxAttempts(t *testing.T) {
	inner := &recordingEmbedder{failFor: 10}
	e := NewRetryingEmbedder(inner, 3)
	e.initialBackoff = 0

	_, err := e.Embed(context.Background(), []string{"x"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if len(inner.calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(inner.calls))
	}
}

func TestHFEmbedderParsesBothResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare vector", `[0.1, 0.2, 0.3]`},
		{"array of vectors", `[[0.1, 0.2, 0.3]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
					t.Errorf("expected bearer token, got %q", auth)
				}
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			e := NewHFEmbedder(srv.URL, "test-token", "bge-m3", 3)
			vecs, err := e.Embed(context.Background(), []string{"prescription periods"})
			if err != nil {
				t.Fatalf("Embed: %v", err)
			}
			if len(vecs) != 1 || len(vecs[0]) != 3 {
				t.Fatalf("unexpected vectors: %v", vecs)
			}
		})
	}
}

func TestHFEmbedderNonSuccessIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewHFEmbedder(srv.URL, "test-token", "bge-m3", 3)
	_, err := e.Embed(context.Background(), []string{"x"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestOllamaEmbedderParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"embeddings": [[0.5, 0.5]]}`)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 2, srv.URL)
	vecs, err := e.Embed(context.Background(), []string{"eviction notice requirements"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 1 || len(vecs[0]) != 2 {
		t.Fatalf("unexpected vectors: %v", vecs)
	}
}
