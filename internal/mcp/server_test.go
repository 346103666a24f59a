package mcp

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docketdive/docketdive/internal/chat"
	"github.com/docketdive/docketdive/internal/llm"
	"github.com/docketdive/docketdive/internal/prompt"
	"github.com/docketdive/docketdive/internal/retrieval"
	"github.com/docketdive/docketdive/internal/vectordb"
)

// mockEmbedder implements embeddings.Embedder for testing.
type mockEmbedder struct{}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = make([]float32, 3)
	}
	return result, nil
}
func (m *mockEmbedder) Dimensions() int { return 3 }
func (m *mockEmbedder) Name() string    { return "mock" }

// mockStore implements vectordb.Store for testing.
type mockStore struct {
	passages []vectordb.Passage
}

func (m *mockStore) AddPassages(_ context.Context, passages []vectordb.Passage, _ [][]float32) error {
	m.passages = append(m.passages, passages...)
	return nil
}

func (m *mockStore) Search(_ context.Context, _ string, limit int) ([]vectordb.SearchResult, error) {
	return m.results(limit), nil
}

func (m *mockStore) SearchVector(_ context.Context, _ []float32, limit int) ([]vectordb.SearchResult, error) {
	return m.results(limit), nil
}

func (m *mockStore) results(limit int) []vectordb.SearchResult {
	var results []vectordb.SearchResult
	for _, p := range m.passages {
		results = append(results, vectordb.SearchResult{Passage: p, Similarity: 0.9})
		if len(results) >= limit {
			break
		}
	}
	return results
}

func (m *mockStore) GetBySourceURL(_ context.Context, _ string) ([]vectordb.Passage, error) {
	return nil, nil
}
func (m *mockStore) DeleteBySourceURL(_ context.Context, _ string) error { return nil }
func (m *mockStore) Persist(_ context.Context, _ string) error           { return nil }
func (m *mockStore) Load(_ context.Context, _ string) error              { return nil }
func (m *mockStore) Count() int                                          { return len(m.passages) }

// fixedStream replays a single chunk, then EOF.
type fixedStream struct {
	content string
	done    bool
}

func (s *fixedStream) Recv() (llm.Chunk, error) {
	if s.done {
		return llm.Chunk{}, io.EOF
	}
	s.done = true
	return llm.Chunk{Content: s.content, FinishReason: "stop"}, nil
}

func (s *fixedStream) Close() error { return nil }

type fixedProvider struct {
	content string
}

func (p *fixedProvider) StreamComplete(_ context.Context, _ llm.CompletionRequest) (llm.Stream, error) {
	return &fixedStream{content: p.content}, nil
}

func (p *fixedProvider) Name() string { return "mock" }

func testPassage() vectordb.Passage {
	return vectordb.Passage{
		ID:      "p1",
		Content: "The owner was held strictly liable under the actio de pauperie.",
		Metadata: vectordb.PassageMetadata{
			Title:     "Van Meyeren v Cloete",
			Citation:  "[2020] ZASCA 100",
			Court:     "Supreme Court of Appeal",
			SourceURL: "https://www.saflii.org/za/cases/ZASCA/2020/100.html",
			Type:      vectordb.SourceCaseLaw,
		},
	}
}

func newTestServer(store *mockStore, answer string) *Server {
	pipeline := chat.NewPipeline(chat.Deps{
		QueryEmbedder:  &mockEmbedder{},
		Store:          store,
		Assembler:      retrieval.NewAssembler(retrieval.DefaultConfig()),
		Prompts:        prompt.NewBuilder(""),
		Providers:      map[llm.Backend]llm.Provider{llm.BackendLocal: &fixedProvider{content: answer}},
		Models:         map[llm.Backend]string{llm.BackendLocal: "llama3.1"},
		Streamer:       chat.NewStreamer(time.Second),
		DefaultBackend: llm.BackendLocal,
	})
	return NewServer(pipeline)
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"search_caselaw", searchCaselawTool, "search_caselaw"},
		{"ask_docketdive", askDocketdiveTool, "ask_docketdive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := newTestServer(&mockStore{}, "")

	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
}

func TestHandleSearchCaselaw(t *testing.T) {
	store := &mockStore{passages: []vectordb.Passage{testPassage()}}
	srv := newTestServer(store, "")
	ctx := context.Background()

	t.Run("basic search", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query": "strict liability for animals",
		}

		result, err := srv.handleSearchCaselaw(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}

		text := resultText(t, result)
		if !strings.Contains(text, "Van Meyeren v Cloete") {
			t.Errorf("expected title in output, got %q", text)
		}
		if !strings.Contains(text, "[2020] ZASCA 100") {
			t.Errorf("expected citation in output, got %q", text)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleSearchCaselaw(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})

	t.Run("empty store", func(t *testing.T) {
		emptySrv := newTestServer(&mockStore{}, "")
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query": "anything",
		}

		result, err := emptySrv.handleSearchCaselaw(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(resultText(t, result), "No results found") {
			t.Error("expected empty-corpus hint")
		}
	})
}

func TestHandleAskDocketdive(t *testing.T) {
	store := &mockStore{passages: []vectordb.Passage{testPassage()}}
	srv := newTestServer(store, "Per [Source 1], the owner is strictly liable.")
	ctx := context.Background()

	t.Run("grounded answer with sources", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"question": "Is a dog owner strictly liable?",
		}

		result, err := srv.handleAskDocketdive(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}

		text := resultText(t, result)
		if !strings.Contains(text, "strictly liable") {
			t.Errorf("expected answer text, got %q", text)
		}
		if !strings.Contains(text, "Sources:") {
			t.Errorf("expected sources section, got %q", text)
		}
		if !strings.Contains(text, "Van Meyeren v Cloete") {
			t.Errorf("expected source title, got %q", text)
		}
	})

	t.Run("missing question", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleAskDocketdive(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing question")
		}
	})
}

// resultText extracts the text payload of a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return tc.Text
}
