package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docketdive/docketdive/internal/embeddings"
	"github.com/docketdive/docketdive/internal/llm"
	"github.com/docketdive/docketdive/internal/prompt"
	"github.com/docketdive/docketdive/internal/retrieval"
	"github.com/docketdive/docketdive/internal/vectordb"
)

var (
	// ErrEmptyInput is returned for messages that are blank after trimming,
	// before any network call is made.
	ErrEmptyInput = errors.New("empty message")
	// ErrUnknownProvider is returned for provider values outside
	// {local, cloud}.
	ErrUnknownProvider = errors.New("unknown provider")
)

// Request is the chat endpoint's request body.
type Request struct {
	Message             string        `json:"message"`
	ConversationHistory []HistoryTurn `json:"conversationHistory,omitempty"`
	Provider            string        `json:"provider,omitempty"`
	Language            string        `json:"language,omitempty"`
	LegalAidMode        bool          `json:"legalAidMode,omitempty"`
}

// HistoryTurn is one prior turn of the conversation, oldest first.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Deps are the pipeline's collaborators, constructed once at process start
// and passed in explicitly.
type Deps struct {
	QueryEmbedder  embeddings.Embedder
	Store          vectordb.Store
	Assembler      *retrieval.Assembler
	Prompts        *prompt.Builder
	Providers      map[llm.Backend]llm.Provider
	Models         map[llm.Backend]string
	Streamer       *Streamer
	SearchLimit    int
	Temperature    float64
	MaxTokens      int
	DefaultBackend llm.Backend
}

// Pipeline orchestrates one request: embed, search, assemble, prompt,
// generate, stream. It holds no per-request state; a single instance serves
// concurrent requests.
type Pipeline struct {
	deps Deps
}

// NewPipeline creates a pipeline from its dependencies.
func NewPipeline(deps Deps) *Pipeline {
	if deps.SearchLimit <= 0 {
		deps.SearchLimit = vectordb.DefaultSearchLimit
	}
	if deps.DefaultBackend == "" {
		deps.DefaultBackend = llm.BackendLocal
	}
	return &Pipeline{deps: deps}
}

// Ask runs the full pipeline for one request. Pre-stream failures
// (validation, embedding, search, opening the completion) are returned as an
// error; once the event channel is returned, all further failures arrive as
// a terminal error event on it.
func (p *Pipeline) Ask(ctx context.Context, req Request) (<-chan Event, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyInput
	}

	backend := llm.Backend(req.Provider)
	if req.Provider == "" {
		backend = p.deps.DefaultBackend
	}
	provider, ok := p.deps.Providers[backend]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, req.Provider)
	}

	started := time.Now()

	bundle, err := p.retrieve(ctx, message)
	if err != nil {
		return nil, err
	}

	messages := p.deps.Prompts.Build(prompt.Request{
		Query:    message,
		History:  toMessages(req.ConversationHistory),
		Bundle:   bundle,
		Language: req.Language,
		LegalAid: req.LegalAidMode,
	})

	stream, err := provider.StreamComplete(ctx, llm.CompletionRequest{
		Model:       p.deps.Models[backend],
		Messages:    messages,
		MaxTokens:   p.deps.MaxTokens,
		Temperature: p.deps.Temperature,
	})
	if err != nil {
		return nil, err
	}

	return p.deps.Streamer.Stream(ctx, StreamJob{
		RequestID:   uuid.NewString(),
		Provider:    provider.Name(),
		Model:       p.deps.Models[backend],
		Bundle:      bundle,
		TokenStream: stream,
		Started:     started,
	}), nil
}

// Search runs the retrieval half of the pipeline only: embed the query and
// return raw ranked hits. Used by the search endpoint, the CLI, and MCP.
func (p *Pipeline) Search(ctx context.Context, query string, limit int) ([]vectordb.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyInput
	}
	if limit <= 0 {
		limit = p.deps.SearchLimit
	}

	vectors, err := p.deps.QueryEmbedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return p.deps.Store.SearchVector(ctx, vectors[0], limit)
}

// Answer runs Ask to completion and returns the accumulated text. Used by
// callers without a streaming surface (MCP tools).
func (p *Pipeline) Answer(ctx context.Context, req Request) (string, []Source, error) {
	events, err := p.Ask(ctx, req)
	if err != nil {
		return "", nil, err
	}

	var text strings.Builder
	var sources []Source
	for ev := range events {
		switch ev.Type {
		case EventSources:
			sources = ev.Sources
		case EventTextDelta:
			text.WriteString(ev.Delta)
		case EventError:
			return text.String(), sources, fmt.Errorf("%w: %s", llm.ErrUpstream, ev.Err)
		}
	}
	return text.String(), sources, nil
}

func (p *Pipeline) retrieve(ctx context.Context, message string) (retrieval.ContextBundle, error) {
	vectors, err := p.deps.QueryEmbedder.Embed(ctx, []string{message})
	if err != nil {
		return retrieval.ContextBundle{}, err
	}

	hits, err := p.deps.Store.SearchVector(ctx, vectors[0], p.deps.SearchLimit)
	if err != nil {
		return retrieval.ContextBundle{}, err
	}

	return p.deps.Assembler.Assemble(hits), nil
}

func toMessages(history []HistoryTurn) []llm.Message {
	if len(history) == 0 {
		return nil
	}
	messages := make([]llm.Message, 0, len(history))
	for _, turn := range history {
		role := llm.Role(turn.Role)
		switch role {
		case llm.RoleUser, llm.RoleAssistant:
		default:
			role = llm.RoleUser
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}
	return messages
}
