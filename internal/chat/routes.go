package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/docketdive/docketdive/internal/embeddings"
	"github.com/docketdive/docketdive/internal/llm"
	"github.com/docketdive/docketdive/internal/vectordb"
)

// Handler serves the chat and search endpoints over a shared pipeline.
type Handler struct {
	pipeline *Pipeline
}

// NewHandler creates a handler backed by the given pipeline.
func NewHandler(pipeline *Pipeline) *Handler {
	return &Handler{pipeline: pipeline}
}

// RegisterRoutes mounts the request-scoped chat API on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat", h.handleChat)
	r.Post("/api/search", h.handleSearch)
}

// RegisterWebSocket mounts the WebSocket chat route. The connection outlives
// any single request, so the route must not sit behind per-request timeout
// middleware; perMessageTimeout bounds each message instead.
func (h *Handler) RegisterWebSocket(r chi.Router, perMessageTimeout time.Duration) {
	r.Get("/api/chat/ws", func(w http.ResponseWriter, req *http.Request) {
		h.handleWebSocket(w, req, perMessageTimeout)
	})
}

// handleChat streams the response as newline-delimited JSON events. Errors
// before the first event map to an HTTP status; after that the stream itself
// carries a terminal error event.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	events, err := h.pipeline.Ask(r.Context(), req)
	if err != nil {
		status, msg := statusForError(err)
		writeError(w, status, msg)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			// Client went away; the request context cancellation stops
			// the pipeline.
			log.Printf("chat: stream write: %v", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type searchResponse struct {
	Results []searchHit `json:"results"`
}

type searchHit struct {
	Content    string  `json:"content"`
	Title      string  `json:"title"`
	Citation   string  `json:"citation,omitempty"`
	Court      string  `json:"court,omitempty"`
	SourceURL  string  `json:"sourceUrl"`
	Similarity float32 `json:"similarity"`
}

// handleSearch returns raw ranked passages without generation.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := h.pipeline.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		status, msg := statusForError(err)
		writeError(w, status, msg)
		return
	}

	resp := searchResponse{Results: make([]searchHit, 0, len(results))}
	for _, res := range results {
		md := res.Passage.Metadata
		resp.Results = append(resp.Results, searchHit{
			Content:    res.Passage.Content,
			Title:      md.Title,
			Citation:   md.Citation,
			Court:      md.Court,
			SourceURL:  md.SourceURL,
			Similarity: res.Similarity,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("chat: search write: %v", err)
	}
}

// statusForError maps pipeline errors to HTTP statuses: caller mistakes are
// 400, unreachable dependencies are 503.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return http.StatusBadRequest, "message is required"
	case errors.Is(err, ErrUnknownProvider):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, embeddings.ErrEmptyInput):
		return http.StatusBadRequest, "message is required"
	case errors.Is(err, embeddings.ErrUnavailable),
		errors.Is(err, vectordb.ErrUnavailable),
		errors.Is(err, llm.ErrUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
