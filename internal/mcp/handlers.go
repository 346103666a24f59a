package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docketdive/docketdive/internal/chat"
	"github.com/docketdive/docketdive/internal/vectordb"
)

// handleSearchCaselaw performs semantic search over the case-law store.
func (s *Server) handleSearchCaselaw(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 8)
	if limit <= 0 {
		limit = 8
	}

	results, err := s.pipeline.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No results found. The corpus may not be ingested yet. Run `docketdive ingest` to index it."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

// handleAskDocketdive runs the full question-answering pipeline and returns
// the answer together with its sources.
func (s *Server) handleAskDocketdive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	answer, sources, err := s.pipeline.Answer(ctx, chat.Request{
		Message:      question,
		Language:     request.GetString("language", ""),
		LegalAidMode: request.GetBool("legal_aid_mode", false),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("question failed: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(answer)
	if len(sources) > 0 {
		sb.WriteString("\n\nSources:\n")
		for i, src := range sources {
			sb.WriteString(fmt.Sprintf("%d. %s", i+1, src.Title))
			if src.Citation != "" {
				sb.WriteString(" " + src.Citation)
			}
			if src.SourceURL != "" {
				sb.WriteString(" (" + src.SourceURL + ")")
			}
			sb.WriteString("\n")
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// formatSearchResults converts search results into a rich text format
// optimized for AI agent consumption.
func formatSearchResults(results []vectordb.SearchResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("\n--- Result %d ---\n", i+1))

		md := r.Passage.Metadata
		if md.Title != "" {
			sb.WriteString(fmt.Sprintf("Title: %s\n", md.Title))
		}
		if md.Citation != "" {
			sb.WriteString(fmt.Sprintf("Citation: %s\n", md.Citation))
		}
		if md.Court != "" {
			sb.WriteString(fmt.Sprintf("Court: %s\n", md.Court))
		}
		if md.Type != "" {
			sb.WriteString(fmt.Sprintf("Type: %s\n", md.Type))
		}
		if md.SourceURL != "" {
			sb.WriteString(fmt.Sprintf("URL: %s\n", md.SourceURL))
		}
		sb.WriteString(fmt.Sprintf("Similarity: %.1f%%\n", r.Similarity*100))

		sb.WriteString("\n")
		sb.WriteString(r.Passage.Content)
		sb.WriteString("\n")
	}

	return sb.String()
}
