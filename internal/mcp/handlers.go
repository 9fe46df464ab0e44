package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/JamesFein/langchain-rag-chat/internal/answer"
	"github.com/JamesFein/langchain-rag-chat/internal/vectordb"
)

const notIngestedMsg = "No documents have been ingested yet. Run `ragchat ingest <files>` to build the index."

// handleSearchDocuments performs semantic search over the document index.
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query cannot be empty"), nil
	}

	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	matches, err := s.store.Search(ctx, query, limit)
	if err != nil {
		if errors.Is(err, vectordb.ErrNoIndex) {
			return mcp.NewToolResultText(notIngestedMsg), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(matches) == 0 {
		return mcp.NewToolResultText("No matching passages found."), nil
	}

	return mcp.NewToolResultText(formatMatches(matches)), nil
}

// handleAskDocuments runs the retrieve-then-generate pipeline for a question.
func (s *Server) handleAskDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query cannot be empty"), nil
	}

	text, err := s.engine.Answer(ctx, query)
	if err != nil {
		if errors.Is(err, answer.ErrNotReady) {
			return mcp.NewToolResultText(notIngestedMsg), nil
		}
		return mcp.NewToolResultError("could not retrieve an answer"), nil
	}

	return mcp.NewToolResultText(text), nil
}

// handleIndexStatus reports index readiness and chunk count.
func (s *Server) handleIndexStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.store.Ready() {
		return mcp.NewToolResultText("No index exists yet."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Index ready with %d chunk(s).", s.store.Count())), nil
}

// formatMatches converts search matches into a text format optimized for AI
// agent consumption.
func formatMatches(matches []vectordb.Match) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d passage(s):\n", len(matches)))

	for i, m := range matches {
		sb.WriteString(fmt.Sprintf("\n--- Passage %d ---\n", i+1))

		if m.Chunk.Metadata.Source != "" {
			location := m.Chunk.Metadata.Source
			if m.Chunk.Metadata.Page > 0 {
				location += fmt.Sprintf(" (page %d)", m.Chunk.Metadata.Page)
			}
			sb.WriteString(fmt.Sprintf("Source: %s\n", location))
		}
		sb.WriteString(fmt.Sprintf("Similarity: %.1f%%\n", m.Score*100))

		sb.WriteString("\n")
		sb.WriteString(m.Chunk.Text)
		sb.WriteString("\n")
	}

	return sb.String()
}
