package answer

import (
	"fmt"
	"strings"

	"github.com/JamesFein/langchain-rag-chat/internal/vectordb"
)

const systemPrompt = `You are a helpful assistant that answers questions about the user's documents.
Use only the provided context to answer. If the context does not contain the
answer, say that you don't know rather than guessing.`

// buildPrompt assembles the retrieved chunks, in retrieval-rank order, into a
// single "stuff"-style prompt followed by the user's question.
func buildPrompt(query string, matches []vectordb.Match) string {
	var sb strings.Builder
	sb.WriteString("Context:\n\n")

	for i, m := range matches {
		fmt.Fprintf(&sb, "[%d] (source: %s", i+1, m.Chunk.Metadata.Source)
		if m.Chunk.Metadata.Page > 0 {
			fmt.Fprintf(&sb, ", page %d", m.Chunk.Metadata.Page)
		}
		sb.WriteString(")\n")
		sb.WriteString(m.Chunk.Text)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Question: ")
	sb.WriteString(query)
	return sb.String()
}
