// Package chunker splits extracted document text into overlapping fixed-size
// chunks. Sizes are measured in runes (characters), not tokens: the unit is
// documented here because it defines chunk boundaries and overlap exactly.
package chunker

import (
	"fmt"

	"github.com/JamesFein/langchain-rag-chat/internal/loader"
	"github.com/JamesFein/langchain-rag-chat/internal/vectordb"
)

const (
	// DefaultChunkSize is the sliding-window width in runes.
	DefaultChunkSize = 1000
	// DefaultOverlap is how many runes consecutive chunks share.
	DefaultOverlap = 200
)

// Chunker performs deterministic sliding-window segmentation. It is a pure
// transformation: identical input and configuration always produce the same
// chunk sequence.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker with the given window size and overlap, both in
// runes. Non-positive size or negative overlap fall back to the defaults;
// an overlap as large as the window is clamped so the window always advances.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= size {
		overlap = size - 1
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split chunks the segments of a single document, preserving segment order.
// Chunk IDs are docID plus the chunk's ordinal, so re-ingesting a document
// replaces its previous chunks instead of duplicating them. Trailing content
// shorter than the window is always kept as a final, shorter chunk.
func (c *Chunker) Split(docID string, segments []loader.Segment) []vectordb.Chunk {
	var chunks []vectordb.Chunk
	position := 0
	step := c.size - c.overlap

	for _, seg := range segments {
		runes := []rune(seg.Text)
		for start := 0; start < len(runes); start += step {
			end := start + c.size
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, vectordb.Chunk{
				ID:   fmt.Sprintf("%s#%d", docID, position),
				Text: string(runes[start:end]),
				Metadata: vectordb.ChunkMetadata{
					Source:   docID,
					Page:     seg.Page,
					Offset:   start,
					Position: position,
				},
			})
			position++
			if end == len(runes) {
				break
			}
		}
	}

	return chunks
}
