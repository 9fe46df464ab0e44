package vectordb

import "strconv"

// Chunk is an immutable text span produced by the chunker. Once added to an
// index it is never mutated; re-ingesting a document produces new chunks.
type Chunk struct {
	ID       string
	Text     string
	Metadata ChunkMetadata
}

// ChunkMetadata records where a chunk came from.
type ChunkMetadata struct {
	// Source is the originating document path or identifier.
	Source string
	// Page is the 1-based page number for paginated formats, 0 otherwise.
	Page int
	// Offset is the chunk's starting rune offset within its segment.
	Offset int
	// Position is the chunk's ordinal within its document.
	Position int
}

// Match pairs a chunk with its similarity score. Higher is more similar.
type Match struct {
	Chunk Chunk
	Score float32
}

// metadataToMap flattens ChunkMetadata into chromem's string map form.
func metadataToMap(m ChunkMetadata) map[string]string {
	return map[string]string{
		"source":   m.Source,
		"page":     strconv.Itoa(m.Page),
		"offset":   strconv.Itoa(m.Offset),
		"position": strconv.Itoa(m.Position),
	}
}

// mapToMetadata converts a flat string map back to ChunkMetadata.
func mapToMetadata(m map[string]string) ChunkMetadata {
	page, _ := strconv.Atoi(m["page"])
	offset, _ := strconv.Atoi(m["offset"])
	position, _ := strconv.Atoi(m["position"])
	return ChunkMetadata{
		Source:   m["source"],
		Page:     page,
		Offset:   offset,
		Position: position,
	}
}
