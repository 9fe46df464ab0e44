// Package vectordb implements the embedding-backed similarity index over
// document chunks, including its persistence format and the shared Store
// wrapper that serializes mutations.
package vectordb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	chromem "github.com/philippgille/chromem-go"

	"github.com/JamesFein/langchain-rag-chat/internal/embeddings"
)

const collectionName = "documents"

// Index is a similarity-search structure over embedded chunks, backed by a
// chromem-go collection. Chunks are embedded up front and inserted with
// precomputed vectors, so a provider failure can never leave the collection
// partially updated.
type Index struct {
	db       *chromem.DB
	col      *chromem.Collection
	embedder embeddings.Embedder
}

// Load deserializes a persisted index from path. A missing file is not an
// error: it returns (nil, nil), meaning no index exists yet. Unreadable or
// incompatible data returns a *LoadError; the caller falls back to an
// absent index instead of crashing.
func Load(path string, embedder embeddings.Embedder) (*Index, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(path, ""); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	col := db.GetCollection(collectionName, embeddings.ToChromemFunc(embedder))
	if col == nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("collection %q not found in snapshot", collectionName)}
	}

	return &Index{db: db, col: col, embedder: embedder}, nil
}

// Create embeds the given chunks and builds a fresh index over them.
// On embedding failure no index is produced.
func Create(ctx context.Context, embedder embeddings.Embedder, chunks []Chunk) (*Index, error) {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	idx := &Index{db: db, col: col, embedder: embedder}
	if err := idx.Add(ctx, chunks); err != nil {
		return nil, err
	}
	return idx, nil
}

// Add embeds and appends chunks to the index. All chunks are embedded before
// any insertion happens, so a failed Add mutates nothing.
func (ix *Index) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	for _, c := range chunks {
		if c.ID == "" || c.Text == "" {
			return fmt.Errorf("chunk with empty id or text (source %q)", c.Metadata.Source)
		}
	}

	vectors, err := ix.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:        c.ID,
			Content:   c.Text,
			Metadata:  metadataToMap(c.Metadata),
			Embedding: vectors[i],
		}
	}

	if err := ix.col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("inserting chunks: %w", err)
	}
	return nil
}

// embedChunks embeds every chunk text and validates the provider's output
// shape against the configured dimensionality.
func (ix *Index) embedChunks(ctx context.Context, chunks []Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}
	if len(vectors) != len(chunks) {
		return nil, &EmbeddingError{Err: fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks))}
	}

	want := ix.embedder.Dimensions()
	for i, v := range vectors {
		if len(v) != want {
			return nil, &EmbeddingError{Err: fmt.Errorf("vector %d has %d dimensions, expected %d", i, len(v), want)}
		}
	}
	return vectors, nil
}

// Persist serializes the index to path, overwriting any prior version.
// The snapshot is written to a temp file and renamed into place, so a crash
// mid-write never replaces a readable index with a partial one.
func (ix *Index) Persist(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := ix.db.ExportToFile(tmp, true, ""); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("exporting index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing index snapshot: %w", err)
	}
	return nil
}

// Search embeds the query with the index's embedding model and returns the k
// nearest chunks, best match first. k is clamped to the collection size; an
// empty index yields no matches.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Match, error) {
	count := ix.col.Count()
	if count == 0 {
		return nil, nil
	}
	if k <= 0 || k > count {
		k = count
	}

	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}
	if len(vectors) != 1 {
		return nil, &EmbeddingError{Err: fmt.Errorf("got %d vectors for query", len(vectors))}
	}

	results, err := ix.col.QueryEmbedding(ctx, vectors[0], k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			Chunk: Chunk{
				ID:       r.ID,
				Text:     r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Score: r.Similarity,
		}
	}
	return matches, nil
}

// Count returns the number of chunks in the index.
func (ix *Index) Count() int {
	return ix.col.Count()
}
