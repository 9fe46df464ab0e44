package embeddings

import "context"

// Embedder defines the interface for generating text embeddings.
// Implementations must be deterministic for a fixed model: the same text
// always embeds to the same vector, which is what makes a persisted index
// usable across process restarts.
type Embedder interface {
	// Embed generates embeddings for one or more texts, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}
