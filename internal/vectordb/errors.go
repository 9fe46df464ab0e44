package vectordb

import (
	"errors"
	"fmt"
)

// ErrNoIndex is returned by read operations before the first successful
// ingestion. It signals "not ready", distinct from an empty result.
var ErrNoIndex = errors.New("no vector index exists yet")

// LoadError indicates a persisted index exists but could not be read.
// Callers degrade to an absent index rather than failing the process.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading vector index from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// EmbeddingError indicates the embedding provider was unreachable or
// returned malformed output. No index mutation happens when it occurs.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }
