package vectordb

import (
	"context"
	"sync"

	"github.com/JamesFein/langchain-rag-chat/internal/embeddings"
)

// Store owns the process-wide index instance and its persistence path. It is
// the single resource shared between ingestion and query: searches take a
// read lock, while Update holds the write lock around the whole
// embed-append-persist sequence so at most one mutation is in flight.
type Store struct {
	mu       sync.RWMutex
	embedder embeddings.Embedder
	index    *Index // nil until the first successful ingestion
	path     string
}

// OpenStore creates a Store bound to the given snapshot path and attempts to
// load a previously persisted index. If the snapshot is unreadable, the
// returned Store is still usable (with no index) and the *LoadError is
// returned for logging; a missing snapshot is not an error.
func OpenStore(path string, embedder embeddings.Embedder) (*Store, error) {
	s := &Store{embedder: embedder, path: path}

	idx, err := Load(path, embedder)
	if err != nil {
		return s, err
	}
	s.index = idx
	return s, nil
}

// Ready reports whether an index exists.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index != nil
}

// Count returns the number of indexed chunks, 0 when no index exists.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return 0
	}
	return s.index.Count()
}

// Path returns the snapshot path the store persists to.
func (s *Store) Path() string { return s.path }

// Search returns the k nearest chunks for the query, best match first.
// It returns ErrNoIndex before the first successful ingestion.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return nil, ErrNoIndex
	}
	return s.index.Search(ctx, query, k)
}

// Update adds the chunks to the index, creating it if none exists, and
// persists the result. The whole sequence runs under the store's write lock.
// On embedding failure nothing is mutated and the prior persisted snapshot
// stays authoritative. If the snapshot write itself fails, the in-memory
// index keeps the new chunks and the error is surfaced so the caller can
// report that the on-disk copy is stale.
func (s *Store) Update(ctx context.Context, chunks []Chunk) (created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		idx, err := Create(ctx, s.embedder, chunks)
		if err != nil {
			return false, err
		}
		if err := idx.Persist(s.path); err != nil {
			// The fresh index is kept in memory; queries can use it even
			// though the snapshot write failed.
			s.index = idx
			return true, err
		}
		s.index = idx
		return true, nil
	}

	if err := s.index.Add(ctx, chunks); err != nil {
		return false, err
	}
	return false, s.index.Persist(s.path)
}
