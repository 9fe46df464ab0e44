package vectordb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// mockEmbedder returns deterministic embeddings based on text content.
// Shared characters contribute to the same vector positions, so similar
// texts produce similar vectors, which is enough for ranking tests.
type mockEmbedder struct {
	dims int
	fail bool
	bad  bool // return vectors of the wrong size
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{dims: dims}
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if m.fail {
		return nil, errors.New("provider unreachable")
	}
	results := make([][]float32, len(texts))
	for i, text := range texts {
		if m.bad {
			results[i] = make([]float32, m.dims+1)
			continue
		}
		results[i] = m.deterministicVector(text)
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

func (m *mockEmbedder) deterministicVector(text string) []float32 {
	vec := make([]float32, m.dims)
	for i, ch := range text {
		idx := (int(ch) + i) % m.dims
		vec[idx] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func testChunks(n int, prefix string) []Chunk {
	chunks := make([]Chunk, n)
	for i := range chunks {
		chunks[i] = Chunk{
			ID:   fmt.Sprintf("%s#%d", prefix, i),
			Text: fmt.Sprintf("%s chunk number %d with some distinctive text", prefix, i),
			Metadata: ChunkMetadata{
				Source:   prefix,
				Position: i,
				Offset:   i * 100,
			},
		}
	}
	return chunks
}

func TestCreateAndSearch(t *testing.T) {
	ctx := context.Background()
	emb := newMockEmbedder(64)

	chunks := []Chunk{
		{ID: "doc#0", Text: "The capital of France is Paris.", Metadata: ChunkMetadata{Source: "doc"}},
		{ID: "doc#1", Text: "Mars is a planet in our solar system.", Metadata: ChunkMetadata{Source: "doc", Position: 1}},
	}

	idx, err := Create(ctx, emb, chunks)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if idx.Count() != 2 {
		t.Fatalf("expected 2 chunks, got %d", idx.Count())
	}

	matches, err := idx.Search(ctx, "What is the capital of France?", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Chunk.ID != "doc#0" {
		t.Errorf("expected best match doc#0, got %s", matches[0].Chunk.ID)
	}
	if matches[0].Chunk.Metadata.Source != "doc" {
		t.Errorf("metadata lost in search: %+v", matches[0].Chunk.Metadata)
	}
}

func TestSearchOrderedBestFirst(t *testing.T) {
	ctx := context.Background()
	emb := newMockEmbedder(64)

	idx, err := Create(ctx, emb, testChunks(10, "corpus"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	matches, err := idx.Search(ctx, "corpus chunk number 3 with some distinctive text", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 5 {
		t.Fatalf("expected 5 matches, got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not ordered best first: %v > %v at %d", matches[i].Score, matches[i-1].Score, i)
		}
	}
}

func TestSearchKClampedToCollectionSize(t *testing.T) {
	ctx := context.Background()
	idx, err := Create(ctx, newMockEmbedder(32), testChunks(3, "small"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	matches, err := idx.Search(ctx, "anything", 10)
	if err != nil {
		t.Fatalf("Search with k > size failed: %v", err)
	}
	if len(matches) != 3 {
		t.Errorf("expected 3 matches, got %d", len(matches))
	}
}

func TestCreateEmbeddingFailureProducesNoIndex(t *testing.T) {
	emb := newMockEmbedder(32)
	emb.fail = true

	_, err := Create(context.Background(), emb, testChunks(2, "x"))
	var embErr *EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("expected *EmbeddingError, got %v", err)
	}
}

func TestAddEmbeddingFailureMutatesNothing(t *testing.T) {
	ctx := context.Background()
	emb := newMockEmbedder(32)

	idx, err := Create(ctx, emb, testChunks(4, "base"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	emb.fail = true
	err = idx.Add(ctx, testChunks(4, "extra"))
	var embErr *EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("expected *EmbeddingError, got %v", err)
	}
	if idx.Count() != 4 {
		t.Errorf("failed Add must not mutate the index: count %d", idx.Count())
	}
}

func TestMalformedEmbeddingsRejected(t *testing.T) {
	emb := newMockEmbedder(32)
	emb.bad = true

	_, err := Create(context.Background(), emb, testChunks(1, "x"))
	var embErr *EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("expected *EmbeddingError for wrong dimensionality, got %v", err)
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	emb := newMockEmbedder(64)
	path := filepath.Join(t.TempDir(), "index.gob.gz")

	idx, err := Create(ctx, emb, testChunks(8, "doc"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := idx.Persist(path); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	loaded, err := Load(path, emb)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned absent index for an existing snapshot")
	}
	if loaded.Count() != idx.Count() {
		t.Fatalf("count mismatch after round trip: %d vs %d", loaded.Count(), idx.Count())
	}

	query := "doc chunk number 2 with some distinctive text"
	before, err := idx.Search(ctx, query, 4)
	if err != nil {
		t.Fatal(err)
	}
	after, err := loaded.Search(ctx, query, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != len(after) {
		t.Fatalf("result count differs after round trip: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Chunk.ID != after[i].Chunk.ID {
			t.Errorf("result %d differs: %s vs %s", i, before[i].Chunk.ID, after[i].Chunk.ID)
		}
	}
}

func TestLoadMissingPathIsAbsent(t *testing.T) {
	idx, err := Load(filepath.Join(t.TempDir(), "nope.gob.gz"), newMockEmbedder(8))
	if err != nil {
		t.Fatalf("missing snapshot should not be an error, got %v", err)
	}
	if idx != nil {
		t.Error("missing snapshot should yield an absent index")
	}
}

func TestLoadCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob.gz")
	if err := os.WriteFile(path, []byte("definitely not gob"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path, newMockEmbedder(8))
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
}

func TestPersistLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.gob.gz")

	idx, err := Create(context.Background(), newMockEmbedder(16), testChunks(2, "d"))
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Persist(path); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("snapshot missing after Persist: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind after Persist")
	}
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	emb := newMockEmbedder(64)
	path := filepath.Join(t.TempDir(), "index.gob.gz")

	store, err := OpenStore(path, emb)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	if store.Ready() {
		t.Error("fresh store should not be ready")
	}
	if _, err := store.Search(ctx, "anything", 4); !errors.Is(err, ErrNoIndex) {
		t.Errorf("expected ErrNoIndex before ingestion, got %v", err)
	}

	created, err := store.Update(ctx, testChunks(5, "first"))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !created {
		t.Error("first Update should create the index")
	}
	if !store.Ready() || store.Count() != 5 {
		t.Errorf("store not ready after create: ready=%v count=%d", store.Ready(), store.Count())
	}

	created, err = store.Update(ctx, testChunks(3, "second"))
	if err != nil {
		t.Fatalf("second Update failed: %v", err)
	}
	if created {
		t.Error("second Update should add, not create")
	}
	if store.Count() != 8 {
		t.Errorf("expected 8 chunks after add, got %d", store.Count())
	}

	// A new store at the same path sees the persisted state.
	reopened, err := OpenStore(path, emb)
	if err != nil {
		t.Fatalf("reopening store failed: %v", err)
	}
	if reopened.Count() != 8 {
		t.Errorf("persisted store has %d chunks, want 8", reopened.Count())
	}
}

func TestStoreMonotonicGrowth(t *testing.T) {
	ctx := context.Background()
	emb := newMockEmbedder(64)
	path := filepath.Join(t.TempDir(), "index.gob.gz")

	store, _ := OpenStore(path, emb)
	if _, err := store.Update(ctx, testChunks(3, "old")); err != nil {
		t.Fatal(err)
	}

	query := "new chunk number 1 with some distinctive text"
	before, err := store.Search(ctx, query, 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range before {
		if m.Chunk.Metadata.Source == "new" {
			t.Fatal("new chunks retrievable before Add")
		}
	}

	if _, err := store.Update(ctx, testChunks(3, "new")); err != nil {
		t.Fatal(err)
	}

	after, err := store.Search(ctx, query, 10)
	if err != nil {
		t.Fatal(err)
	}
	var sawNew, sawOld bool
	for _, m := range after {
		switch m.Chunk.Metadata.Source {
		case "new":
			sawNew = true
		case "old":
			sawOld = true
		}
	}
	if !sawNew {
		t.Error("added chunks not retrievable after Add")
	}
	if !sawOld {
		t.Error("previously retrievable chunks lost after Add")
	}
}

func TestStoreFailedUpdateKeepsPriorState(t *testing.T) {
	ctx := context.Background()
	emb := newMockEmbedder(64)
	path := filepath.Join(t.TempDir(), "index.gob.gz")

	store, _ := OpenStore(path, emb)
	if _, err := store.Update(ctx, testChunks(4, "stable")); err != nil {
		t.Fatal(err)
	}

	emb.fail = true
	if _, err := store.Update(ctx, testChunks(2, "doomed")); err == nil {
		t.Fatal("expected Update to fail while provider is down")
	}
	emb.fail = false

	if store.Count() != 4 {
		t.Errorf("failed update mutated the store: count %d", store.Count())
	}

	// The persisted snapshot still holds only the prior state.
	reopened, err := OpenStore(path, emb)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Count() != 4 {
		t.Errorf("persisted snapshot corrupted by failed update: count %d", reopened.Count())
	}
}

func TestOpenStoreCorruptSnapshotDegradesToAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob.gz")
	if err := os.WriteFile(path, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := OpenStore(path, newMockEmbedder(8))
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if store == nil {
		t.Fatal("store should be usable even when the snapshot is corrupt")
	}
	if store.Ready() {
		t.Error("corrupt snapshot should degrade to an absent index")
	}
}
