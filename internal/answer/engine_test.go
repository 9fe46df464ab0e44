package answer

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JamesFein/langchain-rag-chat/internal/llm"
	"github.com/JamesFein/langchain-rag-chat/internal/vectordb"
)

type mockEmbedder struct{ dims int }

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, m.dims)
		for j, ch := range text {
			vec[(int(ch)+j)%m.dims] += 1.0
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v * v)
		}
		norm = math.Sqrt(norm)
		if norm > 0 {
			for j := range vec {
				vec[j] = float32(float64(vec[j]) / norm)
			}
		}
		out[i] = vec
	}
	return out, nil
}
func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

// mockProvider records the last request and returns a canned response.
type mockProvider struct {
	lastReq llm.CompletionRequest
	content string
	err     error
}

func (p *mockProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Content: p.content}, nil
}

func (p *mockProvider) Name() string { return "mock" }

func readyStore(t *testing.T, chunks []vectordb.Chunk) *vectordb.Store {
	t.Helper()
	store, err := vectordb.OpenStore(filepath.Join(t.TempDir(), "index.gob.gz"), &mockEmbedder{dims: 64})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Update(context.Background(), chunks); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestAnswerNotReady(t *testing.T) {
	store, err := vectordb.OpenStore(filepath.Join(t.TempDir(), "index.gob.gz"), &mockEmbedder{dims: 8})
	if err != nil {
		t.Fatal(err)
	}

	engine := New(store, &mockProvider{content: "irrelevant"}, "test-model", 4)
	_, err = engine.Answer(context.Background(), "anything")
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady before ingestion, got %v", err)
	}
}

func TestAnswerReturnsCompletionVerbatim(t *testing.T) {
	store := readyStore(t, []vectordb.Chunk{
		{ID: "doc#0", Text: "The capital of France is Paris.", Metadata: vectordb.ChunkMetadata{Source: "doc.txt"}},
	})

	provider := &mockProvider{content: "  The capital of France is Paris.  "}
	engine := New(store, provider, "test-model", 4)

	got, err := engine.Answer(context.Background(), "What is the capital of France?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if got != "The capital of France is Paris." {
		t.Errorf("answer not trimmed/verbatim: %q", got)
	}
	if !strings.Contains(got, "Paris") {
		t.Errorf("answer should reference Paris: %q", got)
	}
}

func TestAnswerPromptContainsContextAndQuery(t *testing.T) {
	store := readyStore(t, []vectordb.Chunk{
		{ID: "doc#0", Text: "Mars is the fourth planet.", Metadata: vectordb.ChunkMetadata{Source: "space.txt"}},
	})

	provider := &mockProvider{content: "ok"}
	engine := New(store, provider, "test-model", 4)

	query := "Tell me about Mars."
	if _, err := engine.Answer(context.Background(), query); err != nil {
		t.Fatal(err)
	}

	if len(provider.lastReq.Messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(provider.lastReq.Messages))
	}
	user := provider.lastReq.Messages[1].Content
	if !strings.Contains(user, "Mars is the fourth planet.") {
		t.Errorf("prompt missing retrieved chunk text:\n%s", user)
	}
	if !strings.Contains(user, query) {
		t.Errorf("prompt missing the query:\n%s", user)
	}
	if !strings.Contains(user, "space.txt") {
		t.Errorf("prompt missing chunk provenance:\n%s", user)
	}
}

func TestAnswerContextInRetrievalRankOrder(t *testing.T) {
	store := readyStore(t, []vectordb.Chunk{
		{ID: "a#0", Text: "zebra content entirely unrelated", Metadata: vectordb.ChunkMetadata{Source: "a"}},
		{ID: "b#0", Text: "target phrase about lighthouses", Metadata: vectordb.ChunkMetadata{Source: "b"}},
	})

	provider := &mockProvider{content: "ok"}
	engine := New(store, provider, "test-model", 2)

	if _, err := engine.Answer(context.Background(), "target phrase about lighthouses"); err != nil {
		t.Fatal(err)
	}

	user := provider.lastReq.Messages[1].Content
	first := strings.Index(user, "target phrase about lighthouses")
	second := strings.Index(user, "zebra content entirely unrelated")
	if first == -1 || second == -1 {
		t.Fatalf("both chunks should appear in the prompt:\n%s", user)
	}
	if first > second {
		t.Error("best match should appear before weaker matches in the prompt")
	}
}

func TestAnswerProviderFailure(t *testing.T) {
	store := readyStore(t, []vectordb.Chunk{
		{ID: "d#0", Text: "content", Metadata: vectordb.ChunkMetadata{Source: "d"}},
	})

	engine := New(store, &mockProvider{err: errors.New("rate limited")}, "test-model", 4)

	_, err := engine.Answer(context.Background(), "question")
	var compErr *CompletionError
	if !errors.As(err, &compErr) {
		t.Fatalf("expected *CompletionError, got %v", err)
	}
}

func TestAnswerEmptyCompletion(t *testing.T) {
	store := readyStore(t, []vectordb.Chunk{
		{ID: "d#0", Text: "content", Metadata: vectordb.ChunkMetadata{Source: "d"}},
	})

	engine := New(store, &mockProvider{content: "   \n"}, "test-model", 4)

	_, err := engine.Answer(context.Background(), "question")
	if !errors.Is(err, ErrNoAnswer) {
		t.Fatalf("expected ErrNoAnswer for empty completion, got %v", err)
	}
}
