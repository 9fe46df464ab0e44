// Package answer implements the retrieve-then-generate query flow: fetch the
// closest chunks from the vector store, then drive a single completion
// constrained to that context.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JamesFein/langchain-rag-chat/internal/llm"
	"github.com/JamesFein/langchain-rag-chat/internal/vectordb"
)

// ErrNotReady is returned when no index exists yet. It is distinct from
// ErrNoAnswer: the former means "upload documents first", the latter means
// the model produced nothing usable for this query.
var ErrNotReady = errors.New("document index is not ready")

// ErrNoAnswer is returned when retrieval found context but the completion
// came back empty.
var ErrNoAnswer = errors.New("no answer produced")

// CompletionError indicates the completion provider failed. Callers degrade
// it to "no answer" rather than exposing raw provider errors.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed: %v", e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// DefaultTopK is how many chunks are retrieved per query.
const DefaultTopK = 4

// Engine answers natural-language queries against the shared vector store.
// It performs no caching, no retries and no follow-up retrieval rounds.
type Engine struct {
	store    *vectordb.Store
	provider llm.Provider
	model    string
	topK     int
}

// New creates an Engine. topK <= 0 selects DefaultTopK.
func New(store *vectordb.Store, provider llm.Provider, model string, topK int) *Engine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Engine{store: store, provider: provider, model: model, topK: topK}
}

// Answer retrieves the top chunks for the query and returns the completion
// text verbatim (surrounding whitespace trimmed). The caller must reject
// empty queries before calling. Returns ErrNotReady before the first
// successful ingestion, a *CompletionError when the provider fails, and
// ErrNoAnswer when the completion is empty.
func (e *Engine) Answer(ctx context.Context, query string) (string, error) {
	matches, err := e.store.Search(ctx, query, e.topK)
	if err != nil {
		if errors.Is(err, vectordb.ErrNoIndex) {
			return "", ErrNotReady
		}
		return "", fmt.Errorf("retrieving context: %w", err)
	}
	if len(matches) == 0 {
		return "", ErrNoAnswer
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: buildPrompt(query, matches)},
		},
		MaxTokens:   1024,
		Temperature: 0,
	})
	if err != nil {
		return "", &CompletionError{Err: err}
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", ErrNoAnswer
	}
	return text, nil
}
