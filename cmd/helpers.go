package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/JamesFein/langchain-rag-chat/internal/config"
	"github.com/JamesFein/langchain-rag-chat/internal/embeddings"
	"github.com/JamesFein/langchain-rag-chat/internal/history"
	"github.com/JamesFein/langchain-rag-chat/internal/llm"
	"github.com/JamesFein/langchain-rag-chat/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `ragchat init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
// This is the shared version used by the ingest, search, ask, serve and mcp
// commands.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, cfg.EmbeddingModel), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, cfg.EmbeddingDimensions, os.Getenv("OLLAMA_HOST")), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// createProviderFromConfig creates an LLM provider based on config settings.
func createProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model)
}

// openStore opens the persisted vector index. A corrupt snapshot is not
// fatal: the warning goes to stderr and an empty store is returned so the
// index can be rebuilt by re-ingesting.
func openStore(cfg *config.Config, embedder embeddings.Embedder) (*vectordb.Store, error) {
	store, err := vectordb.OpenStore(cfg.IndexPath(), embedder)
	if err != nil {
		var loadErr *vectordb.LoadError
		if errors.As(err, &loadErr) {
			fmt.Fprintf(os.Stderr, "Warning: could not load index from %s: %v\n", loadErr.Path, loadErr.Err)
			fmt.Fprintln(os.Stderr, "Starting with an empty index. Run `ragchat ingest` to rebuild it.")
			return store, nil
		}
		return nil, fmt.Errorf("opening vector store: %w", err)
	}
	return store, nil
}

// openHistory opens the ingestion history database. A failure here is
// reported to the caller; commands degrade to running without history.
func openHistory(cfg *config.Config) (*history.DB, error) {
	return history.Open(cfg.HistoryPath())
}
