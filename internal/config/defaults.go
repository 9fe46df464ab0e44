package config

import "path/filepath"

// DefaultConfig returns a Config with sensible defaults. Chunking defaults
// follow the common 1000-character window with 200 characters of overlap.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderOpenAI,
		Model:          "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
		DataDir:        ".ragchat",
		UploadDir:      "uploads",
		ChunkSize:      1000,
		ChunkOverlap:   200,
		TopK:           4,
		Port:           8000,
	}
}

// IndexPath returns the path of the persisted vector index.
func (c *Config) IndexPath() string {
	return filepath.Join(c.DataDir, "index.gob.gz")
}

// HistoryPath returns the path of the SQLite history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}
