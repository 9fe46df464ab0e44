package config

// ProviderType identifies an embedding/completion provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level ragchat configuration, corresponding to .ragchat.yml.
type Config struct {
	Provider       ProviderType `yaml:"provider" koanf:"provider"`
	Model          string       `yaml:"model" koanf:"model"`
	EmbeddingModel string       `yaml:"embedding_model" koanf:"embedding_model"`

	// EmbeddingDimensions is required for providers whose models do not have
	// a known fixed dimensionality (Ollama). Ignored for OpenAI models.
	EmbeddingDimensions int `yaml:"embedding_dimensions" koanf:"embedding_dimensions"`

	// DataDir holds the persisted vector index and the history database.
	DataDir   string `yaml:"data_dir" koanf:"data_dir"`
	UploadDir string `yaml:"upload_dir" koanf:"upload_dir"`

	ChunkSize    int `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	TopK         int `yaml:"top_k" koanf:"top_k"`

	Port int `yaml:"port" koanf:"port"`
}
