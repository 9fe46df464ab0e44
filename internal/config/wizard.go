package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// providerDefaults maps a provider to its recommended chat and embedding models.
var providerDefaults = map[ProviderType]struct {
	Model          string
	EmbeddingModel string
	Dimensions     int
}{
	ProviderOpenAI: {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
	ProviderOllama: {Model: "llama3", EmbeddingModel: "nomic-embed-text", Dimensions: 768},
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to the given path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to ragchat! Let's configure your document store.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	defaults := providerDefaults[cfg.Provider]
	cfg.Model = defaults.Model
	cfg.EmbeddingModel = defaults.EmbeddingModel
	cfg.EmbeddingDimensions = defaults.Dimensions

	// 2. Chat model.
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: defaults.Model,
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model prompt: %w", err)
	}

	// 3. Upload directory.
	uploadPrompt := promptui.Prompt{
		Label:   "Upload directory",
		Default: cfg.UploadDir,
	}
	if cfg.UploadDir, err = uploadPrompt.Run(); err != nil {
		return nil, fmt.Errorf("upload dir prompt: %w", err)
	}

	// 4. Server port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("invalid port")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port prompt: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	if cfg.Provider == ProviderOpenAI && os.Getenv("OPENAI_API_KEY") == "" {
		fmt.Println()
		fmt.Println("Note: OPENAI_API_KEY is not set. Export it before running `ragchat serve`.")
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
