package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JamesFein/langchain-rag-chat/internal/answer"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the ingested documents",
	Long: `Retrieves the most relevant document passages for the question and
generates an answer grounded in them.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	query := strings.TrimSpace(args[0])
	if query == "" {
		return fmt.Errorf("question cannot be empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	store, err := openStore(cfg, embedder)
	if err != nil {
		return err
	}

	provider, err := createProviderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating LLM provider: %w", err)
	}

	engine := answer.New(store, provider, cfg.Model, cfg.TopK)

	text, err := engine.Answer(ctx, query)
	if err != nil {
		switch {
		case errors.Is(err, answer.ErrNotReady):
			fmt.Println("No documents have been ingested yet. Run `ragchat ingest` first.")
			return nil
		case errors.Is(err, answer.ErrNoAnswer):
			fmt.Println("Could not retrieve an answer for that question.")
			return nil
		default:
			return fmt.Errorf("answering question: %w", err)
		}
	}

	fmt.Println(text)
	return nil
}
