package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JamesFein/langchain-rag-chat/internal/vectordb"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Semantically search the ingested documents",
	Long:  `Searches the vector index using a natural language query and returns the most similar passages with their source file and page.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 5, "maximum number of passages")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	queryText := args[0]

	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

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

	matches, err := store.Search(ctx, queryText, limit)
	if err != nil {
		if errors.Is(err, vectordb.ErrNoIndex) {
			fmt.Println("No index found. Run `ragchat ingest` first.")
			return nil
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if len(matches) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if jsonOutput {
		return printMatchesJSON(matches)
	}

	printMatchesTable(matches)
	return nil
}

type matchJSON struct {
	Rank   int     `json:"rank"`
	Score  float64 `json:"score"`
	Source string  `json:"source"`
	Page   int     `json:"page,omitempty"`
	Text   string  `json:"text"`
}

func printMatchesJSON(matches []vectordb.Match) error {
	var out []matchJSON
	for i, m := range matches {
		out = append(out, matchJSON{
			Rank:   i + 1,
			Score:  float64(m.Score),
			Source: m.Chunk.Metadata.Source,
			Page:   m.Chunk.Metadata.Page,
			Text:   truncate(m.Chunk.Text, 200),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printMatchesTable(matches []vectordb.Match) {
	fmt.Printf("Found %d results:\n\n", len(matches))
	for i, m := range matches {
		location := m.Chunk.Metadata.Source
		if m.Chunk.Metadata.Page > 0 {
			location = fmt.Sprintf("%s (page %d)", location, m.Chunk.Metadata.Page)
		}

		fmt.Printf("  %d. [%.1f%%] %s\n", i+1, m.Score*100, location)
		fmt.Printf("     %s\n\n", truncate(m.Chunk.Text, 120))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
