package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JamesFein/langchain-rag-chat/internal/answer"
	mcpserver "github.com/JamesFein/langchain-rag-chat/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing document search and question answering tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		embedder, err := createEmbedderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}

		// openStore warns on stderr for a corrupt snapshot; stdout stays
		// reserved for MCP protocol messages.
		store, err := openStore(cfg, embedder)
		if err != nil {
			return err
		}

		provider, err := createProviderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}

		engine := answer.New(store, provider, cfg.Model, cfg.TopK)

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "ragchat MCP server started on stdio (chunks=%d)\n", store.Count())

		srv := mcpserver.NewServer(store, engine)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
