package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Chat with your documents using retrieval-augmented generation",
	Long: `Ragchat ingests PDF, text and Word documents into a local vector
index and answers questions about them using an LLM. Answers are
grounded in the most relevant document passages, retrieved by
semantic similarity. It also exposes the pipeline over HTTP and MCP.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".ragchat.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
