package cmd

import (
	"github.com/spf13/cobra"

	"github.com/JamesFein/langchain-rag-chat/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ragchat configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure ragchat and generates a .ragchat.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
