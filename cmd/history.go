package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent ingestion batches",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "maximum number of batches")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	hist, err := openHistory(cfg)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer hist.Close()

	batches, err := hist.RecentBatches(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("listing batches: %w", err)
	}

	if len(batches) == 0 {
		fmt.Println("No ingestion batches recorded yet.")
		return nil
	}

	for _, b := range batches {
		status := "ok"
		if b.Error != "" {
			status = b.Error
		}
		fmt.Printf("%s  %s  files=%d/%d  chunks=%d  %s\n",
			b.StartedAt.Local().Format("2006-01-02 15:04:05"),
			b.ID, b.FilesOK, b.FilesTotal, b.Chunks, status)
	}
	return nil
}
