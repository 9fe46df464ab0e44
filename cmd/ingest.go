package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/JamesFein/langchain-rag-chat/internal/chunker"
	"github.com/JamesFein/langchain-rag-chat/internal/ingest"
	"github.com/JamesFein/langchain-rag-chat/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [patterns...]",
	Short: "Ingest documents into the vector index",
	Long: `Loads the given files, splits them into overlapping chunks, embeds
the chunks and commits them to the vector index in one batch.

Arguments may be plain paths or doublestar glob patterns, e.g.:

  ragchat ingest report.pdf
  ragchat ingest "docs/**/*.pdf" "notes/*.txt"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	paths, err := expandPatterns(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files matched the given patterns")
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

	hist, err := openHistory(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ingestion history disabled: %v\n", err)
		hist = nil
	} else {
		defer hist.Close()
	}

	orch := ingest.New(chunker.New(cfg.ChunkSize, cfg.ChunkOverlap), store, hist)

	reporter := progress.NewReporter()
	reporter.Start(len(paths))
	report, err := orch.IngestWithProgress(ctx, paths, func(done, total int, path string) {
		reporter.Update(done, filepath.Base(path))
	})
	reporter.Finish()

	if report != nil {
		printIngestReport(report)
	}
	if err != nil {
		if errors.Is(err, ingest.ErrEmptyBatch) {
			return fmt.Errorf("nothing was indexed")
		}
		return err
	}
	return nil
}

// expandPatterns resolves glob patterns into a sorted, deduplicated path list.
// A plain path with no glob metacharacters passes through doublestar unchanged.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			// A literal path that doesn't exist still goes into the batch
			// so the report can name it as skipped.
			matches = []string{pattern}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func printIngestReport(r *ingest.Report) {
	for _, f := range r.Files {
		if f.Skipped() {
			fmt.Printf("  skipped %s: %s\n", f.Path, f.SkipReason)
		} else if verbose {
			fmt.Printf("  indexed %s (%d chunks)\n", f.Path, f.Chunks)
		}
	}

	if r.Chunks == 0 {
		fmt.Printf("No chunks produced from %d file(s)\n", len(r.Files))
		return
	}

	action := "updated"
	if r.CreatedIndex {
		action = "created"
	}
	fmt.Printf("Indexed %d chunks from %d of %d files (index %s)\n",
		r.Chunks, r.Succeeded(), len(r.Files), action)
}
