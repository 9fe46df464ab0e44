package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JamesFein/langchain-rag-chat/internal/answer"
	"github.com/JamesFein/langchain-rag-chat/internal/chunker"
	"github.com/JamesFein/langchain-rag-chat/internal/ingest"
	"github.com/JamesFein/langchain-rag-chat/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP document chat server",
	Long: `Starts the HTTP server exposing document upload and chat endpoints,
plus a minimal web page for interactive use.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "override the configured port")
	serveCmd.Flags().Bool("cors-allow-all", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Port = port
	}
	allowAll, _ := cmd.Flags().GetBool("cors-allow-all")

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

	hist, err := openHistory(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ingestion history disabled: %v\n", err)
		hist = nil
	} else {
		defer hist.Close()
	}

	orch := ingest.New(chunker.New(cfg.ChunkSize, cfg.ChunkOverlap), store, hist)
	engine := answer.New(store, provider, cfg.Model, cfg.TopK)

	srv := server.New(server.Config{
		Port:      cfg.Port,
		UploadDir: cfg.UploadDir,
		AllowAll:  allowAll,
	}, orch, engine, store, hist)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case s := <-sig:
		fmt.Fprintf(os.Stderr, "\nReceived %s, shutting down...\n", s)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
