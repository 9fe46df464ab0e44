// Package server exposes the ingestion and query pipelines over HTTP. It is
// a thin I/O layer: request shaping and status mapping live here, all
// document and index semantics live in the ingest, answer and vectordb
// packages.
package server

import (
	"context"
	"embed"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/JamesFein/langchain-rag-chat/internal/answer"
	"github.com/JamesFein/langchain-rag-chat/internal/history"
	"github.com/JamesFein/langchain-rag-chat/internal/ingest"
	"github.com/JamesFein/langchain-rag-chat/internal/vectordb"
)

//go:embed static
var staticFS embed.FS

// Config holds server configuration.
type Config struct {
	Port      int
	UploadDir string // directory uploaded files are written to
	AllowAll  bool   // allow all CORS origins (dev mode)
}

// Server wires the document chat API.
type Server struct {
	cfg        Config
	orch       *ingest.Orchestrator
	engine     *answer.Engine
	store      *vectordb.Store
	hist       *history.DB // optional
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server with all dependencies. hist may be nil.
func New(cfg Config, orch *ingest.Orchestrator, engine *answer.Engine, store *vectordb.Store, hist *history.DB) *Server {
	s := &Server{
		cfg:    cfg,
		orch:   orch,
		engine: engine,
		store:  store,
		hist:   hist,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/api/upload", s.handleUpload)
	r.Post("/api/chat", s.handleChat)
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/history", s.handleHistory)
	r.Get("/api/ws", s.handleWebSocket)

	r.Get("/", s.handleIndex)
	r.Handle("/static/*", http.FileServer(http.FS(staticFS)))

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port and blocks until the server
// stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("server: listening on %s (indexed chunks: %d)", addr, s.store.Count())
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
