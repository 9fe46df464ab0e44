package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JamesFein/langchain-rag-chat/internal/answer"
	"github.com/JamesFein/langchain-rag-chat/internal/history"
	"github.com/JamesFein/langchain-rag-chat/internal/ingest"
)

type uploadResponse struct {
	Message   string         `json:"message"`
	Filenames []string       `json:"filenames"`
	Report    *ingest.Report `json:"report,omitempty"`
}

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleUpload accepts multipart file blobs, writes them into the upload
// directory under their original (sanitized) filenames and runs one
// ingestion batch over them.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart request"})
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no files provided"})
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not create upload directory"})
		return
	}

	var paths, names []string
	for _, fh := range fileHeaders {
		name := filepath.Base(fh.Filename)
		if name == "" || name == "." || name == ".." {
			log.Printf("server: ignoring upload with unusable filename %q", fh.Filename)
			continue
		}

		src, err := fh.Open()
		if err != nil {
			log.Printf("server: opening upload %q: %v", name, err)
			continue
		}

		dstPath := filepath.Join(s.cfg.UploadDir, name)
		dst, err := os.Create(dstPath)
		if err != nil {
			src.Close()
			log.Printf("server: saving upload %q: %v", name, err)
			continue
		}

		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			os.Remove(dstPath)
			log.Printf("server: writing upload %q: %v", name, err)
			continue
		}

		paths = append(paths, dstPath)
		names = append(names, name)
	}

	if len(paths) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no files were successfully saved"})
		return
	}

	report, err := s.orch.Ingest(r.Context(), paths)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptyBatch) {
			writeJSON(w, http.StatusBadRequest, uploadResponse{
				Message:   "no uploaded documents could be processed",
				Filenames: names,
				Report:    report,
			})
			return
		}
		log.Printf("server: ingestion failed: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "document processing failed; previous index state is unchanged"})
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Message:   "processed " + strconv.Itoa(report.Succeeded()) + " of " + strconv.Itoa(len(report.Files)) + " files",
		Filenames: names,
		Report:    report,
	})
}

// handleChat validates the query and maps engine outcomes to HTTP statuses:
// 503 while no index exists, 404 when no answer could be produced (including
// provider failures, which are never exposed raw), 200 with the answer text
// otherwise.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query cannot be empty"})
		return
	}

	text, err := s.engine.Answer(r.Context(), query)
	if err != nil {
		var compErr *answer.CompletionError
		switch {
		case errors.Is(err, answer.ErrNotReady):
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no documents have been ingested yet"})
		case errors.Is(err, answer.ErrNoAnswer), errors.As(err, &compErr):
			log.Printf("server: query produced no answer: %v", err)
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "could not retrieve an answer"})
		default:
			log.Printf("server: query failed: %v", err)
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "could not retrieve an answer"})
		}
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Answer: text})
}

// handleStatus reports index readiness and size.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ready":  s.store.Ready(),
		"chunks": s.store.Count(),
	})
}

// handleHistory lists recent ingestion batches.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.hist == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	batches, err := s.hist.RecentBatches(r.Context(), limit)
	if err != nil {
		log.Printf("server: listing history: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not list ingestion history"})
		return
	}
	if batches == nil {
		batches = []history.Batch{}
	}
	writeJSON(w, http.StatusOK, batches)
}

// handleIndex serves the minimal upload-and-chat page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "index page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}
