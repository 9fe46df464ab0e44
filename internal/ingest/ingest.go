// Package ingest coordinates loading, chunking and indexing for a batch of
// uploaded files. Per-file failures are isolated into the batch report; the
// index is touched with exactly one create-or-add call per batch so that
// embedding round trips are amortized across all files.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/JamesFein/langchain-rag-chat/internal/chunker"
	"github.com/JamesFein/langchain-rag-chat/internal/history"
	"github.com/JamesFein/langchain-rag-chat/internal/loader"
	"github.com/JamesFein/langchain-rag-chat/internal/vectordb"
)

// ErrEmptyBatch is returned when a batch produces zero chunks. No index
// mutation happens in that case.
var ErrEmptyBatch = errors.New("no documents in the batch could be processed")

// FileResult is the outcome for a single file in a batch.
type FileResult struct {
	Path       string `json:"path"`
	Chunks     int    `json:"chunks"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// Skipped reports whether the file was skipped rather than indexed.
func (f FileResult) Skipped() bool { return f.SkipReason != "" }

// Report aggregates the outcome of one ingestion batch.
type Report struct {
	BatchID      string       `json:"batch_id"`
	StartedAt    time.Time    `json:"started_at"`
	Files        []FileResult `json:"files"`
	Chunks       int          `json:"chunks"`
	CreatedIndex bool         `json:"created_index"`
}

// Succeeded returns the number of files that contributed chunks.
func (r *Report) Succeeded() int {
	n := 0
	for _, f := range r.Files {
		if !f.Skipped() {
			n++
		}
	}
	return n
}

// SkippedFiles returns the paths that were skipped.
func (r *Report) SkippedFiles() []string {
	var skipped []string
	for _, f := range r.Files {
		if f.Skipped() {
			skipped = append(skipped, f.Path)
		}
	}
	return skipped
}

// ProgressFunc is called once per processed file during a batch.
type ProgressFunc func(done, total int, path string)

// Orchestrator runs ingestion batches against the shared vector store.
type Orchestrator struct {
	chunker *chunker.Chunker
	store   *vectordb.Store
	history *history.DB // optional; nil disables batch recording
}

// New creates an Orchestrator. history may be nil.
func New(ch *chunker.Chunker, store *vectordb.Store, hist *history.DB) *Orchestrator {
	return &Orchestrator{chunker: ch, store: store, history: hist}
}

// Ingest processes the given file paths as one batch: each file is loaded
// and chunked, loader failures become per-file skips, and all chunks are
// committed to the index in a single operation. A batch with zero chunks
// performs no index mutation and returns ErrEmptyBatch together with the
// report naming each skip.
func (o *Orchestrator) Ingest(ctx context.Context, paths []string) (*Report, error) {
	return o.IngestWithProgress(ctx, paths, nil)
}

// IngestWithProgress is Ingest with a per-file progress callback.
func (o *Orchestrator) IngestWithProgress(ctx context.Context, paths []string, progress ProgressFunc) (*Report, error) {
	report := &Report{
		BatchID:   uuid.NewString(),
		StartedAt: time.Now(),
	}

	var batchChunks []vectordb.Chunk
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := FileResult{Path: path}

		segments, err := loader.Load(path)
		switch {
		case err != nil:
			result.SkipReason = skipReason(err)
			log.Printf("ingest: skipping %s: %v", path, err)
		case len(segments) == 0:
			result.SkipReason = "no extractable text"
			log.Printf("ingest: skipping %s: no extractable text", path)
		default:
			chunks := o.chunker.Split(path, segments)
			result.Chunks = len(chunks)
			batchChunks = append(batchChunks, chunks...)
		}

		report.Files = append(report.Files, result)
		if progress != nil {
			progress(i+1, len(paths), path)
		}
	}

	report.Chunks = len(batchChunks)
	if len(batchChunks) == 0 {
		o.record(ctx, report, ErrEmptyBatch)
		return report, ErrEmptyBatch
	}

	created, err := o.store.Update(ctx, batchChunks)
	report.CreatedIndex = created
	if err != nil {
		o.record(ctx, report, err)
		return report, fmt.Errorf("updating index: %w", err)
	}

	o.record(ctx, report, nil)
	return report, nil
}

// skipReason maps loader errors to short, report-friendly reasons.
func skipReason(err error) string {
	switch {
	case errors.Is(err, loader.ErrUnsupportedFormat):
		return "unsupported document format"
	case errors.Is(err, fs.ErrNotExist):
		return "file not found"
	default:
		return err.Error()
	}
}

// record writes the batch outcome to the history store, if one is configured.
// History failures are logged, never propagated: a batch that updated the
// index successfully must report success.
func (o *Orchestrator) record(ctx context.Context, r *Report, batchErr error) {
	if o.history == nil {
		return
	}

	b := history.Batch{
		ID:           r.BatchID,
		StartedAt:    r.StartedAt,
		FilesTotal:   len(r.Files),
		FilesOK:      r.Succeeded(),
		FilesSkipped: len(r.Files) - r.Succeeded(),
		Chunks:       r.Chunks,
		CreatedIndex: r.CreatedIndex,
	}
	if batchErr != nil {
		b.Error = batchErr.Error()
	}

	files := make([]history.FileOutcome, len(r.Files))
	for i, f := range r.Files {
		files[i] = history.FileOutcome{Path: f.Path, Chunks: f.Chunks, SkipReason: f.SkipReason}
	}

	if err := o.history.RecordBatch(ctx, b, files); err != nil {
		log.Printf("ingest: recording batch %s: %v", r.BatchID, err)
	}
}
