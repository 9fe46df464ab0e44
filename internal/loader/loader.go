// Package loader extracts plain text from uploaded documents, dispatching on
// file extension. Each supported format has an extractor that yields text
// segments with source metadata; the chunker operates on those segments.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when a file's extension is not in the
// supported set. Callers treat it as a per-file skip, not a batch failure.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Segment is a piece of extracted text with its provenance. PDF files yield
// one segment per page; txt and docx files yield a single segment.
type Segment struct {
	Text   string
	Source string
	Page   int // 1-based page number for PDFs, 0 otherwise
}

// extractor turns a file on disk into text segments.
type extractor func(path string) ([]Segment, error)

// extractors is the closed dispatch table. Adding a format means adding an
// entry here plus its extractor.
var extractors = map[string]extractor{
	".txt":  extractText,
	".pdf":  extractPDF,
	".docx": extractDOCX,
}

// Supported reports whether the file at path has a loadable extension.
func Supported(path string) bool {
	_, ok := extractors[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load reads the file at path and extracts its text segments. A missing file
// surfaces as an error wrapping fs.ErrNotExist; an unknown extension wraps
// ErrUnsupportedFormat. Segments with no extractable text are dropped, so an
// empty (but valid) document yields an empty slice and a nil error.
func Load(path string) ([]Segment, error) {
	ext := strings.ToLower(filepath.Ext(path))
	extract, ok := extractors[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	segments, err := extract(path)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}

	kept := segments[:0]
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) != "" {
			kept = append(kept, seg)
		}
	}
	return kept, nil
}

// extractText reads a plain-text file as a single segment.
func extractText(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return []Segment{{Text: string(data), Source: path}}, nil
}
