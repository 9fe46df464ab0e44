package loader

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// extractPDF extracts plain text from a PDF, one segment per page.
// Pages without extractable text (scans, pure images) are skipped.
func extractPDF(path string) ([]Segment, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	var segments []Segment
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single malformed page should not lose the rest of the document.
			continue
		}
		segments = append(segments, Segment{Text: text, Source: path, Page: i})
	}

	return segments, nil
}
