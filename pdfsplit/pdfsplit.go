// Package pdfsplit implements the page-range extraction capability on
// local PDF files: counting pages and materializing contiguous page
// ranges as standalone PDFs for per-chunk service calls.
package pdfsplit

import (
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Splitter operates on PDF files on the local filesystem. The zero value
// is ready to use.
type Splitter struct{}

// PageCount returns the number of pages in the PDF at path.
func (Splitter) PageCount(path string) (int, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	n := reader.NumPage()
	if n <= 0 {
		return 0, fmt.Errorf("PDF %s has no pages", path)
	}
	return n, nil
}

// ExtractRange writes pages [startPage, endPage] (1-indexed, inclusive)
// of src as a standalone PDF at dst.
func (Splitter) ExtractRange(src, dst string, startPage, endPage int) error {
	if startPage < 1 || endPage < startPage {
		return fmt.Errorf("invalid page range %d-%d", startPage, endPage)
	}

	pages := []string{fmt.Sprintf("%d-%d", startPage, endPage)}
	if err := api.TrimFile(src, dst, pages, nil); err != nil {
		return fmt.Errorf("extracting pages %d-%d of %s: %w", startPage, endPage, src, err)
	}
	return nil
}
