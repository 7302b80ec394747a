// Package chunk splits oversized PDFs into page-range chunks, runs the
// extraction capability once per chunk with bounded concurrency, and
// merges the per-chunk results back into one document. A single chunk's
// failure never aborts the run; merging skips it.
package chunk

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// defaultChunkSize matches the external service's per-request page limit.
const defaultChunkSize = 15

// Chunk is one contiguous page range of a source PDF, materialized as an
// independent file when the source was split.
type Chunk struct {
	ID        int    `json:"chunk_id"`
	StartPage int    `json:"start_page"` // 1-indexed, inclusive
	EndPage   int    `json:"end_page"`   // 1-indexed, inclusive
	PageCount int    `json:"page_count"`
	Path      string `json:"file_path"`
	Split     bool   `json:"is_chunked"`
}

// RangeExtractor is the page-range extraction capability: counting pages
// and materializing a 1-indexed inclusive page range as a new PDF file.
type RangeExtractor interface {
	PageCount(path string) (int, error)
	ExtractRange(src, dst string, startPage, endPage int) error
}

// Planner decides whether a PDF needs splitting and produces the chunks.
type Planner struct {
	ranges    RangeExtractor
	chunkSize int
}

// NewPlanner creates a planner. chunkSize <= 0 uses the default.
func NewPlanner(ranges RangeExtractor, chunkSize int) *Planner {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Planner{ranges: ranges, chunkSize: chunkSize}
}

// Plan partitions the PDF into chunks of at most chunkSize pages. A
// document within the limit yields exactly one unsplit chunk pointing at
// the original file; otherwise each range is written next to the source
// under a run-unique filename. On a mid-plan failure any files already
// written are removed before returning.
func (p *Planner) Plan(pdfPath string) ([]Chunk, error) {
	total, err := p.ranges.PageCount(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("counting pages in %s: %w", pdfPath, err)
	}
	if total <= 0 {
		return nil, fmt.Errorf("%s has no pages", pdfPath)
	}

	if total <= p.chunkSize {
		slog.Debug("document within chunk size, no splitting needed",
			"path", pdfPath, "pages", total)
		return []Chunk{{
			StartPage: 1,
			EndPage:   total,
			PageCount: total,
			Path:      pdfPath,
		}}, nil
	}

	runID, err := runToken()
	if err != nil {
		return nil, err
	}

	var chunks []Chunk
	for start := 1; start <= total; start += p.chunkSize {
		end := start + p.chunkSize - 1
		if end > total {
			end = total
		}
		id := len(chunks)

		name := fmt.Sprintf("chunk_%s_%d_%s", runID, id, filepath.Base(pdfPath))
		dst := filepath.Join(filepath.Dir(pdfPath), name)
		if err := p.ranges.ExtractRange(pdfPath, dst, start, end); err != nil {
			Cleanup(chunks)
			return nil, fmt.Errorf("extracting pages %d-%d of %s: %w", start, end, pdfPath, err)
		}

		chunks = append(chunks, Chunk{
			ID:        id,
			StartPage: start,
			EndPage:   end,
			PageCount: end - start + 1,
			Path:      dst,
			Split:     true,
		})
	}

	slog.Info("document split into chunks",
		"path", pdfPath, "pages", total, "chunks", len(chunks), "chunk_size", p.chunkSize)
	return chunks, nil
}

// Cleanup removes the temporary files of split chunks. Failures are
// logged and never returned; an unsplit chunk's file is the caller's
// original and is left alone.
func Cleanup(chunks []Chunk) {
	for _, c := range chunks {
		if !c.Split {
			continue
		}
		if err := os.Remove(c.Path); err != nil && !os.IsNotExist(err) {
			slog.Warn("removing chunk file failed", "chunk_id", c.ID, "path", c.Path, "error", err)
		}
	}
}

// runToken returns a short random identifier so concurrent runs over the
// same source never collide on chunk filenames.
func runToken() (string, error) {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generating run token: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
