package chunk

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jmhart/docweave/extract"
	"github.com/jmhart/docweave/layout"
)

// ErrMerge is returned when per-chunk data is malformed and cannot be
// renumbered into a coherent document.
var ErrMerge = errors.New("docweave: merging chunk results failed")

// Merged is the externally visible combined document.
type Merged struct {
	Pages    []extract.PageResult  `json:"pages"`
	Tables   []extract.TableResult `json:"tables"`
	FullText string                `json:"full_text"`
	Metadata extract.Metadata      `json:"metadata"`

	// Docs holds the successful chunks' layout documents in chunk order,
	// retained for markdown rendering. Never serialized.
	Docs []*layout.Document `json:"-"`
}

// Merge combines per-chunk results in chunk-id order, renumbering page
// references to be globally sequential. Failed chunks are skipped and
// logged; a successful result without data is malformed and aborts the
// merge.
func Merge(results []Result) (*Merged, error) {
	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ChunkID < sorted[j].ChunkID })

	merged := &Merged{}
	var texts []string
	var confidence float64
	totalPages, succeeded := 0, 0

	for _, r := range sorted {
		if r.Err != nil {
			slog.Warn("skipping failed chunk in merge",
				"chunk_id", r.ChunkID,
				"start_page", r.Info.StartPage, "end_page", r.Info.EndPage,
				"error", r.Err)
			continue
		}
		if r.Data == nil {
			return nil, fmt.Errorf("%w: chunk %d succeeded without data", ErrMerge, r.ChunkID)
		}

		for _, page := range r.Data.Pages {
			page.PageNumber += totalPages
			merged.Pages = append(merged.Pages, page)
		}
		for _, table := range r.Data.Tables {
			table.PageNumber += totalPages
			table.TableID = fmt.Sprintf("page_%d_table_%d", table.PageNumber, table.TableNumber)
			merged.Tables = append(merged.Tables, table)
		}
		if r.Data.RawText != "" {
			texts = append(texts, r.Data.RawText)
		}
		if r.Data.Doc != nil {
			merged.Docs = append(merged.Docs, r.Data.Doc)
		}

		confidence += r.Data.Metadata.Confidence
		totalPages += len(r.Data.Pages)
		succeeded++
	}

	merged.FullText = strings.Join(texts, "\n\n")
	merged.Metadata = extract.Metadata{
		TotalPages:       totalPages,
		TotalTables:      len(merged.Tables),
		ExtractionMethod: "chunked_document_ai",
		ChunksProcessed:  len(results),
		ChunksFailed:     len(results) - succeeded,
	}
	if succeeded > 0 {
		merged.Metadata.Confidence = confidence / float64(succeeded)
	}

	slog.Info("chunk results merged",
		"chunks", len(results), "failed", merged.Metadata.ChunksFailed,
		"pages", totalPages, "tables", len(merged.Tables))
	return merged, nil
}
