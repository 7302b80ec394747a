// Package docweave reconstructs readable Markdown from the structured
// layout output of a document-understanding service, and processes
// oversized PDFs by splitting them into page-range chunks, extracting
// each chunk, and merging the partial results.
package docweave

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmhart/docweave/chunk"
	"github.com/jmhart/docweave/extract"
	"github.com/jmhart/docweave/markdown"
	"github.com/jmhart/docweave/pdfsplit"
	"github.com/jmhart/docweave/store"
)

// Processor is the main entry point: it plans chunking for a PDF,
// extracts directly or per chunk, merges, renders markdown, and records
// the outcome in the document registry.
type Processor struct {
	cfg       Config
	store     *store.Store
	extractor extract.Extractor
	ranges    chunk.RangeExtractor
	planner   *chunk.Planner
	orch      *chunk.Orchestrator
}

// Option overrides a Processor dependency.
type Option func(*Processor)

// WithExtractor replaces the HTTP extraction client.
func WithExtractor(e extract.Extractor) Option {
	return func(p *Processor) { p.extractor = e }
}

// WithRangeExtractor replaces the PDF page-range splitter.
func WithRangeExtractor(r chunk.RangeExtractor) Option {
	return func(p *Processor) { p.ranges = r }
}

// New creates a Processor with the given configuration.
func New(cfg Config, opts ...Option) (*Processor, error) {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 15
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 4
	}
	if cfg.ChunkTimeout == 0 {
		cfg.ChunkTimeout = 2 * time.Minute
	}

	p := &Processor{cfg: cfg, ranges: &pdfsplit.Splitter{}}
	for _, o := range opts {
		o(p)
	}

	if p.extractor == nil {
		if cfg.Service.BaseURL == "" {
			return nil, fmt.Errorf("%w: service base URL is required", ErrInvalidConfig)
		}
		p.extractor = extract.NewClient(extract.Config{
			BaseURL:     cfg.Service.BaseURL,
			ProcessorID: cfg.Service.ProcessorID,
			APIKey:      cfg.Service.APIKey,
			Timeout:     cfg.Service.Timeout,
			MaxPages:    cfg.Service.MaxPages,
		})
	}

	s, err := store.New(cfg.resolveDBPath())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	p.store = s

	p.planner = chunk.NewPlanner(p.ranges, cfg.ChunkSize)
	p.orch = chunk.NewOrchestrator(p.extractor, cfg.Concurrency, cfg.ChunkTimeout)
	return p, nil
}

// ProcessResult is the outcome of processing one PDF.
type ProcessResult struct {
	DocumentID int64           `json:"document_id"`
	Chunked    bool            `json:"chunked"`
	Result     *extract.Result `json:"result"`
	Markdown   string          `json:"markdown"`

	// Cached reports that the document was unchanged since its last run
	// and the stored result was returned without contacting the service.
	Cached bool `json:"cached,omitempty"`
}

// ProcessOption configures one Process call.
type ProcessOption func(*processOptions)

type processOptions struct {
	forceReprocess bool
	forceChunked   bool
}

// WithForceReprocess skips hash-based change detection and reprocesses
// even if the stored result is current.
func WithForceReprocess() ProcessOption {
	return func(o *processOptions) { o.forceReprocess = true }
}

// WithForceChunked processes through the chunk pipeline even when the
// document fits in a single request.
func WithForceChunked() ProcessOption {
	return func(o *processOptions) { o.forceChunked = true }
}

// Process runs a PDF through the full pipeline. Unchanged documents with
// a stored result are returned from the registry without re-extraction.
func (p *Processor) Process(ctx context.Context, path string, opts ...ProcessOption) (*ProcessResult, error) {
	options := &processOptions{}
	for _, o := range opts {
		o(options)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, absPath)
	}

	hash, err := store.HashFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("hashing file: %w", err)
	}

	if !options.forceReprocess {
		if cached, err := p.cachedResult(ctx, absPath, hash); err == nil {
			slog.Info("returning stored result", "file", filepath.Base(absPath), "doc_id", cached.DocumentID)
			return cached, nil
		}
	}

	docID, err := p.store.UpsertDocument(ctx, store.Document{
		Path:        absPath,
		Filename:    filepath.Base(absPath),
		ContentHash: hash,
		Status:      store.StatusProcessing,
	})
	if err != nil {
		return nil, fmt.Errorf("upserting document: %w", err)
	}

	res, err := p.run(ctx, absPath, docID, options.forceChunked)
	if err != nil {
		if ferr := p.store.MarkFailed(ctx, docID, err); ferr != nil {
			slog.Warn("recording failure", "doc_id", docID, "error", ferr)
		}
		return nil, err
	}
	return res, nil
}

// run executes the extraction pipeline for a registered document.
func (p *Processor) run(ctx context.Context, absPath string, docID int64, forceChunked bool) (*ProcessResult, error) {
	chunks, err := p.planner.Plan(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	start := time.Now()
	res := &ProcessResult{DocumentID: docID}

	if len(chunks) == 1 && !chunks[0].Split && !forceChunked {
		data, err := p.extractor.Extract(ctx, absPath)
		if err != nil {
			return nil, err
		}
		res.Result = data
		res.Markdown = markdown.Convert(data.Doc, p.markdownOptions())
	} else {
		defer chunk.Cleanup(chunks)

		if forceChunked && len(chunks) == 1 && !chunks[0].Split {
			slog.Info("forced chunked processing of single-chunk document", "file", filepath.Base(absPath))
		}
		results := p.orch.Process(ctx, chunks)
		merged, err := chunk.Merge(results)
		if err != nil {
			return nil, err
		}
		res.Chunked = true
		res.Result = mergedResult(merged)
		res.Markdown = markdown.ConvertChunks(merged.Docs, p.markdownOptions())
	}

	if err := p.saveResult(ctx, docID, res); err != nil {
		return nil, err
	}

	slog.Info("document processed",
		"file", filepath.Base(absPath), "doc_id", docID,
		"chunked", res.Chunked,
		"pages", res.Result.Metadata.TotalPages,
		"tables", res.Result.Metadata.TotalTables,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return res, nil
}

// cachedResult loads the stored outcome of an unchanged document.
func (p *Processor) cachedResult(ctx context.Context, absPath, hash string) (*ProcessResult, error) {
	doc, err := p.store.FindProcessed(ctx, absPath, hash)
	if err != nil {
		return nil, err
	}

	var data extract.Result
	if err := json.Unmarshal([]byte(doc.ResultJSON), &data); err != nil {
		return nil, fmt.Errorf("decoding stored result: %w", err)
	}
	return &ProcessResult{
		DocumentID: doc.ID,
		Chunked:    data.Metadata.ChunksProcessed > 0,
		Result:     &data,
		Markdown:   doc.Markdown,
		Cached:     true,
	}, nil
}

func (p *Processor) saveResult(ctx context.Context, docID int64, res *ProcessResult) error {
	payload, err := json.Marshal(res.Result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return p.store.SaveResult(ctx, docID, store.ResultUpdate{
		PageCount:        res.Result.Metadata.TotalPages,
		TableCount:       res.Result.Metadata.TotalTables,
		ChunksProcessed:  res.Result.Metadata.ChunksProcessed,
		ChunksFailed:     res.Result.Metadata.ChunksFailed,
		ExtractionMethod: res.Result.Metadata.ExtractionMethod,
		Confidence:       res.Result.Metadata.Confidence,
		Markdown:         res.Markdown,
		ResultJSON:       string(payload),
	})
}

// ListDocuments returns the registry entries, newest first.
func (p *Processor) ListDocuments(ctx context.Context) ([]store.Document, error) {
	return p.store.ListDocuments(ctx)
}

// Delete removes a document and its stored result.
func (p *Processor) Delete(ctx context.Context, documentID int64) error {
	return p.store.DeleteDocument(ctx, documentID)
}

// Store returns the underlying registry for diagnostic access.
func (p *Processor) Store() *store.Store {
	return p.store
}

// Close shuts down the processor.
func (p *Processor) Close() error {
	return p.store.Close()
}

func (p *Processor) markdownOptions() markdown.Options {
	return p.cfg.MarkdownOptions()
}

// mergedResult reshapes a chunk merge into the single-document result
// form. Structured data is not carried across chunk boundaries.
func mergedResult(m *chunk.Merged) *extract.Result {
	return &extract.Result{
		Pages:    m.Pages,
		Tables:   m.Tables,
		RawText:  m.FullText,
		Metadata: m.Metadata,
	}
}
