package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jmhart/docweave"
	"github.com/jmhart/docweave/layout"
	"github.com/jmhart/docweave/markdown"
)

type handler struct {
	processor *docweave.Processor
	mdOpts    markdown.Options
}

func newHandler(p *docweave.Processor, mdOpts markdown.Options) *handler {
	return &handler{processor: p, mdOpts: mdOpts}
}

// extractTimeout bounds a full multi-chunk run including the per-chunk
// service calls.
const extractTimeout = 30 * time.Minute

// POST /extract
// Accepts a multipart file upload or JSON with a file path, runs the
// full pipeline, and returns the structured result with markdown.
func (h *handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	h.runExtract(w, r, nil, func(res *docweave.ProcessResult) any { return res })
}

// POST /extract-text
// Text-only projection: pages without element geometry plus the full
// concatenated text.
func (h *handler) handleExtractText(w http.ResponseWriter, r *http.Request) {
	h.runExtract(w, r, nil, func(res *docweave.ProcessResult) any {
		type page struct {
			PageNumber int    `json:"page_number"`
			Text       string `json:"text"`
			WordCount  int    `json:"word_count"`
		}
		pages := make([]page, len(res.Result.Pages))
		for i, p := range res.Result.Pages {
			pages[i] = page{PageNumber: p.PageNumber, Text: p.Text, WordCount: p.WordCount}
		}
		return map[string]any{
			"document_id": res.DocumentID,
			"pages":       pages,
			"full_text":   res.Result.RawText,
		}
	})
}

// POST /extract-tables
// Tables-only projection.
func (h *handler) handleExtractTables(w http.ResponseWriter, r *http.Request) {
	h.runExtract(w, r, nil, func(res *docweave.ProcessResult) any {
		return map[string]any{
			"document_id":  res.DocumentID,
			"tables":       res.Result.Tables,
			"total_tables": res.Result.Metadata.TotalTables,
		}
	})
}

// POST /extract-chunked
// Forces the chunk pipeline even for documents that fit in one request.
func (h *handler) handleExtractChunked(w http.ResponseWriter, r *http.Request) {
	h.runExtract(w, r, []docweave.ProcessOption{docweave.WithForceChunked()},
		func(res *docweave.ProcessResult) any { return res })
}

// runExtract resolves the request input, processes it, and writes the
// projected response.
func (h *handler) runExtract(w http.ResponseWriter, r *http.Request, opts []docweave.ProcessOption, project func(*docweave.ProcessResult) any) {
	ctx, cancel := context.WithTimeout(r.Context(), extractTimeout)
	defer cancel()

	path, force, cleanup, err := resolveInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	if force {
		opts = append(opts, docweave.WithForceReprocess())
	}

	res, err := h.processor.Process(ctx, path, opts...)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, docweave.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, docweave.ErrExternalService):
			status = http.StatusBadGateway
		}
		writeError(w, status, "extraction failed")
		slog.Error("extract error", "path", path, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, project(res))
}

// POST /convert
// Converts an already-extracted layout document (JSON body) to markdown
// without contacting the service. Rendering knobs come from query params.
func (h *handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 100<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body")
		return
	}

	doc, err := layout.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid layout document")
		return
	}

	opts := h.mdOpts
	q := r.URL.Query()
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	if v := q.Get("label_tables"); v != "" {
		opts.LabelTables = v == "true"
	}
	if v := q.Get("debug_spans"); v != "" {
		opts.DebugSpans = v == "true"
	}
	if v := q.Get("heading_heuristics"); v != "" {
		opts.HeadingHeuristics = v == "true"
	}
	if v := q.Get("page_separator"); v != "" {
		opts.PageSeparator = v == "true"
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, markdown.Convert(doc, opts))
}

// DELETE /documents/{id}
func (h *handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	if err := h.processor.Delete(r.Context(), id); err != nil {
		if errors.Is(err, docweave.ErrDocumentNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "delete failed")
		slog.Error("delete error", "document_id", id, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GET /documents
func (h *handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.processor.ListDocuments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		slog.Error("list documents error", "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolveInput accepts either a multipart "file" upload (saved to a temp
// file) or a JSON body with a local "path". The cleanup func removes any
// temp file and is safe to call unconditionally.
func resolveInput(r *http.Request) (path string, force bool, cleanup func(), err error) {
	cleanup = func() {}

	if err := r.ParseMultipartForm(100 << 20); err == nil { // 100MB max
		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()

			// Sanitise filename to prevent path traversal.
			safeName := filepath.Base(header.Filename)
			tmpPath := filepath.Join(os.TempDir(), safeName)

			dst, err := os.Create(tmpPath)
			if err != nil {
				return "", false, cleanup, fmt.Errorf("saving upload: %w", err)
			}
			if _, err := io.Copy(dst, file); err != nil {
				dst.Close()
				os.Remove(tmpPath)
				return "", false, cleanup, fmt.Errorf("saving upload: %w", err)
			}
			dst.Close()

			force := r.FormValue("force") == "true"
			return tmpPath, force, func() { os.Remove(tmpPath) }, nil
		}
	}

	var req struct {
		Path  string `json:"path"`
		Force bool   `json:"force,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", false, cleanup, errors.New("invalid request: expected multipart file or JSON with 'path'")
	}
	if req.Path == "" {
		return "", false, cleanup, errors.New("path is required")
	}

	absPath, err := filepath.Abs(req.Path)
	if err != nil {
		return "", false, cleanup, errors.New("invalid path")
	}
	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		return "", false, cleanup, errors.New("path must be an existing file")
	}
	return absPath, req.Force, cleanup, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
