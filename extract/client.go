// Package extract talks to the external document-understanding service:
// it uploads a PDF, decodes the returned structured layout document, and
// projects it into a flattened extraction result.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jmhart/docweave/layout"
)

var (
	// ErrExternalService is returned when the service fails or returns an
	// unusable response.
	ErrExternalService = errors.New("docweave: external service failure")

	// ErrPageLimit is returned when the service rejects a document for
	// exceeding its per-request page limit.
	ErrPageLimit = errors.New("docweave: page limit exceeded")
)

// pageLimitMarker is the error code the service embeds in the response
// body of a page-limit rejection.
const pageLimitMarker = "PAGE_LIMIT_EXCEEDED"

// Extractor produces a structured extraction result for a PDF on disk.
type Extractor interface {
	Extract(ctx context.Context, pdfPath string) (*Result, error)
}

// Config holds the service connection settings.
type Config struct {
	BaseURL     string        `json:"base_url"`
	ProcessorID string        `json:"processor_id"`
	APIKey      string        `json:"api_key"`
	Timeout     time.Duration `json:"timeout"`

	// MaxPages is the service's per-request page limit, used for the
	// first-pages fallback after a page-limit rejection.
	MaxPages int `json:"max_pages"`
}

// Client uploads PDFs to the service and decodes layout documents.
type Client struct {
	cfg        Config
	http       *http.Client
	confidence ConfidenceFunc
}

// NewClient creates a service client. Zero-valued fields get defaults:
// 120s timeout, 15-page limit.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = 15
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// WithConfidence installs a document-level confidence hook. A nil hook
// restores the constant default.
func (c *Client) WithConfidence(fn ConfidenceFunc) *Client {
	c.confidence = fn
	return c
}

// Extract uploads the PDF and returns the projected result. When the
// service rejects the document for exceeding its page limit, the request
// is retried exactly once asking for the first MaxPages pages; the
// partial result is returned with a warning logged.
func (c *Client) Extract(ctx context.Context, pdfPath string) (*Result, error) {
	doc, err := c.process(ctx, pdfPath, 0)
	if errors.Is(err, ErrPageLimit) {
		slog.Warn("document exceeds service page limit, retrying with first pages only",
			"path", pdfPath, "max_pages", c.cfg.MaxPages)
		doc, err = c.process(ctx, pdfPath, c.cfg.MaxPages)
	}
	if err != nil {
		return nil, err
	}

	res := ParseDocument(doc, c.confidence)
	slog.Info("extraction completed",
		"path", pdfPath, "pages", len(res.Pages), "tables", len(res.Tables))
	return res, nil
}

// process performs one upload round-trip. firstPages > 0 asks the service
// to process only the leading pages.
func (c *Client) process(ctx context.Context, pdfPath string, firstPages int) (*layout.Document, error) {
	file, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(pdfPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("reading %s: %w", pdfPath, err)
	}
	if c.cfg.ProcessorID != "" {
		writer.WriteField("processor_id", c.cfg.ProcessorID)
	}
	if firstPages > 0 {
		writer.WriteField("first_pages", strconv.Itoa(firstPages))
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/v1/process", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrExternalService, err)
	}

	if resp.StatusCode != http.StatusOK {
		if strings.Contains(string(respBody), pageLimitMarker) {
			return nil, fmt.Errorf("%w: %s", ErrPageLimit, strings.TrimSpace(string(respBody)))
		}
		return nil, fmt.Errorf("%w: status %d: %s",
			ErrExternalService, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	doc, err := layout.Decode(respBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return doc, nil
}
