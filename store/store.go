// Package store persists processed documents and their merged extraction
// results in SQLite, with content-hash change detection so re-processing
// an unchanged PDF can be skipped.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a document does not exist (or does not
	// match the requested hash/status).
	ErrNotFound = errors.New("docweave: document not found")

	// ErrClosed is returned when operating on a closed store.
	ErrClosed = errors.New("docweave: store is closed")
)

// Document status values.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)

// Document is a row in the documents table: one processed (or in-flight)
// source PDF with its merged extraction result.
type Document struct {
	ID               int64   `json:"id"`
	Path             string  `json:"path"`
	Filename         string  `json:"filename"`
	ContentHash      string  `json:"content_hash"`
	Status           string  `json:"status"`
	PageCount        int     `json:"page_count"`
	TableCount       int     `json:"table_count"`
	ChunksProcessed  int     `json:"chunks_processed"`
	ChunksFailed     int     `json:"chunks_failed"`
	ExtractionMethod string  `json:"extraction_method"`
	Confidence       float64 `json:"confidence"`
	Markdown         string  `json:"markdown,omitempty"`
	ResultJSON       string  `json:"result_json,omitempty"`
	Error            string  `json:"error,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// ResultUpdate carries the outcome of a processing run.
type ResultUpdate struct {
	PageCount        int
	TableCount       int
	ChunksProcessed  int
	ChunksFailed     int
	ExtractionMethod string
	Confidence       float64
	Markdown         string
	ResultJSON       string
}

// Store wraps the SQLite database for all docweave persistence.
type Store struct {
	db     *sql.DB
	closed bool
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) guard() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// UpsertDocument inserts or updates a document record keyed by path.
// Returns the document ID.
func (s *Store) UpsertDocument(ctx context.Context, doc Document) (int64, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}

	// LastInsertId is connection-scoped and stale on the UPDATE arm of an
	// upsert, so the row id comes back from the statement itself.
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO documents (path, filename, content_hash, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			filename = excluded.filename,
			content_hash = excluded.content_hash,
			status = excluded.status,
			error = NULL,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`, doc.Path, doc.Filename, doc.ContentHash, doc.Status).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

const documentColumns = `id, path, filename, content_hash, status, page_count,
	table_count, chunks_processed, chunks_failed,
	COALESCE(extraction_method, ''), confidence,
	COALESCE(markdown, ''), COALESCE(result_json, ''), COALESCE(error, ''),
	created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*Document, error) {
	d := &Document{}
	err := row.Scan(&d.ID, &d.Path, &d.Filename, &d.ContentHash, &d.Status,
		&d.PageCount, &d.TableCount, &d.ChunksProcessed, &d.ChunksFailed,
		&d.ExtractionMethod, &d.Confidence,
		&d.Markdown, &d.ResultJSON, &d.Error,
		&d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id int64) (*Document, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return scanDocument(s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id))
}

// GetDocumentByPath retrieves a document by its file path.
func (s *Store) GetDocumentByPath(ctx context.Context, path string) (*Document, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return scanDocument(s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE path = ?", path))
}

// FindProcessed returns the document for path only when it was already
// processed successfully with the same content hash; otherwise ErrNotFound.
// This is the change-detection entry point: a hit means re-processing can
// be skipped.
func (s *Store) FindProcessed(ctx context.Context, path, contentHash string) (*Document, error) {
	doc, err := s.GetDocumentByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if doc.Status != StatusProcessed || doc.ContentHash != contentHash {
		return nil, ErrNotFound
	}
	return doc, nil
}

// ListDocuments returns all documents ordered by creation time, newest
// first, without their markdown/result payloads.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, filename, content_hash, status, page_count,
			table_count, chunks_processed, chunks_failed,
			COALESCE(extraction_method, ''), confidence,
			COALESCE(error, ''), created_at, updated_at
		FROM documents ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Path, &d.Filename, &d.ContentHash, &d.Status,
			&d.PageCount, &d.TableCount, &d.ChunksProcessed, &d.ChunksFailed,
			&d.ExtractionMethod, &d.Confidence,
			&d.Error, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// SaveResult records a successful processing run and marks the document
// processed.
func (s *Store) SaveResult(ctx context.Context, id int64, r ResultUpdate) error {
	if err := s.guard(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET
			status = ?,
			page_count = ?,
			table_count = ?,
			chunks_processed = ?,
			chunks_failed = ?,
			extraction_method = ?,
			confidence = ?,
			markdown = ?,
			result_json = ?,
			error = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, StatusProcessed, r.PageCount, r.TableCount, r.ChunksProcessed, r.ChunksFailed,
		r.ExtractionMethod, r.Confidence, r.Markdown, r.ResultJSON, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed records a failed processing run.
func (s *Store) MarkFailed(ctx context.Context, id int64, cause error) error {
	if err := s.guard(); err != nil {
		return err
	}

	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE documents SET status = ?, error = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		StatusFailed, msg, id)
	return err
}

// DeleteDocument removes a document and its stored results.
func (s *Store) DeleteDocument(ctx context.Context, id int64) error {
	if err := s.guard(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// HashFile returns the hex SHA-256 of the file's contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
