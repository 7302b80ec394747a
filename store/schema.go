package store

// schemaSQL is the DDL for the processed-document registry.
const schemaSQL = `
-- Document registry with hash-based change detection
CREATE TABLE IF NOT EXISTS documents (
    id INTEGER PRIMARY KEY,
    path TEXT NOT NULL UNIQUE,
    filename TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    status TEXT DEFAULT 'pending',
    page_count INTEGER DEFAULT 0,
    table_count INTEGER DEFAULT 0,
    chunks_processed INTEGER DEFAULT 0,
    chunks_failed INTEGER DEFAULT 0,
    extraction_method TEXT,
    confidence REAL DEFAULT 0,
    markdown TEXT,
    result_json JSON,
    error TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
`
