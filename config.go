package docweave

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jmhart/docweave/markdown"
)

// Config holds all configuration for the docweave processor.
type Config struct {
	// DBPath is the full path to the SQLite database file.
	// If empty, defaults to ~/.docweave/<DBName>.db
	DBPath string `json:"db_path"`

	// DBName is the name for the database (used when DBPath is empty).
	// Defaults to "docweave".
	DBName string `json:"db_name"`

	// StorageDir controls where the database is created when DBPath is
	// not explicitly set. Options: "home" (default) uses ~/.docweave/,
	// "local" uses the current working directory.
	StorageDir string `json:"storage_dir"`

	// Service is the document-understanding service endpoint.
	Service ServiceConfig `json:"service"`

	// ChunkSize is the page capacity per chunk. Documents with more
	// pages are split before extraction. Default 15.
	ChunkSize int `json:"chunk_size"`

	// Concurrency bounds the number of chunks extracted in parallel.
	// Default 4.
	Concurrency int `json:"concurrency"`

	// ChunkTimeout is the per-chunk extraction deadline. Default 2m.
	ChunkTimeout time.Duration `json:"chunk_timeout"`

	// Markdown rendering knobs.
	HeadingHeuristics bool    `json:"heading_heuristics"`
	LabelTables       bool    `json:"label_tables"`
	DebugSpans        bool    `json:"debug_spans"`
	IncludeKVHeader   bool    `json:"include_kv_header"`
	PageSeparator     bool    `json:"page_separator"`
	KVRowThreshold    float64 `json:"kv_row_threshold"`
	ColGapThreshold   float64 `json:"col_gap_threshold"`
}

// ServiceConfig configures the external document-understanding service.
type ServiceConfig struct {
	BaseURL     string        `json:"base_url"`
	ProcessorID string        `json:"processor_id"`
	APIKey      string        `json:"api_key"`
	Timeout     time.Duration `json:"timeout"`

	// MaxPages is the page cap used by the one-time retry after the
	// service rejects a document for exceeding its page limit.
	MaxPages int `json:"max_pages"`
}

// DefaultConfig returns a Config with sensible defaults.
// Database is stored in ~/.docweave/docweave.db by default.
func DefaultConfig() Config {
	return Config{
		DBName:     "docweave",
		StorageDir: "home",
		Service: ServiceConfig{
			Timeout:  120 * time.Second,
			MaxPages: 15,
		},
		ChunkSize:         15,
		Concurrency:       4,
		ChunkTimeout:      2 * time.Minute,
		HeadingHeuristics: true,
		IncludeKVHeader:   true,
		PageSeparator:     true,
		KVRowThreshold:    0.018,
		ColGapThreshold:   0.18,
	}
}

// MarkdownOptions maps the config's rendering knobs onto markdown
// options. Zero-valued thresholds keep the package defaults.
func (c *Config) MarkdownOptions() markdown.Options {
	return markdown.Options{
		KVRowThreshold:    c.KVRowThreshold,
		ColGapThreshold:   c.ColGapThreshold,
		IncludeKVHeader:   c.IncludeKVHeader,
		LabelTables:       c.LabelTables,
		PageSeparator:     c.PageSeparator,
		HeadingHeuristics: c.HeadingHeuristics,
		DebugSpans:        c.DebugSpans,
	}
}

// resolveDBPath computes the final database path from config fields.
func (c *Config) resolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "docweave"
	}

	switch c.StorageDir {
	case "local", "cwd":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db" // fallback to cwd
		}
		return filepath.Join(home, ".docweave", name+".db")
	}
}
