// Command docweave is the CLI for layout-to-markdown conversion and
// chunked PDF extraction.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmhart/docweave"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "docweave",
	Short: "Reconstruct Markdown from document-understanding layout output",
	Long: `docweave converts the structured layout output of a document-understanding
service into readable Markdown, and processes oversized PDFs by splitting
them into page-range chunks, extracting per chunk, and merging the results.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelInfo
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
}

// loadConfig merges the defaults, an optional config file, and
// environment overrides.
func loadConfig() (docweave.Config, error) {
	cfg := docweave.DefaultConfig()

	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			return cfg, fmt.Errorf("opening config: %w", err)
		}
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if v := os.Getenv("DOCWEAVE_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DOCWEAVE_SERVICE_URL"); v != "" {
		cfg.Service.BaseURL = v
	}
	if v := os.Getenv("DOCWEAVE_PROCESSOR_ID"); v != "" {
		cfg.Service.ProcessorID = v
	}
	if v := os.Getenv("DOCWEAVE_SERVICE_API_KEY"); v != "" {
		cfg.Service.APIKey = v
	}
	if v := os.Getenv("DOCWEAVE_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Service.MaxPages = n
		}
	}
	if v := os.Getenv("DOCWEAVE_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChunkSize = n
		}
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
