package chunk

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmhart/docweave/extract"
)

const (
	// defaultConcurrency bounds simultaneous in-flight service calls.
	defaultConcurrency = 4

	// perChunkTimeout caps how long a single chunk extraction can take.
	perChunkTimeout = 2 * time.Minute
)

// Result is the outcome of extracting one chunk. Exactly one of Data and
// Err is set.
type Result struct {
	ChunkID int
	Info    Chunk
	Data    *extract.Result
	Err     error
}

// Orchestrator runs the extraction capability once per chunk.
type Orchestrator struct {
	extractor   extract.Extractor
	concurrency int
	timeout     time.Duration
}

// NewOrchestrator creates an orchestrator. Non-positive concurrency or
// timeout get defaults.
func NewOrchestrator(extractor extract.Extractor, concurrency int, timeout time.Duration) *Orchestrator {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if timeout <= 0 {
		timeout = perChunkTimeout
	}
	return &Orchestrator{extractor: extractor, concurrency: concurrency, timeout: timeout}
}

// Process extracts every chunk, at most concurrency at a time, each under
// its own timeout. Failures are recorded in the chunk's Result and never
// cancel sibling chunks. Results are indexed like chunks.
func (o *Orchestrator) Process(ctx context.Context, chunks []Chunk) []Result {
	results := make([]Result, len(chunks))

	var wg sync.WaitGroup
	sem := make(chan struct{}, o.concurrency)
	start := time.Now()

	for i, c := range chunks {
		wg.Add(1)
		go func(i int, c Chunk) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = Result{ChunkID: c.ID, Info: c, Err: ctx.Err()}
				return
			}

			chunkCtx, cancel := context.WithTimeout(ctx, o.timeout)
			defer cancel()

			chunkStart := time.Now()
			data, err := o.extractor.Extract(chunkCtx, c.Path)
			if err != nil {
				slog.Warn("chunk extraction failed",
					"chunk_id", c.ID, "pages", c.PageCount,
					"start_page", c.StartPage, "end_page", c.EndPage,
					"error", err,
					"elapsed", time.Since(chunkStart).Round(time.Millisecond))
				results[i] = Result{ChunkID: c.ID, Info: c, Err: err}
				return
			}

			slog.Info("chunk extracted",
				"chunk_id", c.ID, "pages", len(data.Pages),
				"elapsed", time.Since(chunkStart).Round(time.Millisecond),
				"total_elapsed", time.Since(start).Round(time.Millisecond))
			results[i] = Result{ChunkID: c.ID, Info: c, Data: data}
		}(i, c)
	}

	wg.Wait()
	return results
}
