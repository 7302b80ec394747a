// Package markdown reconstructs a linear, human-readable Markdown document
// from a structured layout document: per page it assembles renderable
// blocks (tables, key-value groups, residual text), resolves reading order
// with a two-column gap heuristic, and renders each block to markup.
package markdown

// Options control reconstruction and rendering behaviour.
type Options struct {
	// KVRowThreshold is the vertical proximity (normalized units) within
	// which consecutive form fields are grouped into one key-value table.
	KVRowThreshold float64

	// ColGapThreshold is the normalized x-gap between sorted block centers
	// that signals a two-column page layout.
	ColGapThreshold float64

	// IncludeKVHeader emits a "Field | Value" header row above each
	// key-value group.
	IncludeKVHeader bool

	// LabelTables emits a "### Table" label before each table.
	LabelTables bool

	// PageSeparator inserts a horizontal rule between pages.
	PageSeparator bool

	// HeadingHeuristics promotes heading-like text lines to headings.
	HeadingHeuristics bool

	// DebugSpans annotates each rendered block with the text-buffer spans
	// it consumed, as an HTML comment.
	DebugSpans bool

	// Title overrides the document schema display name. When both are
	// empty the literal "Document" is used.
	Title string

	// PageOffset is added to emitted page numbers. Used when rendering a
	// chunk of a larger document so page headings stay globally sequential.
	PageOffset int
}

// DefaultOptions returns the standard reconstruction options.
func DefaultOptions() Options {
	return Options{
		KVRowThreshold:    0.018,
		ColGapThreshold:   0.18,
		IncludeKVHeader:   true,
		HeadingHeuristics: true,
	}
}

// withDefaults fills zero-valued thresholds so a literal Options{} still
// behaves sensibly.
func (o Options) withDefaults() Options {
	if o.KVRowThreshold == 0 {
		o.KVRowThreshold = 0.018
	}
	if o.ColGapThreshold == 0 {
		o.ColGapThreshold = 0.18
	}
	return o
}
