package markdown

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jmhart/docweave/layout"
)

// Convert renders a structured layout document as Markdown. For fixed
// input and fixed options the output is byte-identical across runs.
func Convert(doc *layout.Document, opts Options) string {
	opts = opts.withDefaults()

	md := []string{"# " + escapeMD(title(doc, opts)), ""}
	md = renderPages(md, doc, opts)
	return strings.Join(md, "\n") + "\n"
}

// ConvertChunks renders several per-chunk layout documents as a single
// Markdown document with globally sequential page numbers. Documents must
// already be in chunk order.
func ConvertChunks(docs []*layout.Document, opts Options) string {
	opts = opts.withDefaults()

	var first *layout.Document
	if len(docs) > 0 {
		first = docs[0]
	}
	md := []string{"# " + escapeMD(title(first, opts)), ""}

	offset := opts.PageOffset
	for i, doc := range docs {
		chunkOpts := opts
		chunkOpts.PageOffset = offset
		md = renderPages(md, doc, chunkOpts)
		offset += len(doc.Pages)

		// Pages are globally sequential, so chunk boundaries get the
		// same separator as any other adjacent pair.
		if opts.PageSeparator && i < len(docs)-1 && len(doc.Pages) > 0 {
			md = append(md, "---", "")
		}
	}
	return strings.Join(md, "\n") + "\n"
}

func title(doc *layout.Document, opts Options) string {
	if opts.Title != "" {
		return opts.Title
	}
	if doc != nil && doc.DocumentSchema != nil && doc.DocumentSchema.DisplayName != "" {
		return doc.DocumentSchema.DisplayName
	}
	return "Document"
}

func renderPages(md []string, doc *layout.Document, opts Options) []string {
	for i := range doc.Pages {
		page := &doc.Pages[i]

		blocks := assemblePage(doc, page, opts)
		twoCol, splitX := detectColumns(blocks, opts.ColGapThreshold)
		orderBlocks(blocks, twoCol, splitX)

		md = append(md, fmt.Sprintf("## Page %d", opts.PageOffset+i+1), "")
		for _, b := range blocks {
			md = renderBlock(md, b, opts)
		}
		if opts.PageSeparator && i < len(doc.Pages)-1 {
			md = append(md, "---", "")
		}
	}
	return md
}

func renderBlock(md []string, b block, opts Options) []string {
	switch b.kind {
	case blockText:
		for _, line := range strings.Split(b.text, "\n") {
			s := strings.TrimSpace(line)
			switch {
			case s == "":
				md = append(md, "")
			case isBulleted(s):
				md = append(md, "- "+strings.TrimSpace(strings.TrimLeft(s, "•·*- ")))
			case opts.HeadingHeuristics && isHeadingLike(s):
				md = append(md, "### "+s)
			default:
				md = append(md, s)
			}
		}
		md = append(md, "")
	case blockKV:
		if len(b.kv) == 0 {
			return md
		}
		if opts.IncludeKVHeader {
			md = append(md, "| Field | Value |", "|---|---|")
		}
		for _, row := range b.kv {
			md = append(md, fmt.Sprintf("| %s | %s |", row[0], row[1]))
		}
		md = append(md, "")
	case blockTable:
		if opts.LabelTables {
			md = append(md, "### Table")
		}
		if b.span {
			md = append(md, renderTableHTML(b)...)
		} else {
			md = append(md, renderTableMD(b)...)
		}
		md = append(md, "")
	}

	if opts.DebugSpans {
		md = append(md, spanComment(b.segs), "")
	}
	return md
}

// renderTableMD emits a uniform pipe-grid table. The first row is the
// header; if it is entirely empty, placeholder column names are
// synthesized.
func renderTableMD(b block) []string {
	// Rows are padded to uniform width, so a zero-width first row means
	// the whole table carries no cells. Emit nothing rather than an
	// unbuildable grid.
	if len(b.rows) == 0 || len(b.rows[0]) == 0 {
		return nil
	}

	header := make([]string, len(b.rows[0]))
	empty := true
	for i, c := range b.rows[0] {
		header[i] = c.text
		if c.text != "" {
			empty = false
		}
	}
	if empty {
		for i := range header {
			header[i] = fmt.Sprintf("Col %d", i+1)
		}
	}

	lines := []string{
		"| " + strings.Join(header, " | ") + " |",
		"| " + strings.Repeat("--- | ", len(header)-1) + "--- |",
	}
	for _, row := range b.rows[1:] {
		texts := make([]string, len(row))
		for i, c := range row {
			texts[i] = c.text
		}
		lines = append(lines, "| "+strings.Join(texts, " | ")+" |")
	}
	return lines
}

// renderTableHTML emits an HTML table carrying explicit rowspan/colspan
// attributes. Used whenever any cell spans more than one row or column,
// which a pipe grid cannot express.
func renderTableHTML(b block) []string {
	lines := []string{"<table>"}
	if len(b.rows) > 0 {
		lines = append(lines, "  <thead>", "    <tr>")
		for _, c := range b.rows[0] {
			lines = append(lines, "      "+htmlCell("th", c))
		}
		lines = append(lines, "    </tr>", "  </thead>")

		if len(b.rows) > 1 {
			lines = append(lines, "  <tbody>")
			for _, row := range b.rows[1:] {
				lines = append(lines, "    <tr>")
				for _, c := range row {
					lines = append(lines, "      "+htmlCell("td", c))
				}
				lines = append(lines, "    </tr>")
			}
			lines = append(lines, "  </tbody>")
		}
	}
	return append(lines, "</table>")
}

func htmlCell(tag string, c cell) string {
	var attrs []string
	if c.colSpan > 1 {
		attrs = append(attrs, fmt.Sprintf(`colspan="%d"`, c.colSpan))
	}
	if c.rowSpan > 1 {
		attrs = append(attrs, fmt.Sprintf(`rowspan="%d"`, c.rowSpan))
	}
	attr := ""
	if len(attrs) > 0 {
		attr = " " + strings.Join(attrs, " ")
	}
	return fmt.Sprintf("<%s%s>%s</%s>", tag, attr, c.text, tag)
}

func spanComment(segs layout.SegmentSet) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = fmt.Sprintf("%d:%d", s.Start, s.End)
	}
	return "<!-- spans: [" + strings.Join(parts, " ") + "] -->"
}

// isBulleted reports whether a line starts with a bullet glyph followed
// by a space.
func isBulleted(s string) bool {
	for _, prefix := range []string{"• ", "· ", "- ", "* "} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// isHeadingLike applies the heading heuristics: 3-80 characters, no
// trailing period, and either >=85% of its letters uppercase or
// title-cased with at most 8 words.
func isHeadingLike(line string) bool {
	if len(line) < 3 || len(line) > 80 {
		return false
	}
	if strings.HasSuffix(line, ".") {
		return false
	}

	letters, upper := 0, 0
	for _, r := range line {
		if r >= 'A' && r <= 'Z' {
			letters++
			upper++
		} else if r >= 'a' && r <= 'z' {
			letters++
		}
	}
	if letters == 0 {
		return false
	}
	if float64(upper)/float64(letters) >= 0.85 {
		return true
	}
	return isTitleCase(line) && len(strings.Fields(line)) <= 8
}

// isTitleCase reports whether every cased word starts with an uppercase
// letter and continues in lowercase.
func isTitleCase(s string) bool {
	cased := false
	for _, word := range strings.Fields(s) {
		seenLetter := false
		for _, r := range word {
			if !unicode.IsLetter(r) {
				continue
			}
			if !seenLetter {
				if !unicode.IsUpper(r) {
					return false
				}
				seenLetter = true
				cased = true
			} else if unicode.IsUpper(r) {
				return false
			}
		}
	}
	return cased
}
