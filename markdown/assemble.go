package markdown

import (
	"regexp"
	"strings"

	"github.com/jmhart/docweave/layout"
)

type blockKind int

const (
	blockText blockKind = iota
	blockKV
	blockTable
)

// cell is one rendered table cell.
type cell struct {
	text    string
	rowSpan int
	colSpan int
}

// block is a renderable unit assembled from one page: a table, a group of
// key-value form fields, or residual text. Blocks are page-scoped and
// discarded after rendering.
type block struct {
	kind blockKind
	box  layout.Box
	y, x float64            // sort key
	segs layout.SegmentSet  // text-buffer spans this block consumes
	text string             // blockText
	rows [][]cell           // blockTable, padded to uniform width
	span bool               // blockTable: any cell spans >1 row/col
	kv   [][2]string        // blockKV: (name, value) rows
}

// assemblePage builds the renderable blocks for one page. Tables and
// key-value groups consume their text spans; text containers then emit
// only the residual text so nothing is duplicated. Text containers never
// consume from each other.
func assemblePage(doc *layout.Document, page *layout.Page, opts Options) []block {
	var blocks []block
	var consumed layout.SegmentSet

	for i := range page.Tables {
		tb := tableBlock(doc, &page.Tables[i])
		blocks = append(blocks, tb)
		consumed = layout.Union(consumed, tb.segs)
	}

	for _, g := range groupFields(doc, page.FormFields, opts.KVRowThreshold) {
		blocks = append(blocks, g)
		consumed = layout.Union(consumed, g.segs)
	}

	containers := page.TextContainers()
	for i := range containers {
		container := &containers[i]
		residual := layout.Subtract(layout.Merge(container.Segments()), consumed)
		if len(residual) == 0 {
			continue
		}
		text := cleanupText(layout.TextOf(doc.Text, residual))
		if text == "" {
			continue
		}
		box := container.Box()
		blocks = append(blocks, block{
			kind: blockText,
			box:  box,
			y:    box.Y1,
			x:    box.X1,
			segs: residual,
			text: text,
		})
	}

	return blocks
}

// tableBlock flattens a layout table into rows of rendered cells, padded
// to uniform width, with the union of all cell spans and boxes.
func tableBlock(doc *layout.Document, t *layout.Table) block {
	b := block{kind: blockTable, box: layout.EmptyBox()}

	width := 0
	for _, row := range t.Rows() {
		cells := make([]cell, 0, len(row.Cells))
		for i := range row.Cells {
			c := &row.Cells[i]
			rowSpan, colSpan := c.Spans()
			if rowSpan > 1 || colSpan > 1 {
				b.span = true
			}
			segs := c.Layout.Segments()
			cells = append(cells, cell{
				text:    escapeMD(layout.TextOf(doc.Text, segs)),
				rowSpan: rowSpan,
				colSpan: colSpan,
			})
			b.segs = layout.Union(b.segs, segs)
			b.box = b.box.Union(c.Layout.Box())
		}
		if len(cells) > width {
			width = len(cells)
		}
		b.rows = append(b.rows, cells)
	}

	// Pad short rows so the grid renders with a uniform column count.
	for i, row := range b.rows {
		for len(row) < width {
			row = append(row, cell{rowSpan: 1, colSpan: 1})
		}
		b.rows[i] = row
	}

	b.y, b.x = b.box.Y1, b.box.X1
	return b
}

// fieldRow is one form field projected onto sortable page coordinates.
type fieldRow struct {
	y, x     float64
	key, val string
	segs     layout.SegmentSet
	box      layout.Box
}

// groupFields clusters form fields that lie on approximately the same
// horizontal band into key-value groups. Fields are sorted by rounded
// (y, x); a new group starts whenever the vertical distance from the
// group's anchor exceeds rowThreshold.
func groupFields(doc *layout.Document, fields []layout.FormField, rowThreshold float64) []block {
	rows := make([]fieldRow, 0, len(fields))
	for i := range fields {
		f := &fields[i]
		nbox := f.FieldName.Box()
		vbox := f.FieldValue.Box()

		// Vertical midpoint prefers the value's geometry.
		ymid := vbox.CenterY()
		if vbox.IsEmpty() {
			ymid = nbox.CenterY()
		}
		xleft := nbox.X1
		if vbox.X1 < xleft {
			xleft = vbox.X1
		}

		key := escapeMD(doc.TextFor(f.FieldName))
		key = strings.TrimRight(strings.TrimSuffix(key, ":"), " ")
		val := escapeMD(doc.TextFor(f.FieldValue))
		if key == "" && val == "" {
			continue
		}

		rows = append(rows, fieldRow{
			y:    ymid,
			x:    xleft,
			key:  key,
			val:  val,
			segs: layout.Union(f.FieldName.Segments(), f.FieldValue.Segments()),
			box:  nbox.Union(vbox),
		})
	}

	sortFieldRows(rows)

	var groups []block
	for _, r := range rows {
		if len(groups) > 0 {
			g := &groups[len(groups)-1]
			if abs(r.y-g.y) <= rowThreshold {
				g.kv = append(g.kv, [2]string{r.key, r.val})
				g.segs = layout.Union(g.segs, r.segs)
				g.box = g.box.Union(r.box)
				continue
			}
		}
		groups = append(groups, block{
			kind: blockKV,
			box:  r.box,
			y:    r.y,
			x:    r.x,
			segs: r.segs,
			kv:   [][2]string{{r.key, r.val}},
		})
	}
	return groups
}

// escapeMD makes text safe inside a markdown table cell.
func escapeMD(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}

var (
	hyphenBreakRe = regexp.MustCompile(`(\w)-\n(\w)`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
)

// cleanupText normalizes residual text: strips carriage returns, rejoins
// hyphenated line breaks ("exam-\nple" -> "example"), collapses runs of
// blank lines to a single blank line, and trims outer whitespace.
func cleanupText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = hyphenBreakRe.ReplaceAllString(s, "$1$2")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
