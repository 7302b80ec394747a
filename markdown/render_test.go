package markdown

import (
	"strings"
	"testing"

	"github.com/jmhart/docweave/layout"
)

func TestIsHeadingLike(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"", false},
		{"ab", false},
		{strings.Repeat("A", 81), false},
		{"ENDS WITH PERIOD.", false},
		{"1234 5678", false}, // no letters
		{"TERMS AND CONDITIONS", true},
		{"Payment Schedule", true},
		{"Payment schedule overview", false}, // not title case, not caps
		{"One Two Three Four Five Six Seven Eight Nine", false}, // > 8 words
		{"MOSTLY CAPS with a little", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := isHeadingLike(tt.line); got != tt.want {
				t.Errorf("isHeadingLike(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestRenderTableMD(t *testing.T) {
	b := block{rows: [][]cell{
		{{text: "Name", rowSpan: 1, colSpan: 1}, {text: "Qty", rowSpan: 1, colSpan: 1}},
		{{text: "Bolt", rowSpan: 1, colSpan: 1}, {text: "4", rowSpan: 1, colSpan: 1}},
	}}
	lines := renderTableMD(b)
	want := []string{
		"| Name | Qty |",
		"| --- | --- |",
		"| Bolt | 4 |",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRenderTableMDSynthesizedHeader(t *testing.T) {
	b := block{rows: [][]cell{
		{{rowSpan: 1, colSpan: 1}, {rowSpan: 1, colSpan: 1}},
		{{text: "a", rowSpan: 1, colSpan: 1}, {text: "b", rowSpan: 1, colSpan: 1}},
	}}
	lines := renderTableMD(b)
	if lines[0] != "| Col 1 | Col 2 |" {
		t.Errorf("header = %q, want synthesized column names", lines[0])
	}
}

func TestRenderTableHTMLSpans(t *testing.T) {
	b := block{span: true, rows: [][]cell{
		{{text: "Merged", rowSpan: 1, colSpan: 2}},
		{{text: "x", rowSpan: 2, colSpan: 1}, {text: "y", rowSpan: 1, colSpan: 1}},
	}}
	out := strings.Join(renderTableHTML(b), "\n")
	if !strings.Contains(out, `<th colspan="2">Merged</th>`) {
		t.Errorf("missing colspan header:\n%s", out)
	}
	if !strings.Contains(out, `<td rowspan="2">x</td>`) {
		t.Errorf("missing rowspan cell:\n%s", out)
	}
}

// End-to-end: one page with a 2x2 regular table above a paragraph yields
// exactly one pipe grid and the paragraph after it.
func TestConvertTableAndParagraph(t *testing.T) {
	//          0    5    10   15    21
	// buffer:  "h1 h2 b1 b2 Closing text here"
	doc := &layout.Document{
		Text: "h1 h2 b1 b2 Closing text here",
		Pages: []layout.Page{{
			Tables: []layout.Table{{
				HeaderRows: []layout.TableRow{{Cells: []layout.TableCell{
					{Layout: elementPtr(0, 2, 0.1, 0.10, 0.4, 0.15)},
					{Layout: elementPtr(3, 5, 0.5, 0.10, 0.8, 0.15)},
				}}},
				BodyRows: []layout.TableRow{{Cells: []layout.TableCell{
					{Layout: elementPtr(6, 8, 0.1, 0.16, 0.4, 0.20)},
					{Layout: elementPtr(9, 11, 0.5, 0.16, 0.8, 0.20)},
				}}},
			}},
			Paragraphs: []layout.Layout{
				element(0, 29, 0.1, 0.50, 0.9, 0.60),
			},
		}},
	}

	out := Convert(doc, DefaultOptions())

	if !strings.Contains(out, "# Document") {
		t.Error("missing fallback title")
	}
	if !strings.Contains(out, "## Page 1") {
		t.Error("missing page heading")
	}
	if got := strings.Count(out, "| --- | --- |"); got != 1 {
		t.Errorf("grid separators = %d, want exactly 1\n%s", got, out)
	}
	if !strings.Contains(out, "| h1 | h2 |") || !strings.Contains(out, "| b1 | b2 |") {
		t.Errorf("table rows missing:\n%s", out)
	}
	if !strings.Contains(out, "Closing text here") {
		t.Errorf("residual paragraph missing:\n%s", out)
	}

	// Table (y=0.10) renders before the paragraph (y=0.50).
	if strings.Index(out, "| h1 | h2 |") > strings.Index(out, "Closing text here") {
		t.Errorf("table should precede the paragraph:\n%s", out)
	}

	// Cell text consumed by the table never re-appears as body text.
	if strings.Contains(out, "h1 h2 b1 b2") {
		t.Errorf("table text duplicated into the paragraph:\n%s", out)
	}
}

// A single spanning cell switches that table (and only that table) to the
// HTML renderer.
func TestConvertSpanningTableUsesHTML(t *testing.T) {
	doc := &layout.Document{
		Text: "h1 h2 b1",
		Pages: []layout.Page{{
			Tables: []layout.Table{{
				HeaderRows: []layout.TableRow{{Cells: []layout.TableCell{
					{Layout: elementPtr(0, 2, 0.1, 0.1, 0.4, 0.15)},
					{Layout: elementPtr(3, 5, 0.5, 0.1, 0.8, 0.15)},
				}}},
				BodyRows: []layout.TableRow{{Cells: []layout.TableCell{
					{Layout: elementPtr(6, 8, 0.1, 0.16, 0.8, 0.2), RowSpan: 2},
				}}},
			}},
		}},
	}

	out := Convert(doc, DefaultOptions())
	if !strings.Contains(out, "<table>") || !strings.Contains(out, `rowspan="2"`) {
		t.Errorf("spanning table should render as HTML:\n%s", out)
	}
	if strings.Contains(out, "| --- |") {
		t.Errorf("spanning table must not render as a pipe grid:\n%s", out)
	}
}

// The service can emit tables whose rows carry no cells at all; they
// render as nothing instead of an unbuildable grid.
func TestConvertCellLessTable(t *testing.T) {
	if got := renderTableMD(block{rows: [][]cell{{}}}); got != nil {
		t.Errorf("zero-width table rendered %v", got)
	}

	doc := &layout.Document{
		Text: "ok",
		Pages: []layout.Page{{
			Tables:     []layout.Table{{BodyRows: []layout.TableRow{{Cells: nil}}}},
			Paragraphs: []layout.Layout{element(0, 2, 0.1, 0.5, 0.9, 0.6)},
		}},
	}

	out := Convert(doc, DefaultOptions())
	if strings.Contains(out, "|") {
		t.Errorf("cell-less table produced grid markup:\n%s", out)
	}
	if !strings.Contains(out, "ok") {
		t.Errorf("surrounding text lost:\n%s", out)
	}
}

func TestConvertKVGroups(t *testing.T) {
	doc := &layout.Document{
		Text: "Name: Alice",
		Pages: []layout.Page{{
			FormFields: []layout.FormField{{
				FieldName:  elementPtr(0, 5, 0.1, 0.1, 0.2, 0.12),
				FieldValue: elementPtr(6, 11, 0.3, 0.1, 0.5, 0.12),
			}},
		}},
	}

	out := Convert(doc, DefaultOptions())
	if !strings.Contains(out, "| Field | Value |") {
		t.Errorf("missing KV header:\n%s", out)
	}
	if !strings.Contains(out, "| Name | Alice |") {
		t.Errorf("missing KV row:\n%s", out)
	}

	opts := DefaultOptions()
	opts.IncludeKVHeader = false
	out = Convert(doc, opts)
	if strings.Contains(out, "| Field | Value |") {
		t.Errorf("KV header should be suppressed:\n%s", out)
	}
}

func TestConvertTextHeuristics(t *testing.T) {
	text := "INTRODUCTION\n• first item\nplain body line."
	doc := &layout.Document{
		Text: text,
		Pages: []layout.Page{{
			Paragraphs: []layout.Layout{element(0, len(text), 0.1, 0.1, 0.9, 0.3)},
		}},
	}

	out := Convert(doc, DefaultOptions())
	if !strings.Contains(out, "### INTRODUCTION") {
		t.Errorf("heading heuristic not applied:\n%s", out)
	}
	if !strings.Contains(out, "- first item") {
		t.Errorf("bullet not normalized:\n%s", out)
	}
	if !strings.Contains(out, "plain body line.") {
		t.Errorf("plain line missing:\n%s", out)
	}

	opts := DefaultOptions()
	opts.HeadingHeuristics = false
	out = Convert(doc, opts)
	if strings.Contains(out, "### INTRODUCTION") {
		t.Errorf("heading heuristics should be disabled:\n%s", out)
	}
}

func TestConvertPageSeparatorAndLabels(t *testing.T) {
	page := layout.Page{Paragraphs: []layout.Layout{element(0, 2, 0.1, 0.1, 0.9, 0.2)}}
	doc := &layout.Document{Text: "ok", Pages: []layout.Page{page, page}}

	opts := DefaultOptions()
	opts.PageSeparator = true
	out := Convert(doc, opts)
	if got := strings.Count(out, "\n---\n"); got != 1 {
		t.Errorf("page separators = %d, want 1 (between 2 pages)\n%s", got, out)
	}
}

// A merged document reads as one document: chunk boundaries get the same
// page separator as page pairs inside a chunk.
func TestConvertChunksSeparatorAtChunkBoundary(t *testing.T) {
	page := layout.Page{Paragraphs: []layout.Layout{element(0, 2, 0.1, 0.1, 0.9, 0.2)}}
	chunk1 := &layout.Document{Text: "ok", Pages: []layout.Page{page, page}}
	chunk2 := &layout.Document{Text: "ok", Pages: []layout.Page{page}}

	opts := DefaultOptions()
	opts.PageSeparator = true
	out := ConvertChunks([]*layout.Document{chunk1, chunk2}, opts)

	// 3 pages total: separators between 1-2 (in-chunk) and 2-3 (boundary),
	// none after the last page.
	if got := strings.Count(out, "\n---\n"); got != 2 {
		t.Errorf("page separators = %d, want 2\n%s", got, out)
	}
	if strings.HasSuffix(strings.TrimRight(out, "\n"), "---") {
		t.Errorf("trailing separator after the last page:\n%s", out)
	}
}

func TestConvertDeterministic(t *testing.T) {
	doc := &layout.Document{
		Text: "h1 h2 b1 b2 Closing text here",
		Pages: []layout.Page{{
			Paragraphs: []layout.Layout{element(0, 29, 0.1, 0.5, 0.9, 0.6)},
		}},
	}
	first := Convert(doc, DefaultOptions())
	for i := 0; i < 10; i++ {
		if got := Convert(doc, DefaultOptions()); got != first {
			t.Fatal("Convert is not deterministic")
		}
	}
}

func TestConvertChunksRenumbersPages(t *testing.T) {
	page := layout.Page{Paragraphs: []layout.Layout{element(0, 2, 0.1, 0.1, 0.9, 0.2)}}
	chunk1 := &layout.Document{
		Text:           "ok",
		Pages:          []layout.Page{page, page, page},
		DocumentSchema: &layout.Schema{DisplayName: "Big Report"},
	}
	chunk2 := &layout.Document{Text: "ok", Pages: []layout.Page{page, page}}

	out := ConvertChunks([]*layout.Document{chunk1, chunk2}, DefaultOptions())

	if !strings.Contains(out, "# Big Report") {
		t.Errorf("title should come from the first chunk:\n%s", out)
	}
	for _, heading := range []string{"## Page 1", "## Page 3", "## Page 4", "## Page 5"} {
		if !strings.Contains(out, heading) {
			t.Errorf("missing %q:\n%s", heading, out)
		}
	}
	if strings.Contains(out, "## Page 6") {
		t.Errorf("unexpected page 6:\n%s", out)
	}
}

func TestConvertDebugSpans(t *testing.T) {
	doc := &layout.Document{
		Text: "hello world",
		Pages: []layout.Page{{
			Paragraphs: []layout.Layout{element(0, 11, 0.1, 0.1, 0.9, 0.2)},
		}},
	}
	opts := DefaultOptions()
	opts.DebugSpans = true
	out := Convert(doc, opts)
	if !strings.Contains(out, "<!-- spans: [0:11] -->") {
		t.Errorf("missing span annotation:\n%s", out)
	}
}
