package layout

import (
	"reflect"
	"testing"
)

const sampleJSON = `{
  "text": "Invoice Number: INV-001\nAcme Corp\n",
  "documentSchema": {"displayName": "Invoice Parser"},
  "pages": [
    {
      "pageNumber": 1,
      "paragraphs": [
        {"layout": {
          "textAnchor": {"textSegments": [{"startIndex": "24", "endIndex": "34"}]},
          "boundingPoly": {"normalizedVertices": [{"x": 0.1, "y": 0.5}, {"x": 0.4, "y": 0.55}]}
        }}
      ],
      "formFields": [
        {
          "fieldName": {"textAnchor": {"textSegments": [{"endIndex": 16}]}},
          "fieldValue": {"textAnchor": {"textSegments": [{"startIndex": 16, "endIndex": 23}]}}
        }
      ]
    }
  ]
}`

func TestDecode(t *testing.T) {
	doc, err := Decode([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if doc.DocumentSchema == nil || doc.DocumentSchema.DisplayName != "Invoice Parser" {
		t.Errorf("DisplayName = %v, want Invoice Parser", doc.DocumentSchema)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(doc.Pages))
	}

	page := doc.Pages[0]
	if len(page.Paragraphs) != 1 {
		t.Fatalf("paragraphs = %d, want 1", len(page.Paragraphs))
	}

	// String-typed and numeric indices both decode.
	para := page.Paragraphs[0]
	if got := doc.TextFor(&para); got != "Acme Corp\n" {
		t.Errorf("paragraph text = %q, want %q", got, "Acme Corp\n")
	}

	ff := page.FormFields[0]
	if got := doc.TextFor(ff.FieldName); got != "Invoice Number: " {
		t.Errorf("field name = %q", got)
	}
	if got := doc.TextFor(ff.FieldValue); got != "INV-001" {
		t.Errorf("field value = %q", got)
	}

	// Geometry decodes through the layout wrapper.
	if box := para.Box(); box.IsEmpty() {
		t.Error("paragraph box should not be empty")
	}
}

func TestDecodeWrappedDocument(t *testing.T) {
	wrapped := `{"document": ` + sampleJSON + `}`
	doc, err := Decode([]byte(wrapped))
	if err != nil {
		t.Fatalf("Decode wrapped: %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Errorf("pages = %d, want 1", len(doc.Pages))
	}
}

func TestTextContainersPriority(t *testing.T) {
	anchor := func(start, end int) *TextAnchor {
		return &TextAnchor{TextSegments: []TextSegment{{Index(start), Index(end)}}}
	}
	blocks := []Layout{{TextAnchor: anchor(0, 5)}}
	paragraphs := []Layout{{TextAnchor: anchor(0, 3)}}
	lines := []Layout{{TextAnchor: anchor(0, 1)}}

	tests := []struct {
		name string
		page Page
		want []Layout
	}{
		{"blocks win", Page{Blocks: blocks, Paragraphs: paragraphs, Lines: lines}, blocks},
		{"paragraphs next", Page{Paragraphs: paragraphs, Lines: lines}, paragraphs},
		{"lines last", Page{Lines: lines}, lines},
		{"nothing", Page{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.TextContainers(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TextContainers = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextOfClamping(t *testing.T) {
	buffer := "hello"
	tests := []struct {
		name string
		segs SegmentSet
		want string
	}{
		{"nil", nil, ""},
		{"in range", SegmentSet{{0, 5}}, "hello"},
		{"end past buffer", SegmentSet{{3, 99}}, "lo"},
		{"negative start", SegmentSet{{-4, 2}}, "he"},
		{"fully out of range", SegmentSet{{10, 20}}, ""},
		{"multiple", SegmentSet{{0, 2}, {3, 5}}, "helo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TextOf(buffer, tt.segs); got != tt.want {
				t.Errorf("TextOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCellSpans(t *testing.T) {
	c := TableCell{}
	r, cs := c.Spans()
	if r != 1 || cs != 1 {
		t.Errorf("zero-value spans = (%d, %d), want (1, 1)", r, cs)
	}
	c = TableCell{RowSpan: 2, ColSpan: 3}
	r, cs = c.Spans()
	if r != 2 || cs != 3 {
		t.Errorf("spans = (%d, %d), want (2, 3)", r, cs)
	}
}
