// Package layout models the structured page-layout document returned by
// the external document-understanding service: a single flat text buffer
// plus pages of layout elements (blocks, paragraphs, lines, tables, form
// fields) that reference it by character-offset segments, each optionally
// carrying a bounding polygon.
package layout

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Document is one structured layout document. Text is the sole owner of
// the document's extracted text; every element borrows from it via
// text-anchor segments.
type Document struct {
	Text           string   `json:"text"`
	Pages          []Page   `json:"pages"`
	Entities       []Entity `json:"entities,omitempty"`
	DocumentSchema *Schema  `json:"documentSchema,omitempty"`
}

// Schema carries document-level metadata from the service's processor.
type Schema struct {
	DisplayName string `json:"displayName,omitempty"`
}

// Page holds the layout elements detected on a single page.
type Page struct {
	PageNumber int         `json:"pageNumber,omitempty"`
	Blocks     []Layout    `json:"blocks,omitempty"`
	Paragraphs []Layout    `json:"paragraphs,omitempty"`
	Lines      []Layout    `json:"lines,omitempty"`
	Tables     []Table     `json:"tables,omitempty"`
	FormFields []FormField `json:"formFields,omitempty"`
}

// TextContainers returns the page's preferred text granularity: blocks if
// present, else paragraphs, else lines. Exactly one granularity is chosen
// so the same text is never emitted at multiple levels.
func (p *Page) TextContainers() []Layout {
	switch {
	case len(p.Blocks) > 0:
		return p.Blocks
	case len(p.Paragraphs) > 0:
		return p.Paragraphs
	default:
		return p.Lines
	}
}

// Layout is the common layout element: a text anchor into the document
// buffer and optional geometry. The service nests it under a "layout" key
// for blocks, paragraphs, lines, and table cells but inlines it for form
// field names/values; UnmarshalJSON accepts both shapes.
type Layout struct {
	TextAnchor   *TextAnchor   `json:"textAnchor,omitempty"`
	BoundingPoly *BoundingPoly `json:"boundingPoly,omitempty"`
	Confidence   float64       `json:"confidence,omitempty"`
}

type rawLayout struct {
	TextAnchor   *TextAnchor   `json:"textAnchor"`
	BoundingPoly *BoundingPoly `json:"boundingPoly"`
	Confidence   float64       `json:"confidence"`
}

// UnmarshalJSON decodes either a bare layout object or a wrapper object
// holding one under a "layout" key.
func (l *Layout) UnmarshalJSON(data []byte) error {
	var aux struct {
		rawLayout
		Layout *rawLayout `json:"layout"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	raw := aux.rawLayout
	if aux.Layout != nil {
		raw = *aux.Layout
	}
	l.TextAnchor = raw.TextAnchor
	l.BoundingPoly = raw.BoundingPoly
	l.Confidence = raw.Confidence
	return nil
}

// Segments returns the layout's normalized text segments. A nil layout or
// absent anchor yields nil.
func (l *Layout) Segments() SegmentSet {
	if l == nil || l.TextAnchor == nil {
		return nil
	}
	return l.TextAnchor.Segments()
}

// Box returns the layout's normalized bounding box, or EmptyBox when the
// layout carries no geometry.
func (l *Layout) Box() Box {
	if l == nil {
		return EmptyBox()
	}
	return BoxFromPoly(l.BoundingPoly)
}

// TextAnchor references spans of the document text buffer.
type TextAnchor struct {
	TextSegments []TextSegment `json:"textSegments,omitempty"`
}

// Segments converts the anchor's wire segments into a SegmentSet, dropping
// empty or reversed ranges.
func (a *TextAnchor) Segments() SegmentSet {
	if a == nil || len(a.TextSegments) == 0 {
		return nil
	}
	segs := make(SegmentSet, 0, len(a.TextSegments))
	for _, ts := range a.TextSegments {
		s := Segment{Start: int(ts.StartIndex), End: int(ts.EndIndex)}
		if s.Empty() {
			continue
		}
		segs = append(segs, s)
	}
	return segs
}

// TextSegment is a single wire-format offset pair.
type TextSegment struct {
	StartIndex Index `json:"startIndex,omitempty"`
	EndIndex   Index `json:"endIndex,omitempty"`
}

// Index is a character offset into the text buffer. The service encodes
// int64 offsets as JSON strings; plain numbers are accepted too.
type Index int64

// UnmarshalJSON accepts both "42" and 42.
func (i *Index) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*i = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("layout: invalid text index %q: %w", s, err)
	}
	*i = Index(v)
	return nil
}

// BoundingPoly is the geometry attached to a layout element, either in
// normalized unit-square coordinates or raw pixel vertices.
type BoundingPoly struct {
	Vertices           []Vertex `json:"vertices,omitempty"`
	NormalizedVertices []Vertex `json:"normalizedVertices,omitempty"`
}

// Vertex is a single polygon point.
type Vertex struct {
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
}

// Table is a detected table: ordered header rows followed by body rows.
type Table struct {
	Layout     *Layout    `json:"layout,omitempty"`
	HeaderRows []TableRow `json:"headerRows,omitempty"`
	BodyRows   []TableRow `json:"bodyRows,omitempty"`
}

// Rows returns header rows followed by body rows.
func (t *Table) Rows() []TableRow {
	rows := make([]TableRow, 0, len(t.HeaderRows)+len(t.BodyRows))
	rows = append(rows, t.HeaderRows...)
	rows = append(rows, t.BodyRows...)
	return rows
}

// TableRow is one ordered row of cells.
type TableRow struct {
	Cells []TableCell `json:"cells,omitempty"`
}

// TableCell is a single cell. RowSpan/ColSpan of zero mean 1; any span
// greater than 1 marks the containing table as irregular.
type TableCell struct {
	Layout  *Layout `json:"layout,omitempty"`
	RowSpan int     `json:"rowSpan,omitempty"`
	ColSpan int     `json:"colSpan,omitempty"`
}

// Spans returns the effective row and column spans, defaulting to 1.
func (c *TableCell) Spans() (rowSpan, colSpan int) {
	rowSpan, colSpan = c.RowSpan, c.ColSpan
	if rowSpan < 1 {
		rowSpan = 1
	}
	if colSpan < 1 {
		colSpan = 1
	}
	return rowSpan, colSpan
}

// Entity is a document-level extracted entity (invoice number, date, ...).
type Entity struct {
	Type        string      `json:"type,omitempty"`
	MentionText string      `json:"mentionText,omitempty"`
	Confidence  float64     `json:"confidence,omitempty"`
	TextAnchor  *TextAnchor `json:"textAnchor,omitempty"`
}

// FormField is a detected (name, value) pair.
type FormField struct {
	FieldName  *Layout `json:"fieldName,omitempty"`
	FieldValue *Layout `json:"fieldValue,omitempty"`
}

// Decode parses a structured layout document from JSON. Both a top-level
// document and a {"document": {...}} wrapper are accepted.
func Decode(data []byte) (*Document, error) {
	var wrapper struct {
		Document json.RawMessage `json:"document"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && len(wrapper.Document) > 0 {
		data = wrapper.Document
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("layout: decoding document: %w", err)
	}
	return &doc, nil
}
