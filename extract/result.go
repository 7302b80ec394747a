package extract

import (
	"fmt"
	"strings"

	"github.com/jmhart/docweave/layout"
)

// Result is the structured extraction result for one document (or one
// chunk of a larger document): per-page text with element geometry,
// flattened tables, and document-level entities and form fields.
type Result struct {
	Pages          []PageResult   `json:"pages"`
	Tables         []TableResult  `json:"tables"`
	Metadata       Metadata       `json:"metadata"`
	RawText        string         `json:"raw_text"`
	StructuredData StructuredData `json:"structured_data"`

	// Doc is the layout document the result was projected from. It is
	// retained for markdown rendering and never serialized.
	Doc *layout.Document `json:"-"`
}

// PageResult is the flattened text content of one page.
type PageResult struct {
	PageNumber   int           `json:"page_number"`
	Text         string        `json:"text"`
	TextElements []TextElement `json:"text_elements"`
	WordCount    int           `json:"word_count"`
	Confidence   float64       `json:"confidence"`
}

// TextElement is one text container with its position on the page.
type TextElement struct {
	Text        string      `json:"text"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"bounding_box"`
}

// BoundingBox is a normalized rectangle in result-wire shape.
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// TableResult is one flattened table.
type TableResult struct {
	TableID     string      `json:"table_id"`
	PageNumber  int         `json:"page_number"`
	TableNumber int         `json:"table_number"`
	Headers     []string    `json:"headers"`
	Data        [][]string  `json:"data"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"bounding_box"`
	RowCount    int         `json:"row_count"`
	ColumnCount int         `json:"column_count"`
}

// Metadata summarizes one extraction run.
type Metadata struct {
	TotalPages       int     `json:"total_pages"`
	TotalTables      int     `json:"total_tables"`
	ExtractionMethod string  `json:"extraction_method"`
	Confidence       float64 `json:"confidence"`
	ChunksProcessed  int     `json:"chunks_processed,omitempty"`
	ChunksFailed     int     `json:"chunks_failed,omitempty"`
}

// StructuredData holds the entity and form-field projections.
type StructuredData struct {
	Entities   []EntityResult    `json:"entities"`
	FormFields []FormFieldResult `json:"form_fields"`
}

// EntityResult is one document-level entity.
type EntityResult struct {
	Text        string  `json:"text"`
	Type        string  `json:"type"`
	Confidence  float64 `json:"confidence"`
	MentionText string  `json:"mention_text"`
}

// FormFieldResult is one (name, value) form-field pair.
type FormFieldResult struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// ConfidenceFunc computes a document-level confidence score. The service
// rarely scores whole documents, so the default is a constant; callers
// with processor-specific scoring plug their own in.
type ConfidenceFunc func(doc *layout.Document) float64

// ConstantConfidence returns a ConfidenceFunc that always reports v.
func ConstantConfidence(v float64) ConfidenceFunc {
	return func(*layout.Document) float64 { return v }
}

const tableConfidence = 0.9

var defaultConfidence = ConstantConfidence(0.95)

// ParseDocument projects a layout document into a Result. A nil
// confidence hook falls back to the constant default.
func ParseDocument(doc *layout.Document, confidence ConfidenceFunc) *Result {
	if confidence == nil {
		confidence = defaultConfidence
	}

	res := &Result{Doc: doc}

	var allText []string
	for i := range doc.Pages {
		page := parsePage(doc, &doc.Pages[i], i+1)
		res.Pages = append(res.Pages, page)
		allText = append(allText, page.Text)

		res.Tables = append(res.Tables, parseTables(doc, &doc.Pages[i], i+1)...)
	}
	res.RawText = strings.Join(allText, "\n\n")

	res.StructuredData = StructuredData{
		Entities:   parseEntities(doc),
		FormFields: parseFormFields(doc),
	}

	res.Metadata = Metadata{
		TotalPages:       len(doc.Pages),
		TotalTables:      len(res.Tables),
		ExtractionMethod: "document_ai",
		Confidence:       confidence(doc),
	}
	return res
}

func parsePage(doc *layout.Document, page *layout.Page, number int) PageResult {
	var sb strings.Builder
	var elements []TextElement

	for _, container := range page.TextContainers() {
		text := strings.TrimSpace(doc.TextFor(&container))
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')

		conf := container.Confidence
		if conf == 0 {
			conf = 1.0
		}
		elements = append(elements, TextElement{
			Text:        text,
			Confidence:  conf,
			BoundingBox: boundingBox(container.Box()),
		})
	}

	pageText := strings.TrimSpace(sb.String())
	return PageResult{
		PageNumber:   number,
		Text:         pageText,
		TextElements: elements,
		WordCount:    len(strings.Fields(pageText)),
		Confidence:   pageConfidence(elements),
	}
}

func parseTables(doc *layout.Document, page *layout.Page, pageNumber int) []TableResult {
	var tables []TableResult
	for i := range page.Tables {
		t := &page.Tables[i]

		var headers []string
		for _, row := range t.HeaderRows {
			for j := range row.Cells {
				headers = append(headers, strings.TrimSpace(doc.TextFor(row.Cells[j].Layout)))
			}
		}

		var data [][]string
		for _, row := range t.BodyRows {
			cells := make([]string, 0, len(row.Cells))
			for j := range row.Cells {
				cells = append(cells, strings.TrimSpace(doc.TextFor(row.Cells[j].Layout)))
			}
			data = append(data, cells)
		}

		tables = append(tables, TableResult{
			TableID:     fmt.Sprintf("page_%d_table_%d", pageNumber, i+1),
			PageNumber:  pageNumber,
			TableNumber: i + 1,
			Headers:     headers,
			Data:        data,
			Confidence:  tableConfidence,
			BoundingBox: boundingBox(t.Layout.Box()),
			RowCount:    len(data),
			ColumnCount: len(headers),
		})
	}
	return tables
}

func parseEntities(doc *layout.Document) []EntityResult {
	entities := make([]EntityResult, 0, len(doc.Entities))
	for _, e := range doc.Entities {
		entities = append(entities, EntityResult{
			Text:        layout.TextOf(doc.Text, e.TextAnchor.Segments()),
			Type:        e.Type,
			Confidence:  e.Confidence,
			MentionText: e.MentionText,
		})
	}
	return entities
}

func parseFormFields(doc *layout.Document) []FormFieldResult {
	var fields []FormFieldResult
	for i := range doc.Pages {
		for _, f := range doc.Pages[i].FormFields {
			name := strings.TrimSpace(doc.TextFor(f.FieldName))
			value := strings.TrimSpace(doc.TextFor(f.FieldValue))
			if name == "" && value == "" {
				continue
			}
			conf := 1.0
			if f.FieldValue != nil && f.FieldValue.Confidence > 0 {
				conf = f.FieldValue.Confidence
			}
			fields = append(fields, FormFieldResult{Name: name, Value: value, Confidence: conf})
		}
	}
	return fields
}

func pageConfidence(elements []TextElement) float64 {
	if len(elements) == 0 {
		return 0
	}
	var total float64
	for _, el := range elements {
		total += el.Confidence
	}
	return total / float64(len(elements))
}

func boundingBox(b layout.Box) BoundingBox {
	if b.IsEmpty() {
		return BoundingBox{}
	}
	return BoundingBox{X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: b.Y2}
}
