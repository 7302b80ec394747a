package chunk

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jmhart/docweave/extract"
	"github.com/jmhart/docweave/layout"
)

// chunkResult fabricates a successful result with the given local page
// count and one table anchored to local page 1.
func chunkResult(id, pages int) Result {
	data := &extract.Result{
		RawText: fmt.Sprintf("chunk %d text", id),
		Doc:     &layout.Document{Text: fmt.Sprintf("doc %d", id)},
	}
	for p := 1; p <= pages; p++ {
		data.Pages = append(data.Pages, extract.PageResult{PageNumber: p})
	}
	data.Tables = append(data.Tables, extract.TableResult{
		TableID:     "page_1_table_1",
		PageNumber:  1,
		TableNumber: 1,
	})
	data.Metadata = extract.Metadata{TotalPages: pages, Confidence: 0.9}
	return Result{ChunkID: id, Data: data}
}

func TestMergeRenumbersPages(t *testing.T) {
	// Local page counts [3, 2, 4], delivered out of order.
	results := []Result{chunkResult(2, 4), chunkResult(0, 3), chunkResult(1, 2)}

	merged, err := Merge(results)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	want := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	if len(merged.Pages) != len(want) {
		t.Fatalf("pages = %d, want %d", len(merged.Pages), len(want))
	}
	for i, p := range merged.Pages {
		if p.PageNumber != want[i] {
			t.Errorf("page %d numbered %d, want %d", i, p.PageNumber, want[i])
		}
	}

	if merged.Metadata.TotalPages != 9 {
		t.Errorf("total pages = %d", merged.Metadata.TotalPages)
	}
	if merged.Metadata.ChunksProcessed != 3 || merged.Metadata.ChunksFailed != 0 {
		t.Errorf("metadata = %+v", merged.Metadata)
	}
	if merged.Metadata.ExtractionMethod != "chunked_document_ai" {
		t.Errorf("method = %q", merged.Metadata.ExtractionMethod)
	}

	// Tables follow their chunk's global page offset: chunk 1's page 1
	// becomes page 4, chunk 2's becomes page 6.
	if len(merged.Tables) != 3 {
		t.Fatalf("tables = %d", len(merged.Tables))
	}
	wantTables := []struct {
		page int
		id   string
	}{
		{1, "page_1_table_1"},
		{4, "page_4_table_1"},
		{6, "page_6_table_1"},
	}
	for i, wt := range wantTables {
		if merged.Tables[i].PageNumber != wt.page || merged.Tables[i].TableID != wt.id {
			t.Errorf("table %d = page %d id %q, want page %d id %q",
				i, merged.Tables[i].PageNumber, merged.Tables[i].TableID, wt.page, wt.id)
		}
	}

	if merged.FullText != "chunk 0 text\n\nchunk 1 text\n\nchunk 2 text" {
		t.Errorf("full text = %q", merged.FullText)
	}

	// Layout documents retained in chunk order for rendering.
	if len(merged.Docs) != 3 || merged.Docs[0].Text != "doc 0" || merged.Docs[2].Text != "doc 2" {
		t.Errorf("docs out of order: %v", merged.Docs)
	}
}

func TestMergeSkipsFailedChunks(t *testing.T) {
	results := []Result{
		chunkResult(0, 3),
		{ChunkID: 1, Err: errors.New("timeout")},
		chunkResult(2, 2),
	}

	merged, err := Merge(results)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if merged.Metadata.TotalPages != 5 {
		t.Errorf("total pages = %d, want successful chunks only", merged.Metadata.TotalPages)
	}
	if merged.Metadata.ChunksProcessed != 3 {
		t.Errorf("chunks processed = %d, want 3", merged.Metadata.ChunksProcessed)
	}
	if merged.Metadata.ChunksFailed != 1 {
		t.Errorf("chunks failed = %d", merged.Metadata.ChunksFailed)
	}

	// Chunk 2's pages renumber directly after chunk 0's.
	if merged.Pages[3].PageNumber != 4 || merged.Pages[4].PageNumber != 5 {
		t.Errorf("pages after failed chunk = %d, %d",
			merged.Pages[3].PageNumber, merged.Pages[4].PageNumber)
	}
	if len(merged.Docs) != 2 {
		t.Errorf("docs = %d", len(merged.Docs))
	}
}

func TestMergeSuccessWithoutDataIsError(t *testing.T) {
	results := []Result{chunkResult(0, 1), {ChunkID: 1}}
	if _, err := Merge(results); !errors.Is(err, ErrMerge) {
		t.Fatalf("err = %v, want ErrMerge", err)
	}
}

func TestMergeAllFailed(t *testing.T) {
	results := []Result{
		{ChunkID: 0, Err: errors.New("a")},
		{ChunkID: 1, Err: errors.New("b")},
	}
	merged, err := Merge(results)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Metadata.TotalPages != 0 || merged.Metadata.ChunksFailed != 2 {
		t.Errorf("metadata = %+v", merged.Metadata)
	}
	if merged.Metadata.Confidence != 0 {
		t.Errorf("confidence = %v", merged.Metadata.Confidence)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	r := chunkResult(1, 2)
	results := []Result{chunkResult(0, 3), r}
	if _, err := Merge(results); err != nil {
		t.Fatal(err)
	}
	if r.Data.Pages[0].PageNumber != 1 {
		t.Errorf("input page renumbered in place: %d", r.Data.Pages[0].PageNumber)
	}
	if r.Data.Tables[0].PageNumber != 1 {
		t.Errorf("input table renumbered in place: %d", r.Data.Tables[0].PageNumber)
	}
}
