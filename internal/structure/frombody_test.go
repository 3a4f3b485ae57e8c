package structure

import (
	"context"
	"testing"

	"github.com/vectorless/pagetree/internal/llmclient"
	"github.com/vectorless/pagetree/models"
)

func TestFromBody_SingleSegment(t *testing.T) {
	stub := &stubJSONProvider{responses: []string{
		`{"headings":[{"title":"Introduction","level":1,"physical_index":1},{"title":"Background","level":2,"physical_index":2}]}`,
	}}
	client := llmclient.New(stub, "test-model", 4, nil)

	pages := []*models.Page{
		{PhysicalIndex: 1, Text: "Introduction\nSome body text.", TokenEstimate: 10},
		{PhysicalIndex: 2, Text: "Background\nMore body text.", TokenEstimate: 10},
	}

	items, err := FromBody(context.Background(), client, pages, 0)
	if err != nil {
		t.Fatalf("FromBody: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Structure != "1" || items[1].Structure != "1.1" {
		t.Errorf("unexpected codes: %s, %s", items[0].Structure, items[1].Structure)
	}
}

func TestSegmentPages_RespectsBudget(t *testing.T) {
	pages := []*models.Page{
		{PhysicalIndex: 1, TokenEstimate: 600},
		{PhysicalIndex: 2, TokenEstimate: 600},
		{PhysicalIndex: 3, TokenEstimate: 600},
	}
	segments := segmentPages(pages, 1000)
	if len(segments) != 3 {
		t.Fatalf("expected 3 single-page segments under a tight budget, got %d", len(segments))
	}
}

func TestSegmentPages_NeverSplitsASinglePage(t *testing.T) {
	pages := []*models.Page{{PhysicalIndex: 1, TokenEstimate: 50000}}
	segments := segmentPages(pages, 100)
	if len(segments) != 1 || len(segments[0]) != 1 {
		t.Fatalf("expected the oversized page to stand alone in its own segment, got %v", segments)
	}
}

func TestReconcileSegmentBoundary_DropsDuplicate(t *testing.T) {
	existing := []bodyHeading{{Title: "Methods", Level: 1, PhysicalIndex: 10}}
	next := []bodyHeading{{Title: "Methods", Level: 1, PhysicalIndex: 10}, {Title: "Results", Level: 1, PhysicalIndex: 11}}

	got := reconcileSegmentBoundary(existing, next)
	if len(got) != 1 || got[0].Title != "Results" {
		t.Errorf("expected duplicate boundary heading dropped, got %+v", got)
	}
}

func TestHeadingsToItems_ClampsLevelJump(t *testing.T) {
	headings := []bodyHeading{
		{Title: "Chapter 1", Level: 1, PhysicalIndex: 1},
		{Title: "Deeply Nested", Level: 4, PhysicalIndex: 2}, // should clamp to level 2
	}
	items := headingsToItems(headings, "")
	if items[1].Level != 2 {
		t.Errorf("expected clamped level 2, got %d", items[1].Level)
	}
}
