package payload

import (
	"testing"

	"github.com/vectorless/pagetree/models"
)

func TestSliceText(t *testing.T) {
	byPage := map[int]*models.Page{
		1: {PhysicalIndex: 1, Text: "one"},
		2: {PhysicalIndex: 2, Text: "two"},
		3: {PhysicalIndex: 3, Text: "three"},
	}
	got := SliceText(byPage, 1, 3)
	want := "one\ntwo\nthree"
	if got != want {
		t.Errorf("SliceText() = %q, want %q", got, want)
	}
}

func TestSliceText_SkipsMissingPages(t *testing.T) {
	byPage := map[int]*models.Page{1: {PhysicalIndex: 1, Text: "one"}}
	got := SliceText(byPage, 1, 3)
	if got != "one" {
		t.Errorf("SliceText() = %q, want %q", got, "one")
	}
}

func TestDecorate_AttachesText(t *testing.T) {
	pages := []*models.Page{
		{PhysicalIndex: 1, Text: "Intro text"},
		{PhysicalIndex: 2, Text: "Methods text"},
	}
	roots := []*models.TreeNode{
		{Title: "Intro", StartIndex: 1, EndIndex: 1},
		{Title: "Methods", StartIndex: 2, EndIndex: 2},
	}
	Decorate(roots, pages, false, true)
	if roots[0].Text != "Intro text" {
		t.Errorf("roots[0].Text = %q, want %q", roots[0].Text, "Intro text")
	}
	if roots[1].Text != "Methods text" {
		t.Errorf("roots[1].Text = %q, want %q", roots[1].Text, "Methods text")
	}
}

func TestDecorate_AssignsNodeIDsWhenMissing(t *testing.T) {
	roots := []*models.TreeNode{
		{Title: "A", Nodes: []*models.TreeNode{{Title: "A.1"}}},
		{Title: "B"},
	}
	Decorate(roots, nil, true, false)
	if roots[0].NodeID != "0000" || roots[0].Nodes[0].NodeID != "0001" || roots[1].NodeID != "0002" {
		t.Errorf("unexpected node ids: %s %s %s", roots[0].NodeID, roots[0].Nodes[0].NodeID, roots[1].NodeID)
	}
}

func TestDecorate_LeavesExistingNodeID(t *testing.T) {
	roots := []*models.TreeNode{{Title: "A", NodeID: "0042"}}
	Decorate(roots, nil, true, false)
	if roots[0].NodeID != "0042" {
		t.Errorf("expected existing node_id preserved, got %q", roots[0].NodeID)
	}
}
