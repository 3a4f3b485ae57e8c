package treebuild

import (
	"testing"

	"github.com/vectorless/pagetree/models"
)

func item(structureCode, title string, level, page int) models.TOCItem {
	return models.TOCItem{Structure: structureCode, Title: title, Level: level, PhysicalIndex: page, HasPage: page > 0}
}

func TestBuild_FlatSiblings(t *testing.T) {
	items := []models.TOCItem{
		item("1", "Introduction", 1, 1),
		item("2", "Methods", 1, 10),
		item("3", "Results", 1, 20),
	}
	roots := Build(items, 30)
	if len(roots) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(roots))
	}
	if roots[0].EndIndex != 9 {
		t.Errorf("Introduction.EndIndex = %d, want 9", roots[0].EndIndex)
	}
	if roots[2].EndIndex != 30 {
		t.Errorf("Results.EndIndex (last root) = %d, want 30", roots[2].EndIndex)
	}
}

func TestBuild_Nesting(t *testing.T) {
	items := []models.TOCItem{
		item("1", "Chapter 1", 1, 1),
		item("1.1", "Section 1.1", 2, 1),
		item("1.2", "Section 1.2", 2, 5),
		item("2", "Chapter 2", 1, 10),
	}
	roots := Build(items, 20)
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	ch1 := roots[0]
	if len(ch1.Nodes) != 2 {
		t.Fatalf("expected Chapter 1 to have 2 children, got %d", len(ch1.Nodes))
	}
	if ch1.Nodes[1].EndIndex != 9 {
		t.Errorf("Section 1.2.EndIndex = %d, want 9 (bounded by Chapter 2's start)", ch1.Nodes[1].EndIndex)
	}
	if ch1.EndIndex != 9 {
		t.Errorf("Chapter 1.EndIndex = %d, want 9 (expanded to cover Section 1.2)", ch1.EndIndex)
	}
}

func TestBuild_ParentExpandsToChildStart(t *testing.T) {
	items := []models.TOCItem{
		item("1", "Chapter 1", 1, 5),
		item("1.1", "Section 1.1", 2, 3), // noisy: child maps earlier than its own parent
	}
	roots := Build(items, 20)
	// roots[0] is the Preface synthesised for pages 1-2.
	if len(roots) != 2 {
		t.Fatalf("expected Preface + Chapter 1, got %d roots", len(roots))
	}
	if roots[1].StartIndex != 3 {
		t.Errorf("Chapter 1.StartIndex = %d, want 3 (expanded down to its child)", roots[1].StartIndex)
	}
}

func TestBuild_AppearStartSharesPage(t *testing.T) {
	items := []models.TOCItem{
		{Structure: "1", Title: "A", Level: 1, PhysicalIndex: 1, HasPage: true},
		{Structure: "2", Title: "B", Level: 1, PhysicalIndex: 5, HasPage: true, AppearStart: true},
	}
	roots := Build(items, 10)
	if roots[0].EndIndex != 5 {
		t.Errorf("A.EndIndex = %d, want 5 (shares the page B starts mid-way through)", roots[0].EndIndex)
	}
}

func TestBuild_PrefaceSynthesized(t *testing.T) {
	items := []models.TOCItem{
		item("1", "Introduction", 1, 4),
	}
	roots := Build(items, 10)
	if len(roots) != 2 {
		t.Fatalf("expected preface + 1 root, got %d", len(roots))
	}
	if roots[0].Title != prefaceTitle || roots[0].StartIndex != 1 || roots[0].EndIndex != 3 {
		t.Errorf("unexpected preface node: %+v", roots[0])
	}
}

func TestBuild_NoPrefaceWhenFirstRootStartsAtOne(t *testing.T) {
	items := []models.TOCItem{item("1", "Introduction", 1, 1)}
	roots := Build(items, 10)
	if len(roots) != 1 {
		t.Fatalf("expected no synthesized preface, got %d roots", len(roots))
	}
}

func TestBuild_NodeIDsAreSequentialPreOrder(t *testing.T) {
	items := []models.TOCItem{
		item("1", "Chapter 1", 1, 1),
		item("1.1", "Section 1.1", 2, 2),
		item("2", "Chapter 2", 1, 5),
	}
	roots := Build(items, 10)
	if roots[0].NodeID != "0000" {
		t.Errorf("roots[0].NodeID = %q, want 0000", roots[0].NodeID)
	}
	if roots[0].Nodes[0].NodeID != "0001" {
		t.Errorf("roots[0].Nodes[0].NodeID = %q, want 0001", roots[0].Nodes[0].NodeID)
	}
	if roots[1].NodeID != "0002" {
		t.Errorf("roots[1].NodeID = %q, want 0002", roots[1].NodeID)
	}
}

func TestBuild_DepthCapLiftsDeepNodes(t *testing.T) {
	items := []models.TOCItem{
		item("1", "L1", 1, 1),
		item("1.1", "L2", 2, 1),
		item("1.1.1", "L3", 3, 1),
		item("1.1.1.1", "L4", 4, 1),
		item("1.1.1.1.1", "L5", 5, 2), // one level past the cap
	}
	roots := Build(items, 10)
	l4 := roots[0].Nodes[0].Nodes[0].Nodes[0]
	if l4.Title != "L4" {
		t.Fatalf("expected to reach L4 at depth 4, got %q", l4.Title)
	}
	if len(l4.Nodes) != 1 || l4.Nodes[0].Title != "L5" {
		t.Fatalf("expected L5 lifted into L4's children, got %+v", l4.Nodes)
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	if roots := Build(nil, 10); roots != nil {
		t.Errorf("expected nil roots for empty input, got %+v", roots)
	}
}

func TestStatistics(t *testing.T) {
	items := []models.TOCItem{
		item("1", "Chapter 1", 1, 1),
		item("1.1", "Section 1.1", 2, 2),
		item("2", "Chapter 2", 1, 5),
	}
	roots := Build(items, 10)
	stats := Statistics(roots)
	if stats.RootNodes != 2 {
		t.Errorf("RootNodes = %d, want 2", stats.RootNodes)
	}
	if stats.TotalNodes != 3 {
		t.Errorf("TotalNodes = %d, want 3", stats.TotalNodes)
	}
	if stats.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", stats.MaxDepth)
	}
}
