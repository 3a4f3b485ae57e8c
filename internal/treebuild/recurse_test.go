package treebuild

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/vectorless/pagetree/internal/llmclient"
	"github.com/vectorless/pagetree/internal/logger"
	"github.com/vectorless/pagetree/models"
)

type cannedProvider struct {
	responses []string
	i         int
}

func (p *cannedProvider) Complete(context.Context, string, string, string, map[string]any) (string, error) {
	if p.i >= len(p.responses) {
		return `{"headings":[]}`, nil
	}
	r := p.responses[p.i]
	p.i++
	return r, nil
}

func TestPagesInRange(t *testing.T) {
	pages := []*models.Page{
		{PhysicalIndex: 1}, {PhysicalIndex: 2}, {PhysicalIndex: 3}, {PhysicalIndex: 4},
	}
	got := pagesInRange(pages, 2, 3)
	if len(got) != 2 || got[0].PhysicalIndex != 2 || got[1].PhysicalIndex != 3 {
		t.Errorf("pagesInRange() = %+v", got)
	}
}

func TestGrowToChildren(t *testing.T) {
	n := &models.TreeNode{
		StartIndex: 12, EndIndex: 15,
		Nodes: []*models.TreeNode{{StartIndex: 10, EndIndex: 20}},
	}
	growToChildren(n)
	if n.StartIndex != 10 || n.EndIndex != 20 {
		t.Errorf("growToChildren() = [%d,%d], want [10,20] (expanded to cover child)", n.StartIndex, n.EndIndex)
	}
}

func TestGrowToChildren_NeverShrinksBelowChild(t *testing.T) {
	n := &models.TreeNode{
		StartIndex: 20, EndIndex: 25,
		Nodes: []*models.TreeNode{{StartIndex: 20, EndIndex: 22}, {StartIndex: 23, EndIndex: 30}},
	}
	growToChildren(n)
	if n.StartIndex != 20 || n.EndIndex != 30 {
		t.Errorf("growToChildren() = [%d,%d], want [20,30]", n.StartIndex, n.EndIndex)
	}
}

func TestExpandOversized_SkipsNodesWithinBudget(t *testing.T) {
	client := llmclient.New(&cannedProvider{}, "test-model", 4, logger.NewNoOpLogger())
	pages := []*models.Page{{PhysicalIndex: 1, Text: "x"}, {PhysicalIndex: 2, Text: "y"}}
	root := &models.TreeNode{Title: "Chapter", StartIndex: 1, EndIndex: 2}

	err := ExpandOversized(context.Background(), client, pages, []*models.TreeNode{root}, map[*models.TreeNode]string{root: "1"}, 10, 20000, 100, 2, 0)
	if err != nil {
		t.Fatalf("ExpandOversized() error = %v", err)
	}
	if len(root.Nodes) != 0 {
		t.Errorf("expected no children for a node within budget, got %d", len(root.Nodes))
	}
}

func TestExpandOversized_ExpandsOversizedLeaf(t *testing.T) {
	resp, _ := json.Marshal(map[string]any{
		"headings": []map[string]any{
			{"title": "Sub A", "level": 1, "physical_index": 1},
			{"title": "Sub B", "level": 1, "physical_index": 2},
		},
	})
	client := llmclient.New(&cannedProvider{responses: []string{string(resp)}}, "test-model", 4, logger.NewNoOpLogger())

	pages := make([]*models.Page, 0, 20)
	for i := 1; i <= 20; i++ {
		pages = append(pages, &models.Page{PhysicalIndex: i, Text: "Sub A\nSub B\nbody text"})
	}
	root := &models.TreeNode{Title: "Chapter", StartIndex: 1, EndIndex: 20}

	err := ExpandOversized(context.Background(), client, pages, []*models.TreeNode{root}, map[*models.TreeNode]string{root: "1"}, 10, 20000, 100, 20, 0)
	if err != nil {
		t.Fatalf("ExpandOversized() error = %v", err)
	}
	if len(root.Nodes) == 0 {
		t.Fatal("expected the oversized leaf to gain children")
	}
}

func TestExpandOversized_SkipsEntirelyBeyondLargePDFThreshold(t *testing.T) {
	client := llmclient.New(&cannedProvider{}, "test-model", 4, logger.NewNoOpLogger())
	pages := make([]*models.Page, 0, 20)
	for i := 1; i <= 20; i++ {
		pages = append(pages, &models.Page{PhysicalIndex: i, Text: "Sub A\nSub B\nbody text"})
	}
	root := &models.TreeNode{Title: "Chapter", StartIndex: 1, EndIndex: 20}

	err := ExpandOversized(context.Background(), client, pages, []*models.TreeNode{root}, map[*models.TreeNode]string{root: "1"}, 10, 20000, 100, 500, 200)
	if err != nil {
		t.Fatalf("ExpandOversized() error = %v", err)
	}
	if len(root.Nodes) != 0 {
		t.Errorf("expected recursion disabled beyond large_pdf_threshold, got %d children", len(root.Nodes))
	}
}
