package gapfill

import (
	"context"
	"fmt"
	"strings"

	"github.com/vectorless/pagetree/internal/llmclient"
	"github.com/vectorless/pagetree/internal/pagemap"
	"github.com/vectorless/pagetree/internal/pdfsource"
	"github.com/vectorless/pagetree/internal/structure"
	"github.com/vectorless/pagetree/internal/tokenest"
	"github.com/vectorless/pagetree/models"
)

// unindexedTitle names the single-leaf shortcut for a gap not worth a
// sub-tree (spec.md §4.8's "skip conditions", resolved per spec.md §9's
// own suggested safe default).
const unindexedTitle = "Unindexed content"

var gapSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{"type": "string"},
					"level": map[string]any{"type": "integer"},
					"page":  map[string]any{"type": "integer"},
				},
				"required":             []string{"title", "level", "page"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"items"},
	"additionalProperties": false,
}

type gapLLMItem struct {
	Title string `json:"title"`
	Level int    `json:"level"`
	Page  int    `json:"page"`
}

type gapLLMResponse struct {
	Items []gapLLMItem `json:"items"`
}

// Fill produces TreeNodes for every detected gap and appends them to
// roots in page order, each marked IsGapFill. pages must contain every
// page in the document (used to slice each gap's text).
func Fill(ctx context.Context, client *llmclient.Client, roots []*models.TreeNode, pages []*models.Page, totalPages int) ([]*models.TreeNode, []Gap) {
	gaps := FindGaps(roots, totalPages)
	if len(gaps) == 0 {
		return roots, gaps
	}

	byPage := make(map[int]*models.Page, len(pages))
	for _, p := range pages {
		byPage[p.PhysicalIndex] = p
	}

	for _, g := range gaps {
		node := fillGap(ctx, client, g, byPage)
		roots = insertInOrder(roots, node)
	}
	return roots, gaps
}

// fillGap handles a single gap: the single-page/blank shortcut, or an
// LLM-driven sub-tree over the gap's text (spec.md §4.8's "Fill").
func fillGap(ctx context.Context, client *llmclient.Client, g Gap, byPage map[int]*models.Page) *models.TreeNode {
	slice := gapPages(g, byPage)

	if g.Start == g.End || allBlank(slice) {
		return unindexedLeaf(g, slice)
	}

	wrapped := pdfsource.WrapWithMarkers(slice)
	prompt := fmt.Sprintf(`The following pages of a document were not covered by any section of its table of contents. Propose a short table of contents for just this slice: a JSON array of {title, level, page} entries (level 1 = top level, page = the physical_index it belongs to). If there's truly nothing structural here, return an empty array. Respond with json.

%s`, wrapped)

	var resp gapLLMResponse
	if err := llmclient.CallJSON(ctx, client, "gap_fill", tokenest.Estimate(wrapped), "", prompt, gapSchema, &resp); err != nil || len(resp.Items) == 0 {
		return unindexedLeaf(g, slice)
	}

	items := gapItemsToTOCItems(resp.Items)
	mapped := pagemap.MapPages(items, slice)
	node := &models.TreeNode{
		Title:      firstNonEmptyLine(slice),
		StartIndex: g.Start,
		EndIndex:   g.End,
		IsGapFill:  true,
	}
	node.Nodes = gapChildren(mapped, g)
	if len(node.Nodes) == 1 && node.Nodes[0].StartIndex == g.Start && node.Nodes[0].EndIndex == g.End {
		return node.Nodes[0]
	}
	return node
}

func gapItemsToTOCItems(items []gapLLMItem) []models.TOCItem {
	gen := structure.NewCodeGenerator()
	out := make([]models.TOCItem, 0, len(items))
	for i, it := range items {
		level := it.Level
		if level < 1 {
			level = 1
		}
		toc := models.TOCItem{
			Structure: gen.Next(level),
			Title:     strings.TrimSpace(it.Title),
			Level:     level,
			ListIndex: i,
		}
		if it.Page > 0 {
			toc.PhysicalIndex = it.Page
			toc.HasPage = true
		}
		out = append(out, toc)
	}
	return out
}

// gapChildren builds a flat TreeNode list from mapped gap items, each
// spanning to the next item's page (or the gap's end for the last),
// all clamped into the gap and marked IsGapFill.
func gapChildren(items []models.TOCItem, g Gap) []*models.TreeNode {
	out := make([]*models.TreeNode, 0, len(items))
	for i, it := range items {
		start := it.PhysicalIndex
		if !it.HasPage || start < g.Start {
			start = g.Start
		}
		end := g.End
		if i+1 < len(items) && items[i+1].HasPage && items[i+1].PhysicalIndex > start {
			end = items[i+1].PhysicalIndex - 1
		}
		if end > g.End {
			end = g.End
		}
		if end < start {
			end = start
		}
		out = append(out, &models.TreeNode{
			Title:      it.Title,
			StartIndex: start,
			EndIndex:   end,
			IsGapFill:  true,
		})
	}
	return out
}

func unindexedLeaf(g Gap, slice []*models.Page) *models.TreeNode {
	title := unindexedTitle
	if line := firstNonEmptyLine(slice); line != "" {
		title = line
	}
	return &models.TreeNode{
		Title:      title,
		StartIndex: g.Start,
		EndIndex:   g.End,
		IsGapFill:  true,
	}
}

func gapPages(g Gap, byPage map[int]*models.Page) []*models.Page {
	var out []*models.Page
	for p := g.Start; p <= g.End; p++ {
		if page := byPage[p]; page != nil {
			out = append(out, page)
		}
	}
	return out
}

func allBlank(pages []*models.Page) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return false
		}
	}
	return true
}

func firstNonEmptyLine(pages []*models.Page) string {
	for _, p := range pages {
		for _, line := range strings.Split(p.Text, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// insertInOrder inserts node into roots keeping roots sorted by
// StartIndex (spec.md §4.8's "append them to the root in order").
func insertInOrder(roots []*models.TreeNode, node *models.TreeNode) []*models.TreeNode {
	i := 0
	for i < len(roots) && roots[i].StartIndex < node.StartIndex {
		i++
	}
	out := make([]*models.TreeNode, 0, len(roots)+1)
	out = append(out, roots[:i]...)
	out = append(out, node)
	out = append(out, roots[i:]...)
	return out
}
