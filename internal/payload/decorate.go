// Package payload implements Phase 8 (Payload Decoration, spec.md
// §4.9): attaching node_id, sliced text, and LLM summaries to a
// finished tree according to the caller's requested options.
package payload

import (
	"fmt"
	"strings"

	"github.com/vectorless/pagetree/models"
)

// Decorate walks roots attaching text (and, when requested, node_id —
// node_id is normally already set by treebuild.Build, but this keeps
// the decoration step idempotent and usable standalone) per the three
// boolean switches of spec.md §4.9.
func Decorate(roots []*models.TreeNode, pages []*models.Page, addNodeID, addText bool) {
	byPage := make(map[int]*models.Page, len(pages))
	for _, p := range pages {
		byPage[p.PhysicalIndex] = p
	}

	counter := 0
	var walk func(n *models.TreeNode)
	walk = func(n *models.TreeNode) {
		if addNodeID && n.NodeID == "" {
			n.NodeID = fmt.Sprintf("%04d", counter)
		}
		counter++
		if addText {
			n.Text = SliceText(byPage, n.StartIndex, n.EndIndex)
		}
		for _, c := range n.Nodes {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
}

// SliceText concatenates the text of pages [start, end] (1-based
// inclusive), stripped of the <physical_index_N> boundary markers, per
// spec.md §4.9.
func SliceText(byPage map[int]*models.Page, start, end int) string {
	var b strings.Builder
	for p := start; p <= end; p++ {
		page, ok := byPage[p]
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(page.Text)
	}
	return b.String()
}
