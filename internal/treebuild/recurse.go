package treebuild

import (
	"context"

	"github.com/vectorless/pagetree/internal/llmclient"
	"github.com/vectorless/pagetree/internal/pagemap"
	"github.com/vectorless/pagetree/internal/structure"
	"github.com/vectorless/pagetree/internal/verify"
	"github.com/vectorless/pagetree/models"
)

// ExpandOversized implements spec.md §4.7's "Optional recursion": a leaf
// node whose page span exceeds maxPagesPerNode is hand back to
// Phases 3-6 with its own page text as input, producing children in
// place. Disabled entirely when the caller honours Options.NoRecursive
// by never calling this function, and also disabled — independent of
// NoRecursive — once totalPages exceeds largePDFThreshold (the
// SUPPLEMENTED FEATURES large-PDF auto-downshift; pass largePDFThreshold
// 0 to skip this check).
func ExpandOversized(ctx context.Context, client *llmclient.Client, allPages []*models.Page, roots []*models.TreeNode, codes map[*models.TreeNode]string, maxPagesPerNode, segmentTokenBudget, maxVerifyCount, totalPages, largePDFThreshold int) error {
	if largePDFThreshold > 0 && totalPages > largePDFThreshold {
		return nil
	}
	for _, r := range roots {
		if err := expandNode(ctx, client, allPages, r, codes, maxPagesPerNode, segmentTokenBudget, maxVerifyCount, totalPages, largePDFThreshold); err != nil {
			return err
		}
	}
	return nil
}

func expandNode(ctx context.Context, client *llmclient.Client, allPages []*models.Page, node *models.TreeNode, codes map[*models.TreeNode]string, maxPagesPerNode, segmentTokenBudget, maxVerifyCount, totalPages, largePDFThreshold int) error {
	if len(node.Nodes) > 0 {
		for _, c := range node.Nodes {
			if err := expandNode(ctx, client, allPages, c, codes, maxPagesPerNode, segmentTokenBudget, maxVerifyCount, totalPages, largePDFThreshold); err != nil {
				return err
			}
		}
		return nil
	}

	if span := node.EndIndex - node.StartIndex + 1; span <= maxPagesPerNode {
		return nil
	}

	slice := pagesInRange(allPages, node.StartIndex, node.EndIndex)
	if len(slice) == 0 {
		return nil
	}

	items, err := structure.FromBodyWithPrefix(ctx, client, slice, segmentTokenBudget, codes[node])
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	mapped := pagemap.MapPages(items, slice)
	mapped, _ = verify.Run(ctx, client, mapped, slice, maxVerifyCount, totalPages, largePDFThreshold)

	children, childCodes := build(mapped, node.StartIndex, node.EndIndex)
	node.Nodes = children
	growToChildren(node)

	for _, c := range children {
		if err := expandNode(ctx, client, allPages, c, childCodes, maxPagesPerNode, segmentTokenBudget, maxVerifyCount, totalPages, largePDFThreshold); err != nil {
			return err
		}
	}
	return nil
}

// pagesInRange returns the subset of pages whose physical_index falls
// within [start, end], in order.
func pagesInRange(pages []*models.Page, start, end int) []*models.Page {
	var out []*models.Page
	for _, p := range pages {
		if p.PhysicalIndex >= start && p.PhysicalIndex <= end {
			out = append(out, p)
		}
	}
	return out
}

// growToChildren expands node's own bounds to cover the full extent of
// the subtree just synthesised in its place, mirroring builder.go's
// expand() pass: parents grow to cover children, children are never
// clamped down to a stale parent range (spec.md §9's "Bug #1" fix).
func growToChildren(node *models.TreeNode) {
	for _, c := range node.Nodes {
		if c.StartIndex < node.StartIndex {
			node.StartIndex = c.StartIndex
		}
		if c.EndIndex > node.EndIndex {
			node.EndIndex = c.EndIndex
		}
	}
}
