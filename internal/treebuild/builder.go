// Package treebuild implements Phase 6 (Tree Builder, spec.md §4.7):
// turning the flat, verified TOCItem sequence into the nested TreeNode
// tree that is the pipeline's external contract.
package treebuild

import (
	"fmt"
	"strings"

	"github.com/vectorless/pagetree/models"
)

// maxDepth is the hard cap on tree depth counting the root level
// (spec.md §3's invariant 4). Anything deeper is lifted into its
// deepest allowed ancestor as a further child.
const maxDepth = 4

// prefaceTitle names the synthetic leading section spec.md §4.7 requires
// when the first root doesn't start at page 1.
const prefaceTitle = "Preface"

// buildNode is the internal working tree: a models.TreeNode plus the
// bookkeeping (structure code, appear_start) the sibling pass and
// depth-cap lift need and the external TreeNode doesn't carry.
type buildNode struct {
	node        *models.TreeNode
	structure   string
	appearStart bool
	children    []*buildNode
}

// Build assembles the verified flat TOCItem sequence into the nested,
// node_id-assigned tree described by spec.md §3/§4.7. totalPages bounds
// every start/end index.
func Build(items []models.TOCItem, totalPages int) []*models.TreeNode {
	roots, _ := build(items, 1, totalPages)
	return roots
}

// BuildWithCodes is Build plus the structure-code lookup, exported for
// the orchestrator: ExpandOversized needs each root's own code to seed
// its recursive extraction (spec.md §9's "Bug #2" fix), and only the
// top-level caller sits outside this package.
func BuildWithCodes(items []models.TOCItem, totalPages int) ([]*models.TreeNode, map[*models.TreeNode]string) {
	return build(items, 1, totalPages)
}

// build is Build plus a structure-code lookup (keyed by the resulting
// *models.TreeNode), exposed so recurse.go can seed a child's code
// generator with its parent's prefix (spec.md §9's "Bug #2" fix) without
// re-deriving the mapping from node_id. startFloor is the lowest page
// this call's subtree may claim: 1 at the top level, but a recursive
// sub-extraction's own node.StartIndex, since its items describe pages
// within that node's range, not the document from page 1.
func build(items []models.TOCItem, startFloor, totalPages int) ([]*models.TreeNode, map[*models.TreeNode]string) {
	if startFloor < 1 {
		startFloor = 1
	}
	if totalPages < startFloor {
		totalPages = startFloor
	}
	codes := map[*models.TreeNode]string{}
	if len(items) == 0 {
		return nil, codes
	}

	starts := assignStarts(items, startFloor, totalPages)
	nodes := make([]*buildNode, len(items))
	for i, item := range items {
		nodes[i] = &buildNode{
			node: &models.TreeNode{
				Title:      item.Title,
				StartIndex: starts[i],
				EndIndex:   starts[i],
			},
			structure:   item.Structure,
			appearStart: item.AppearStart,
		}
	}

	roots := nest(nodes)
	assignEnds(roots, totalPages)
	for _, r := range roots {
		expand(r)
	}
	liftDeep(roots, 1)
	roots = addPreface(roots, startFloor)

	out := materialize(roots)
	assignNodeIDs(out)

	for _, n := range nodes {
		codes[n.node] = n.structure
	}
	return out, codes
}

// assignStarts copies physical_index where known and otherwise falls
// back to the previous item's start plus one, per spec.md §4.7's
// start_index rule, clamped into [startFloor, totalPages]. startFloor is
// also the first item's default when it carries no page of its own.
func assignStarts(items []models.TOCItem, startFloor, totalPages int) []int {
	starts := make([]int, len(items))
	prev := startFloor - 1
	for i, item := range items {
		var s int
		switch {
		case item.HasPage && item.PhysicalIndex > 0:
			s = item.PhysicalIndex
		case i > 0:
			s = prev + 1
		default:
			s = startFloor
		}
		if s < startFloor {
			s = startFloor
		}
		if s > totalPages {
			s = totalPages
		}
		starts[i] = s
		prev = s
	}
	return starts
}

// nest groups the flat, pre-order buildNode sequence into a tree by
// structure code: the parent of "a.b.c" is "a.b" (spec.md §4.7's
// "Nesting"). Items with no discoverable parent become roots.
func nest(nodes []*buildNode) []*buildNode {
	byCode := make(map[string]*buildNode, len(nodes))
	for _, n := range nodes {
		if n.structure != "" {
			byCode[n.structure] = n
		}
	}

	var roots []*buildNode
	for _, n := range nodes {
		parent := byCode[parentCode(n.structure)]
		if parent == nil {
			roots = append(roots, n)
			continue
		}
		parent.children = append(parent.children, n)
	}
	return roots
}

// parentCode returns the structure code one level up ("2.3.1" -> "2.3"),
// or "" if code has no parent (top level, or empty/unparseable).
func parentCode(code string) string {
	idx := strings.LastIndex(code, ".")
	if idx == -1 {
		return ""
	}
	return code[:idx]
}

// assignEnds computes end_index for every node in siblings (a single
// nesting level) using the sibling-pass rule of spec.md §4.7, then
// recurses into each node's own children using that node's freshly
// computed end as the bound for its own last child. outerBound is the
// page the last sibling in this list runs to when it has no next
// sibling — total_pages at the root, the enclosing node's end otherwise.
func assignEnds(siblings []*buildNode, outerBound int) {
	for i, n := range siblings {
		var end int
		if i+1 < len(siblings) {
			next := siblings[i+1]
			switch {
			case next.appearStart:
				end = next.node.StartIndex
			case next.node.StartIndex-1 >= n.node.StartIndex:
				end = next.node.StartIndex - 1
			default:
				end = next.node.StartIndex
			}
		} else {
			end = outerBound
		}
		if end < n.node.StartIndex {
			end = n.node.StartIndex
		}
		n.node.EndIndex = end

		if len(n.children) > 0 {
			assignEnds(n.children, n.node.EndIndex)
		}
	}
}

// expand is the post-order "Parent expansion" pass (spec.md §4.7):
// parents grow to cover the full extent of their children; children
// are never clamped down to a parent's (possibly noisier) range.
func expand(n *buildNode) {
	for _, c := range n.children {
		expand(c)
	}
	for _, c := range n.children {
		if c.node.StartIndex < n.node.StartIndex {
			n.node.StartIndex = c.node.StartIndex
		}
		if c.node.EndIndex > n.node.EndIndex {
			n.node.EndIndex = c.node.EndIndex
		}
	}
}

// liftDeep enforces the depth cap: once depth reaches maxDepth, every
// descendant below that node is flattened into one ordered list of
// direct children instead of nesting further (spec.md §4.7).
func liftDeep(siblings []*buildNode, depth int) {
	for _, n := range siblings {
		if depth >= maxDepth {
			n.children = flattenAll(n.children)
			continue
		}
		liftDeep(n.children, depth+1)
	}
}

// flattenAll returns nodes plus every descendant of nodes, in pre-order,
// each stripped of its own children since nesting stops here.
func flattenAll(nodes []*buildNode) []*buildNode {
	var out []*buildNode
	for _, n := range nodes {
		rest := n.children
		n.children = nil
		out = append(out, n)
		out = append(out, flattenAll(rest)...)
	}
	return out
}

// addPreface synthesises a leading "Preface" node spanning
// startFloor..(first root's start - 1) when the document (or, for a
// recursive sub-extraction, the node being expanded) opens with
// unindexed content (spec.md §4.7).
func addPreface(roots []*buildNode, startFloor int) []*buildNode {
	if len(roots) == 0 || roots[0].node.StartIndex <= startFloor {
		return roots
	}
	preface := &buildNode{
		node: &models.TreeNode{
			Title:      prefaceTitle,
			StartIndex: startFloor,
			EndIndex:   roots[0].node.StartIndex - 1,
		},
	}
	return append([]*buildNode{preface}, roots...)
}

// materialize converts the buildNode working tree into the
// models.TreeNode tree that's actually returned, setting Nodes at
// every level.
func materialize(nodes []*buildNode) []*models.TreeNode {
	out := make([]*models.TreeNode, len(nodes))
	for i, n := range nodes {
		n.node.Nodes = materialize(n.children)
		out[i] = n.node
	}
	return out
}

// ReassignNodeIDs recomputes node_id across a tree that changed shape
// after the initial build — inserting gap-fill nodes, for instance —
// since node_id must stay a stable pre-order sequence over the tree
// actually returned, not just the tree Build first produced.
func ReassignNodeIDs(roots []*models.TreeNode) {
	assignNodeIDs(roots)
}

// assignNodeIDs walks the finished tree in pre-order, assigning
// zero-padded sequential node_id values (spec.md §4.7, §6).
func assignNodeIDs(roots []*models.TreeNode) {
	counter := 0
	var walk func(n *models.TreeNode)
	walk = func(n *models.TreeNode) {
		n.NodeID = fmt.Sprintf("%04d", counter)
		counter++
		for _, c := range n.Nodes {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
}

// Statistics summarises the shape of a finished tree (spec.md §6's
// Statistics block).
func Statistics(roots []*models.TreeNode) models.Statistics {
	stats := models.Statistics{RootNodes: len(roots)}
	var walk func(n *models.TreeNode, depth int)
	walk = func(n *models.TreeNode, depth int) {
		stats.TotalNodes++
		if depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
		for _, c := range n.Nodes {
			walk(c, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 1)
	}
	return stats
}
