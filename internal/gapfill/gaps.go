// Package gapfill implements Phase 7 (Gap Filler, spec.md §4.8):
// finding pages no leaf node covers and giving them a home.
package gapfill

import (
	"fmt"

	"github.com/vectorless/pagetree/models"
)

// Gap is a maximal contiguous run of pages [Start, End] (1-based
// inclusive) covered by no leaf in the tree.
type Gap struct {
	Start, End int
}

// FindGaps walks roots collecting the set of pages covered by at least
// one leaf, then returns the complement against {1..totalPages}
// coalesced into maximal contiguous runs (spec.md §4.8's "Detect").
func FindGaps(roots []*models.TreeNode, totalPages int) []Gap {
	covered := make([]bool, totalPages+1) // 1-based; index 0 unused
	var walk func(n *models.TreeNode)
	walk = func(n *models.TreeNode) {
		if len(n.Nodes) == 0 {
			markCovered(covered, n.StartIndex, n.EndIndex)
			return
		}
		for _, c := range n.Nodes {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}

	var gaps []Gap
	inGap := false
	var start int
	for p := 1; p <= totalPages; p++ {
		if !covered[p] {
			if !inGap {
				inGap = true
				start = p
			}
			continue
		}
		if inGap {
			gaps = append(gaps, Gap{Start: start, End: p - 1})
			inGap = false
		}
	}
	if inGap {
		gaps = append(gaps, Gap{Start: start, End: totalPages})
	}
	return gaps
}

func markCovered(covered []bool, start, end int) {
	if start < 1 {
		start = 1
	}
	if end > len(covered)-1 {
		end = len(covered) - 1
	}
	for p := start; p <= end; p++ {
		covered[p] = true
	}
}

// Coverage reports what fraction of total pages are covered by at least
// one leaf, plus the "covered/total" fraction string spec.md §6 and §8
// document for GapFillInfo.OriginalCoverage (e.g. "66/78").
func Coverage(roots []*models.TreeNode, totalPages int) (percentage float64, coverageText string) {
	gaps := FindGaps(roots, totalPages)
	gapPages := 0
	for _, g := range gaps {
		gapPages += g.End - g.Start + 1
	}
	if totalPages == 0 {
		return 1.0, "0/0"
	}
	covered := totalPages - gapPages
	return float64(covered) / float64(totalPages), fmt.Sprintf("%d/%d", covered, totalPages)
}
