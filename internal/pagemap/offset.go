package pagemap

import "github.com/vectorless/pagetree/models"

// InferOffset detects a systematic offset between an item's declared
// (logical, printed) page and where it was actually found once mapped —
// the "printed numbering started from a later page" case in spec.md
// §4.5. It returns the most frequent (physical_index - declared page)
// difference over the items that have a page; it does not apply it
// (ApplyOffset does). items and declaredPages must be index-aligned;
// entries with declaredPage <= 0 are skipped when computing the offset.
func InferOffset(items []models.TOCItem, declaredPages []int) int {
	counts := make(map[int]int)
	for i, item := range items {
		if !item.HasPage || i >= len(declaredPages) {
			continue
		}
		declared := declaredPages[i]
		if declared <= 0 {
			continue
		}
		offset := item.PhysicalIndex - declared
		counts[offset]++
	}

	bestOffset, bestCount := 0, 0
	for offset, count := range counts {
		if count > bestCount {
			bestOffset, bestCount = offset, count
		}
	}
	return bestOffset
}

// ApplyOffset shifts every item's declared page by offset to produce a
// starting physical_index guess, for items the exact/fuzzy search in
// mapper.go failed to place directly.
func ApplyOffset(items []models.TOCItem, declaredPages []int, offset int, totalPages int) []models.TOCItem {
	out := make([]models.TOCItem, len(items))
	copy(out, items)

	for i := range out {
		if out[i].HasPage || i >= len(declaredPages) {
			continue
		}
		declared := declaredPages[i]
		if declared <= 0 {
			continue
		}
		candidate := declared + offset
		if candidate < 1 {
			candidate = 1
		}
		if candidate > totalPages {
			candidate = totalPages
		}
		out[i].PhysicalIndex = candidate
		out[i].HasPage = true
	}
	return out
}
