package pagemap

import (
	"strings"

	"github.com/vectorless/pagetree/models"
)

// defaultWindowRadius bounds how far from the expected position the
// mapper searches for a title, keeping the search from wandering into
// an unrelated section that happens to share wording.
const defaultWindowRadius = 20

// MapPages resolves physical_index for every item that doesn't already
// carry a trustworthy one. outlineSourced items are left untouched (the
// fast path already applied in structure.FromOutline pre-sets
// ValidationPassed, per spec.md §4.5).
func MapPages(items []models.TOCItem, pages []*models.Page) []models.TOCItem {
	if len(pages) == 0 {
		return items
	}
	totalPages := maxPhysicalIndex(pages)

	out := make([]models.TOCItem, len(items))
	copy(out, items)

	// declaredPages is the page each item carried in before any title
	// search ran: an outline's physical page, or a printed contents
	// page's own (possibly logical, front-matter-shifted) page number.
	declaredPages := make([]int, len(out))
	confirmed := make([]bool, len(out))
	for i, item := range out {
		if item.HasPage {
			declaredPages[i] = item.PhysicalIndex
		}
		confirmed[i] = item.ValidationPassed && item.HasPage
	}

	lastMapped := 1
	for i := range out {
		item := &out[i]
		if item.ValidationPassed && item.HasPage {
			lastMapped = item.PhysicalIndex
			continue
		}

		center := lastMapped
		if item.HasPage {
			center = item.PhysicalIndex
		} else {
			center = estimatePosition(i, len(out), totalPages, lastMapped)
		}

		lo, hi := windowBounds(center, totalPages)
		if found, page := findInWindow(item.Title, pages, lo, hi); found {
			item.PhysicalIndex = page
			item.HasPage = true
			confirmed[i] = true
			lastMapped = page
		}
	}

	out = correctUnconfirmedByOffset(out, declaredPages, confirmed, totalPages)

	repairMonotonicity(out, pages)
	return out
}

// correctUnconfirmedByOffset implements spec.md §4.5's offset-correction
// operation: items a direct title search placed (confirmed) establish a
// systematic declared-to-physical offset (e.g. a printed contents page
// numbered from the start of the body, front matter excluded); items the
// search missed get that offset applied to their declared page instead
// of being left on their raw, possibly-logical page number.
func correctUnconfirmedByOffset(items []models.TOCItem, declaredPages []int, confirmed []bool, totalPages int) []models.TOCItem {
	forOffset := make([]models.TOCItem, len(items))
	copy(forOffset, items)
	for i, ok := range confirmed {
		if !ok {
			forOffset[i].HasPage = false
		}
	}

	offset := InferOffset(forOffset, declaredPages)
	if offset == 0 {
		return items
	}

	corrected := ApplyOffset(forOffset, declaredPages, offset, totalPages)
	out := make([]models.TOCItem, len(items))
	copy(out, items)
	for i, ok := range confirmed {
		if !ok && declaredPages[i] > 0 && corrected[i].HasPage {
			out[i] = corrected[i]
		}
	}
	return out
}

func estimatePosition(index, total, totalPages, lastMapped int) int {
	if total <= 1 {
		return lastMapped
	}
	fractional := int(float64(index) / float64(total) * float64(totalPages))
	if fractional < lastMapped {
		fractional = lastMapped
	}
	if fractional > totalPages {
		fractional = totalPages
	}
	if fractional < 1 {
		fractional = 1
	}
	return fractional
}

func windowBounds(center, totalPages int) (int, int) {
	lo := center - defaultWindowRadius
	hi := center + defaultWindowRadius
	if lo < 1 {
		lo = 1
	}
	if hi > totalPages {
		hi = totalPages
	}
	return lo, hi
}

// SearchWindow is the exported form of findInWindow, for callers outside
// this package that need the same exact-then-fuzzy neighbourhood search
// (the verifier's smart fixer, spec.md §4.6).
func SearchWindow(title string, pages []*models.Page, lo, hi int) (bool, int) {
	return findInWindow(title, pages, lo, hi)
}

// findInWindow searches pages[lo-1:hi] (1-based inclusive) for title,
// exact match first across the whole window, then fuzzy, per spec.md
// §4.5. Ties break toward earlier pages, then toward occurrences near
// the top of the page.
func findInWindow(title string, pages []*models.Page, lo, hi int) (bool, int) {
	normalizedTitle := Normalize(title)
	if normalizedTitle == "" {
		return false, 0
	}

	for pageNum := lo; pageNum <= hi; pageNum++ {
		page := pageForNumber(pages, pageNum)
		if page == nil {
			continue
		}
		if offset, ok := exactMatchOffset(page.Text, normalizedTitle); ok {
			_ = offset
			return true, pageNum
		}
	}

	type candidate struct {
		page    int
		ratio   float64
		nearTop bool
	}
	var best *candidate
	for pageNum := lo; pageNum <= hi; pageNum++ {
		page := pageForNumber(pages, pageNum)
		if page == nil {
			continue
		}
		ratio, nearTop := bestFuzzyLineMatch(page.Text, normalizedTitle)
		if ratio < fuzzyThreshold {
			continue
		}
		c := candidate{page: pageNum, ratio: ratio, nearTop: nearTop}
		if best == nil || betterCandidate(c.page, c.ratio, c.nearTop, best.page, best.ratio, best.nearTop) {
			best = &c
		}
	}
	if best != nil {
		return true, best.page
	}
	return false, 0
}

func betterCandidate(page int, ratio float64, nearTop bool, bestPage int, bestRatio float64, bestNearTop bool) bool {
	if page != bestPage {
		return page < bestPage
	}
	if nearTop != bestNearTop {
		return nearTop
	}
	return ratio > bestRatio
}

// maxPhysicalIndex returns the highest physical_index present, used as
// the window's upper bound instead of len(pages) so a non-contiguous or
// non-1-based slice (a gap, a recursively re-extracted node's own page
// range) still searches its real page numbers rather than being clamped
// to an unrelated count.
func maxPhysicalIndex(pages []*models.Page) int {
	max := 0
	for _, p := range pages {
		if p.PhysicalIndex > max {
			max = p.PhysicalIndex
		}
	}
	return max
}

func pageForNumber(pages []*models.Page, pageNum int) *models.Page {
	for _, p := range pages {
		if p.PhysicalIndex == pageNum {
			return p
		}
	}
	return nil
}

func exactMatchOffset(pageText, normalizedTitle string) (int, bool) {
	normalizedPage := Normalize(pageText)
	idx := strings.Index(normalizedPage, normalizedTitle)
	if idx == -1 {
		return 0, false
	}
	return idx, true
}

// bestFuzzyLineMatch scores each line of pageText against
// normalizedTitle and returns the best ratio plus whether that line sits
// in the top third of the page (the "near the top" position signal).
func bestFuzzyLineMatch(pageText, normalizedTitle string) (float64, bool) {
	lines := strings.Split(pageText, "\n")
	if len(lines) == 0 {
		return 0, false
	}

	bestRatio := 0.0
	bestNearTop := false
	for i, line := range lines {
		normalizedLine := Normalize(line)
		if normalizedLine == "" {
			continue
		}
		ratio := Ratio(normalizedLine, normalizedTitle)
		if ratio > bestRatio {
			bestRatio = ratio
			bestNearTop = float64(i) < float64(len(lines))/3.0
		}
	}
	return bestRatio, bestNearTop
}

// repairMonotonicity re-maps any item whose physical_index regresses
// relative to its predecessor using a tighter window around its
// neighbours (spec.md §4.5's output invariant).
func repairMonotonicity(items []models.TOCItem, pages []*models.Page) {
	for i := 1; i < len(items); i++ {
		if !items[i].HasPage || !items[i-1].HasPage {
			continue
		}
		if items[i].PhysicalIndex >= items[i-1].PhysicalIndex {
			continue
		}
		lo := items[i-1].PhysicalIndex
		hi := lo + 5
		if hi > len(pages) {
			hi = len(pages)
		}
		if found, page := findInWindow(items[i].Title, pages, lo, hi); found {
			items[i].PhysicalIndex = page
		} else {
			items[i].PhysicalIndex = items[i-1].PhysicalIndex
		}
	}
}
