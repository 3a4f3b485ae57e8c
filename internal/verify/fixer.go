package verify

import (
	"github.com/vectorless/pagetree/internal/pagemap"
	"github.com/vectorless/pagetree/models"
)

// fixerRadius is K from spec.md §4.6: "a smart fixer searches the ±K
// page neighbourhood (K = 3) for the title and updates the physical_index
// if found."
const fixerRadius = 3

// Fix searches the pages immediately around item's current physical_index
// for its title and returns the page it actually found, if any. It reuses
// the same exact-then-fuzzy search the mapper uses, just over a much
// tighter window.
func Fix(item models.TOCItem, pages []*models.Page) (int, bool) {
	if item.Title == "" || len(pages) == 0 {
		return 0, false
	}

	lo := item.PhysicalIndex - fixerRadius
	hi := item.PhysicalIndex + fixerRadius
	if lo < 1 {
		lo = 1
	}
	if hi > len(pages) {
		hi = len(pages)
	}
	if lo > hi {
		return 0, false
	}

	found, page := pagemap.SearchWindow(item.Title, pages, lo, hi)
	return page, found
}
