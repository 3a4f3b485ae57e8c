package structure

import "github.com/vectorless/pagetree/models"

// FromOutline converts the embedded outline's flat (level, title, page)
// triples into the flat ordered TOCItem sequence (spec.md §4.4).
// physical_index is copied directly from the outline's page since
// embedded-outline destinations are already physical, not logical —
// Page Mapping's fast path relies on this.
func FromOutline(entries []models.OutlineEntry) []models.TOCItem {
	gen := NewCodeGenerator()
	items := make([]models.TOCItem, 0, len(entries))

	for i, e := range entries {
		level := e.Level + 1 // outline.go emits 0-based bookmark depth
		code := gen.Next(level)

		item := models.TOCItem{
			Structure: code,
			Title:     e.Title,
			Level:     level,
			ListIndex: i,
		}
		if e.Page > 0 {
			item.PhysicalIndex = e.Page
			item.HasPage = true
			item.ValidationPassed = true
		}
		items = append(items, item)
	}

	return items
}
