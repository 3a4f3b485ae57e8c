package pagemap

import (
	"testing"

	"github.com/vectorless/pagetree/models"
)

func makePages(texts map[int]string, total int) []*models.Page {
	pages := make([]*models.Page, total)
	for i := 1; i <= total; i++ {
		pages[i-1] = &models.Page{PhysicalIndex: i, Text: texts[i]}
	}
	return pages
}

func TestMapPages_ExactMatch(t *testing.T) {
	pages := makePages(map[int]string{
		1: "Cover page",
		2: "Table of contents",
		3: "Introduction\nThis is the introduction text.",
		4: "Body text continues.",
		5: "Methods\nDescribes the methods used.",
	}, 5)

	items := []models.TOCItem{
		{Structure: "1", Title: "Introduction", Level: 1, ListIndex: 0},
		{Structure: "2", Title: "Methods", Level: 1, ListIndex: 1},
	}

	mapped := MapPages(items, pages)
	if mapped[0].PhysicalIndex != 3 {
		t.Errorf("expected Introduction mapped to page 3, got %d", mapped[0].PhysicalIndex)
	}
	if mapped[1].PhysicalIndex != 5 {
		t.Errorf("expected Methods mapped to page 5, got %d", mapped[1].PhysicalIndex)
	}
}

func TestMapPages_SkipsOutlineSourced(t *testing.T) {
	pages := makePages(map[int]string{1: "anything"}, 3)
	items := []models.TOCItem{
		{Title: "Whatever", PhysicalIndex: 2, HasPage: true, ValidationPassed: true},
	}
	mapped := MapPages(items, pages)
	if mapped[0].PhysicalIndex != 2 {
		t.Errorf("expected outline-sourced item left untouched at page 2, got %d", mapped[0].PhysicalIndex)
	}
}

func TestMapPages_FuzzyMatch(t *testing.T) {
	pages := makePages(map[int]string{
		1: "Intro",
		2: "Introducton\nSlightly misspelled heading due to OCR noise.",
	}, 2)

	items := []models.TOCItem{
		{Title: "Introduction", Level: 1, ListIndex: 0},
	}
	mapped := MapPages(items, pages)
	if mapped[0].PhysicalIndex != 2 {
		t.Errorf("expected fuzzy match on page 2, got %d", mapped[0].PhysicalIndex)
	}
}

func TestRepairMonotonicity(t *testing.T) {
	pages := makePages(map[int]string{
		1: "Intro", 2: "Body", 3: "Body", 4: "Body", 5: "Methods",
	}, 5)
	items := []models.TOCItem{
		{Title: "Intro", PhysicalIndex: 4, HasPage: true, ListIndex: 0},
		{Title: "Methods", PhysicalIndex: 2, HasPage: true, ListIndex: 1}, // regresses
	}
	repairMonotonicity(items, pages)
	if items[1].PhysicalIndex < items[0].PhysicalIndex {
		t.Errorf("expected monotonicity repaired, got %d before %d", items[0].PhysicalIndex, items[1].PhysicalIndex)
	}
}
