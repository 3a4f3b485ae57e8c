package pagemap

import (
	"testing"

	"github.com/vectorless/pagetree/models"
)

func TestInferOffset(t *testing.T) {
	items := []models.TOCItem{
		{PhysicalIndex: 13, HasPage: true},
		{PhysicalIndex: 21, HasPage: true},
		{PhysicalIndex: 35, HasPage: true},
	}
	declared := []int{3, 11, 25} // consistently off by +10
	offset := InferOffset(items, declared)
	if offset != 10 {
		t.Errorf("InferOffset() = %d, want %d", offset, 10)
	}
}

func TestApplyOffset(t *testing.T) {
	items := []models.TOCItem{
		{Title: "A"},
		{Title: "B", PhysicalIndex: 5, HasPage: true},
	}
	declared := []int{3, 8}
	out := ApplyOffset(items, declared, 10, 100)
	if out[0].PhysicalIndex != 13 || !out[0].HasPage {
		t.Errorf("expected item A shifted to page 13, got %+v", out[0])
	}
	if out[1].PhysicalIndex != 5 {
		t.Errorf("expected already-mapped item B left alone, got %d", out[1].PhysicalIndex)
	}
}

func TestApplyOffset_ClampsToTotalPages(t *testing.T) {
	items := []models.TOCItem{{Title: "A"}}
	declared := []int{95}
	out := ApplyOffset(items, declared, 10, 100)
	if out[0].PhysicalIndex != 100 {
		t.Errorf("expected clamp to 100, got %d", out[0].PhysicalIndex)
	}
}
