package tocselect

import (
	"testing"

	"github.com/vectorless/pagetree/models"
)

func TestAcceptOutline(t *testing.T) {
	good := []models.OutlineEntry{
		{Level: 1, Title: "Introduction", Page: 1},
		{Level: 1, Title: "Background", Page: 5},
		{Level: 1, Title: "Methods", Page: 12},
		{Level: 1, Title: "Results", Page: 30},
		{Level: 1, Title: "Discussion", Page: 45},
		{Level: 1, Title: "Conclusion", Page: 60},
	}
	if !AcceptOutline(good) {
		t.Error("expected a clean 6-entry outline to be accepted")
	}

	tooFew := good[:4]
	if AcceptOutline(tooFew) {
		t.Error("expected fewer than 5 entries to be rejected")
	}

	mostlyGarbage := []models.OutlineEntry{
		{Title: "---"}, {Title: "a."}, {Title: "Name:"},
		{Title: "Introduction"}, {Title: "1."}, {Title: "*"},
	}
	if AcceptOutline(mostlyGarbage) {
		t.Error("expected mostly-invalid outline to be rejected")
	}
}
