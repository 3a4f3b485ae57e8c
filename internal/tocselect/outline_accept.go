package tocselect

import "github.com/vectorless/pagetree/models"

const (
	minOutlineEntries    = 5
	minOutlineValidRatio = 0.5
)

// AcceptOutline decides whether the embedded outline is usable enough to
// skip Phases 3 and 4 entirely (spec.md §4.3, rule 1): at least
// minOutlineEntries entries, and at least minOutlineValidRatio of them
// pass ValidEntry.
func AcceptOutline(entries []models.OutlineEntry) bool {
	if len(entries) < minOutlineEntries {
		return false
	}

	valid := 0
	for _, e := range entries {
		if ValidEntry(e.Title) {
			valid++
		}
	}

	return float64(valid)/float64(len(entries)) >= minOutlineValidRatio
}
