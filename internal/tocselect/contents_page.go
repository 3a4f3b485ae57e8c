package tocselect

import (
	"regexp"
	"strings"

	"github.com/vectorless/pagetree/models"
)

// tocLinePattern matches a contents-page line: a title, optional dot
// leaders, and a trailing page number — the "characteristic shape"
// signal named in spec.md §4.3.
var tocLinePattern = regexp.MustCompile(`^.{2,70}?[\s.]{2,}\d{1,4}\s*$`)

const minShapeLineRatio = 0.3
const minShapeLines = 5

// looksLikeContentsShape reports whether a page's text is dominated by
// lines of the form "Title .... 12".
func looksLikeContentsShape(text string) bool {
	lines := nonEmptyLines(text)
	if len(lines) < minShapeLines {
		return false
	}
	matching := 0
	for _, line := range lines {
		if tocLinePattern.MatchString(line) {
			matching++
		}
	}
	return float64(matching)/float64(len(lines)) >= minShapeLineRatio
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Region is the contiguous span of pages identified as the printed
// contents region, and the concatenated text of those pages.
type Region struct {
	Text  string
	Pages []int
}

// FindContentsPage scans the first checkPages pages looking for a
// printed contents page, either by keyword signature or by shape, then
// extends the region forward while following pages keep the same shape
// (multi-page tables of contents) — spec.md §4.3, rule 2. A page flagged
// HasTableMarkers (dominated by tabular layout, per the SUPPLEMENTED
// FEATURES table-marker detection) is demoted when it only matches the
// dot-leader shape heuristic — a table of figures or a data table can
// accidentally satisfy that regex — but an explicit contents keyword on
// the page still wins, since that's a much stronger signal.
func FindContentsPage(pages []*models.Page, checkPages int) (Region, bool) {
	limit := checkPages
	if limit > len(pages) {
		limit = len(pages)
	}

	startIdx := -1
	for i := 0; i < limit; i++ {
		p := pages[i]
		if hasContentsKeyword(p.Text) {
			startIdx = i
			break
		}
		if looksLikeContentsShape(p.Text) && !p.HasTableMarkers {
			startIdx = i
			break
		}
	}
	if startIdx == -1 {
		return Region{}, false
	}

	var texts []string
	var pageNums []int
	texts = append(texts, pages[startIdx].Text)
	pageNums = append(pageNums, pages[startIdx].PhysicalIndex)

	for i := startIdx + 1; i < len(pages); i++ {
		p := pages[i]
		if !looksLikeContentsShape(p.Text) || p.HasTableMarkers {
			break
		}
		texts = append(texts, p.Text)
		pageNums = append(pageNums, p.PhysicalIndex)
	}

	return Region{Text: strings.Join(texts, "\n"), Pages: pageNums}, true
}
