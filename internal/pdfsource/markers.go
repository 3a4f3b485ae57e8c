package pdfsource

import (
	"fmt"
	"strings"

	"github.com/vectorless/pagetree/models"
)

// WrapWithMarkers concatenates a run of pages into one prompt-ready string,
// wrapping each page's text in the <physical_index_N>...</physical_index_N>
// boundary sentinel (spec.md §4.1) so that downstream LLM phases can bind
// any span of generated text back to the physical page it came from.
func WrapWithMarkers(pages []*models.Page) string {
	var buf strings.Builder
	for i, p := range pages {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "<physical_index_%d>\n", p.PhysicalIndex)
		buf.WriteString(p.Text)
		fmt.Fprintf(&buf, "\n</physical_index_%d>", p.PhysicalIndex)
	}
	return buf.String()
}

// ParseMarkers is the inverse of WrapWithMarkers: it returns the
// physical_index of every opening marker tag in text, in order of
// appearance.
func ParseMarkers(text string) []int {
	var indices []int
	const openPrefix = "<physical_index_"
	rest := text
	for {
		idx := strings.Index(rest, openPrefix)
		if idx == -1 {
			break
		}
		rest = rest[idx+len(openPrefix):]
		end := strings.IndexAny(rest, ">")
		if end == -1 {
			break
		}
		numStr := strings.TrimSuffix(rest[:end], "\n")
		if n, ok := parsePositiveInt(numStr); ok {
			indices = append(indices, n)
		}
		rest = rest[end+1:]
	}
	return indices
}

func parsePositiveInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
