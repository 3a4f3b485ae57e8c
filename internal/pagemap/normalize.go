// Package pagemap implements Phase 4 (Page Mapper, spec.md §4.5):
// resolving each TOCItem's physical_index via exact-then-fuzzy title
// matching inside the page-boundary-marker windows, plus systematic
// offset correction and the non-decreasing-page-sequence repair.
package pagemap

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var caser = cases.Fold()

// Normalize collapses whitespace, case-folds (Unicode-aware, via
// golang.org/x/text/cases rather than strings.ToLower), and strips
// punctuation from a title, producing the canonical form exact and fuzzy
// matching both compare against.
func Normalize(title string) string {
	folded := caser.String(title)

	var b strings.Builder
	lastWasSpace := false
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r):
			if !lastWasSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			lastWasSpace = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			// dropped
		default:
			b.WriteRune(r)
			lastWasSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}
