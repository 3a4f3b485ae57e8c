package pdfsource

import (
	"os"
	"regexp"
	"strings"
)

// extractText runs the prioritised backend chain over one page's raw PDF
// bytes (spec.md §4.1): tables-aware (layout-preserving) first, then the
// text-quality backend, then the always-succeeding fallback. The first
// backend whose output passes qualityOK wins; the fallback is accepted
// unconditionally.
func extractText(pageBytes []byte) (text string, tableLike bool) {
	if len(pageBytes) == 0 {
		return "", false
	}

	tmpPath, cleanup := writeTempPage(pageBytes)
	defer cleanup()

	if tmpPath != "" {
		if layoutText, ok := backendLayout(tmpPath); ok && qualityOK(layoutText) {
			return layoutText, looksTabular(layoutText)
		}
		if plainText, ok := backendQuality(tmpPath); ok && qualityOK(plainText) {
			return plainText, looksTabular(plainText)
		}
	}

	fallback := backendFallback(pageBytes)
	return fallback, looksTabular(fallback)
}

// writeTempPage materialises single-page PDF bytes to a temp file, since
// both the layout backend (an external process) and the quality backend
// (github.com/ledongthuc/pdf, which wants a ReaderAt+size) need a real
// file handle, exactly as dgallion1-docgest/internal/parser/pdf.go does
// for the whole-document case.
func writeTempPage(pageBytes []byte) (path string, cleanup func()) {
	f, err := os.CreateTemp("", "pagetree-page-*.pdf")
	if err != nil {
		return "", func() {}
	}
	if _, err := f.Write(pageBytes); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", func() {}
	}
	name := f.Name()
	f.Close()
	return name, func() { os.Remove(name) }
}

// qualityOK is the ratio-of-printable-characters / no-pathological-
// whitespace heuristic named in spec.md §4.1.
func qualityOK(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	var printable, total int
	var lastWasSpace bool
	var longestSpaceRun int
	var spaceRun int
	for _, r := range trimmed {
		total++
		if r == ' ' || r == '\t' {
			if lastWasSpace {
				spaceRun++
				if spaceRun > longestSpaceRun {
					longestSpaceRun = spaceRun
				}
			} else {
				spaceRun = 1
			}
			lastWasSpace = true
		} else {
			lastWasSpace = false
			spaceRun = 0
		}
		if r >= 32 && r < 127 || r == '\n' || r > 127 {
			printable++
		}
	}
	if total == 0 {
		return false
	}
	ratio := float64(printable) / float64(total)
	if ratio < 0.85 {
		return false
	}
	// Pathological whitespace: long runs of spaces usually mean the
	// backend mis-decoded glyph spacing as literal gaps.
	if longestSpaceRun > 20 {
		return false
	}
	return true
}

var tableRowPattern = regexp.MustCompile(`(\s{2,}\S+){3,}`)

// looksTabular is a crude "this page is dominated by columnar/tabular
// content" signal, used by internal/tocselect to demote a table-of-
// figures page being mistaken for a table of contents (SPEC_FULL.md
// supplement #4).
func looksTabular(text string) bool {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return false
	}
	tableLike := 0
	for _, line := range lines {
		if tableRowPattern.MatchString(line) {
			tableLike++
		}
	}
	return len(lines) > 0 && float64(tableLike)/float64(len(lines)) > 0.3
}
