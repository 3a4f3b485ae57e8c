package pdfsource

import (
	"bytes"
	"os/exec"
)

// backendLayout is the tables-aware backend: the pdftotext CLI (poppler-
// utils) invoked with -layout, which preserves column and cell spacing
// instead of collapsing it to a single text stream. Grounded on
// dgallion1-docgest/internal/parser/pdf.go's extractPdftotext, promoted
// here from "fallback" to "tried first" because tables and multi-column
// contents pages are exactly where a layout-preserving backend earns its
// keep (spec.md §4.1).
func backendLayout(path string) (string, bool) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", false
	}
	return stdout.String(), true
}
