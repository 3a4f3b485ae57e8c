package pdfsource

import (
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// backendQuality is the text-quality backend: github.com/ledongthuc/pdf
// reading a single-page PDF directly off disk, mirroring
// dgallion1-docgest/internal/parser/pdf.go's extractPDFText. It is good at
// plain prose and bad at multi-column layout and tables.
func backendQuality(path string) (string, bool) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	if reader.NumPage() < 1 {
		return "", false
	}

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
	}
	return buf.String(), true
}
