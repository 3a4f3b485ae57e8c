// Package tocselect implements Phase 2 (TOC Source Selection, spec.md
// §4.3): accepting the embedded outline when it passes the entry
// validator, else locating a printed contents page within the first N
// pages of body text.
package tocselect

import "strings"

// contentsKeywords is the multilingual signature set used to spot a
// printed contents page by its heading text (spec.md §4.3).
var contentsKeywords = []string{
	"table of contents",
	"contents",
	"目录",
	"目次",
	"índice",
	"indice",
	"inhaltsverzeichnis",
	"sommaire",
	"table des matières",
	"содержание",
	"sumário",
}

// hasContentsKeyword reports whether text contains one of the
// contentsKeywords, case-insensitively.
func hasContentsKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range contentsKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// headingTokens are recognised prefixes that make an otherwise
// sentence-like line still acceptable as a TOC entry (e.g. "Chapter 1:
// What happened?"), per the validator rule in spec.md §4.3.
var headingTokens = []string{
	"chapter", "part", "section", "appendix", "book", "volume",
	"annex", "module", "unit",
}

func hasHeadingTokenPrefix(title string) bool {
	lower := strings.ToLower(strings.TrimSpace(title))
	for _, tok := range headingTokens {
		if strings.HasPrefix(lower, tok) {
			return true
		}
	}
	return false
}

// formFieldKeywords are common form-label nouns whose trailing colon
// marks a line as a form field rather than a TOC entry (spec.md §4.3's
// "form-field patterns" rejection rule).
var formFieldKeywords = []string{
	"name", "date", "signature", "address", "phone", "email",
	"title", "department", "id", "number",
}
