package tocselect

import (
	"regexp"
	"strings"
	"unicode"
)

// singleLetterListMarker matches single-letter entries like "a." used as
// list markers rather than section titles.
var singleLetterListMarker = regexp.MustCompile(`^[a-zA-Z]\.$`)

// ValidEntry applies the TOC-entry validator rules from spec.md §4.3 to a
// single candidate title. It is used both to accept/reject the embedded
// outline as a whole (outline_accept.go) and to screen lines scraped off
// a printed contents page.
func ValidEntry(title string) bool {
	trimmed := strings.TrimSpace(title)
	length := len([]rune(trimmed))

	if length < 2 || length > 80 {
		return false
	}

	if isPurePunctuation(trimmed) {
		return false
	}

	if singleLetterListMarker.MatchString(trimmed) {
		return false
	}

	if hasSentenceTerminalPunctuation(trimmed) && !hasHeadingTokenPrefix(trimmed) {
		return false
	}

	if isFormField(trimmed) {
		return false
	}

	return true
}

func isPurePunctuation(s string) bool {
	hasAny := false
	for _, r := range s {
		hasAny = true
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return hasAny
}

func hasSentenceTerminalPunctuation(s string) bool {
	body := strings.TrimRight(s, " ")
	for _, terminal := range []string{".", "!", "?"} {
		if strings.HasSuffix(body, terminal) {
			// A lone trailing period after a heading-like numeral
			// ("Chapter 1.") is not sentence punctuation; only flag it
			// when the body before the terminator reads as a full
			// sentence (see looksLikeSentence).
			without := strings.TrimSuffix(body, terminal)
			if looksLikeSentence(without) {
				return true
			}
		}
	}
	return false
}

// looksLikeSentence is a light heuristic: four or more words reads as a
// sentence rather than a short heading phrase.
func looksLikeSentence(s string) bool {
	words := strings.Fields(s)
	return len(words) >= 4
}

func isFormField(s string) bool {
	trimmed := strings.TrimSpace(s)
	body := strings.TrimSpace(strings.TrimSuffix(trimmed, ":"))
	if body == trimmed {
		return false
	}
	lower := strings.ToLower(body)
	for _, kw := range formFieldKeywords {
		if lower == kw || strings.HasSuffix(lower, " "+kw) {
			return true
		}
	}
	return false
}
