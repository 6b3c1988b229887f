package question

import (
	"regexp"
	"strings"
)

var (
	strayNumber    = regexp.MustCompile(`(\s)\d{1,2}(\s)`)
	leadingNumber  = regexp.MustCompile(`^\d{1,2}\s+`)
	trailingNumber = regexp.MustCompile(`\s+\d{1,2}$`)
	whitespaceRun  = regexp.MustCompile(`\s{2,}`)
)

// Normalize strips numeric residue from question text: 1-2 digit numbers
// standing alone between whitespace (page numbers, marks leaking from the
// margin), one at the very start or end, then collapses whitespace runs
// and trims.
//
// The rules are applied until the text stops changing, so adjacent stray
// numbers ("see 3 4 below") all go and Normalize(Normalize(s)) ==
// Normalize(s). Each pass removes digits or shortens the text, which
// bounds the loop.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	for {
		next := normalizeOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func normalizeOnce(s string) string {
	s = strayNumber.ReplaceAllString(s, "${1} ${2}")
	s = leadingNumber.ReplaceAllString(s, "")
	s = trailingNumber.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
