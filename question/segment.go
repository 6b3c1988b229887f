package question

import (
	"regexp"
	"strconv"
	"strings"
)

// Accepted grammar, matched case-insensitively:
//
//	paper    = { junk | block }
//	block    = "Q" digits ")" body          body runs to the next "Q<n>)" or EOF
//	body     = { junk | "OR" | sub }
//	sub      = letter ")" text "[" digits "]"
//
// text may span lines and is matched lazily, so it ends at the first
// bracketed number. A sub without a bracketed mark is not recognized: its
// text runs on into the next marked sub, or is lost when none follows.
// Text outside the grammar produces no records. A sub letter starts a line
// or follows whitespace, so "g(y)" inside a question is text, not a marker.
var (
	mainMarker = regexp.MustCompile(`(?i)Q(\d+)\)`)
	orToken    = regexp.MustCompile(`(?i)\bOR\b`)
	subSpan    = regexp.MustCompile(`(?ism)(?:^|\s)([a-z])\)\s*(.*?)\s*\[(\d+)\]`)
)

// Segment extracts question records from clean text, in document order:
// numbered blocks in order, sub-questions in the order they are found in
// each block.
func Segment(text string) []Record {
	return SegmentSource(text, "")
}

// SegmentSource is Segment with every record tagged with source.
func SegmentSource(text, source string) []Record {
	markers := mainMarker.FindAllStringSubmatchIndex(text, -1)

	var records []Record
	for i, m := range markers {
		no, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue // overflowing digit run
		}
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		block := orToken.ReplaceAllString(text[m[1]:end], "")

		for _, sm := range subSpan.FindAllStringSubmatch(block, -1) {
			marks, err := strconv.Atoi(sm[3])
			if err != nil {
				continue
			}
			records = append(records, Record{
				QuestionNo:  no,
				SubQuestion: sm[1],
				Question:    strings.TrimSpace(sm[2]),
				Marks:       marks,
				Source:      source,
			})
		}
	}
	return records
}
