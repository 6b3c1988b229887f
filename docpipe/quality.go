package docpipe

import (
	"strings"
	"unicode"
)

// ExtractionQuality summarises how much usable text a document yielded.
type ExtractionQuality struct {
	PageCount      int     `json:"page_count"`
	TextPages      int     `json:"text_pages"`
	CharsPerPage   float64 `json:"chars_per_page"`
	PrintableRatio float64 `json:"printable_ratio"`
	WordlikeRatio  float64 `json:"wordlike_ratio"`
}

// NeedsOCR reports whether the document looks scanned or garbled: too
// little text per page, or too many unprintable runes.
func (q *ExtractionQuality) NeedsOCR() bool {
	if q == nil || q.PageCount == 0 {
		return false
	}
	return q.CharsPerPage < 50 || q.PrintableRatio < 0.85
}

func computeQuality(pages []Page) *ExtractionQuality {
	q := &ExtractionQuality{PageCount: len(pages)}
	var sb strings.Builder
	for _, pg := range pages {
		if pg.Text == "" {
			continue
		}
		q.TextPages++
		sb.WriteString(pg.Text)
		sb.WriteByte('\n')
	}
	text := sb.String()
	if q.PageCount > 0 {
		q.CharsPerPage = float64(len([]rune(strings.TrimSpace(text)))) / float64(q.PageCount)
	}
	q.PrintableRatio = computePrintableRatio(text)
	q.WordlikeRatio = computeWordlikeRatio(text)
	return q
}

// computePrintableRatio returns the ratio of printable characters in text.
// Private use runes, U+FFFD and control characters other than \n\r\t
// count as unprintable.
func computePrintableRatio(text string) float64 {
	total, printable := 0, 0
	for _, r := range text {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(printable) / float64(total)
}

func isGarbageRune(r rune) bool {
	switch {
	case r >= 0xE000 && r <= 0xF8FF: // private use area
		return true
	case r == 0xFFFD:
		return true
	case r < 0x0020 && r != '\n' && r != '\r' && r != '\t':
		return true
	}
	return false
}

// computeWordlikeRatio returns the share of tokens 2 to 15 runes long.
func computeWordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		if n := len([]rune(f)); n >= 2 && n <= 15 {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}
