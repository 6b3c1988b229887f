package docpipe

import (
	"strings"
	"testing"
)

func TestPrintableRatio_Normal(t *testing.T) {
	if r := computePrintableRatio("Explain the waterfall model.\nDraw a DFD."); r != 1.0 {
		t.Fatalf("printable ratio = %f, want 1.0", r)
	}
}

func TestPrintableRatio_Garbage(t *testing.T) {
	text := "ab�\x01"
	r := computePrintableRatio(text)
	if r > 0.5 {
		t.Fatalf("printable ratio = %f, want <= 0.5", r)
	}
}

func TestWordlikeRatio(t *testing.T) {
	if r := computeWordlikeRatio("Define software engineering"); r != 1.0 {
		t.Fatalf("wordlike = %f", r)
	}
	if r := computeWordlikeRatio("a b c d"); r != 0 {
		t.Fatalf("single chars: wordlike = %f", r)
	}
}

func TestComputeQuality(t *testing.T) {
	pages := []Page{
		{Number: 1, Text: strings.Repeat("word ", 40)},
		{Number: 2},
	}
	q := computeQuality(pages)
	if q.PageCount != 2 || q.TextPages != 1 {
		t.Fatalf("pages = %d/%d", q.PageCount, q.TextPages)
	}
	if q.CharsPerPage < 90 || q.CharsPerPage > 110 {
		t.Fatalf("chars per page = %f", q.CharsPerPage)
	}
	if q.NeedsOCR() {
		t.Fatal("text document should not need OCR")
	}
}

func TestNeedsOCR(t *testing.T) {
	tests := []struct {
		name string
		q    *ExtractionQuality
		want bool
	}{
		{"scanned", &ExtractionQuality{PageCount: 3, CharsPerPage: 2, PrintableRatio: 1}, true},
		{"garbled", &ExtractionQuality{PageCount: 3, CharsPerPage: 900, PrintableRatio: 0.5}, true},
		{"clean", &ExtractionQuality{PageCount: 3, CharsPerPage: 900, PrintableRatio: 0.99}, false},
		{"no pages", &ExtractionQuality{}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		if got := tt.q.NeedsOCR(); got != tt.want {
			t.Errorf("%s: NeedsOCR = %v, want %v", tt.name, got, tt.want)
		}
	}
}
