package docpipe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// readPDFRows reads page text by grouping positioned glyphs into rows,
// top to bottom, each row becoming one line.
func readPDFRows(path string) (pages []Page, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf parse: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdf open: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	pages = make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}
		rows, rerr := p.GetTextByRow()
		if rerr != nil {
			pages = append(pages, Page{Number: i})
			continue
		}
		pages = append(pages, Page{Number: i, Text: joinRows(rows)})
	}
	return pages, nil
}

// joinRows renders rows as newline-separated lines. Glyph runs separated
// by more than a fifth of the font size get a space between them.
func joinRows(rows pdf.Rows) string {
	sorted := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sorted = append(sorted, row)
		}
	}
	// PDF user space grows upwards.
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position > sorted[j].Position })

	lines := make([]string, 0, len(sorted))
	for _, row := range sorted {
		texts := make([]pdf.Text, len(row.Content))
		copy(texts, row.Content)
		sort.SliceStable(texts, func(i, j int) bool { return texts[i].X < texts[j].X })

		var sb strings.Builder
		prevEnd := 0.0
		for k, t := range texts {
			if t.S == "" {
				continue
			}
			if k > 0 && t.X-prevEnd > t.FontSize*0.2 {
				s := sb.String()
				if s != "" && !strings.HasSuffix(s, " ") && !strings.HasPrefix(t.S, " ") {
					sb.WriteByte(' ')
				}
			}
			sb.WriteString(t.S)
			prevEnd = t.X + t.W
		}
		if line := strings.TrimRight(sb.String(), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
