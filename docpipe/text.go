package docpipe

import (
	"os"
	"strings"
)

// readText reads a plain text or Markdown file. Form feeds separate pages,
// which is how pdftotext and most print-to-text tools emit paginated output.
func readText(path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	chunks := strings.Split(text, "\f")
	pages := make([]Page, 0, len(chunks))
	for i, chunk := range chunks {
		pages = append(pages, Page{Number: i + 1, Text: trimBlankLines(chunk)})
	}
	// A trailing form feed does not open a page.
	if n := len(pages); n > 1 && pages[n-1].Text == "" {
		pages = pages[:n-1]
	}
	return pages, nil
}

// trimBlankLines drops whitespace-only lines and trailing spaces while
// keeping line order.
func trimBlankLines(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
