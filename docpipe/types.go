package docpipe

import "strings"

// Format identifies a document type.
type Format string

const (
	FormatDocx Format = "docx"
	FormatODT  Format = "odt"
	FormatPDF  Format = "pdf"
	FormatMD   Format = "md"
	FormatTXT  Format = "txt"
	FormatHTML Format = "html"
)

// Page is the text of one document page. Text is empty when the page has
// nothing extractable (scanned image, blank page).
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Lines splits the page text on newlines without trimming.
func (p Page) Lines() []string {
	if p.Text == "" {
		return nil
	}
	return strings.Split(p.Text, "\n")
}

// Document is the result of extracting one file.
type Document struct {
	Path       string             `json:"path"`
	Format     Format             `json:"format"`
	Pages      []Page             `json:"pages,omitempty"`
	PageCount  int                `json:"page_count"`
	TextPages  int                `json:"text_pages"`
	Watermarks []string           `json:"watermarks,omitempty"`
	CleanText  string             `json:"clean_text"`
	Quality    *ExtractionQuality `json:"quality,omitempty"`
}
