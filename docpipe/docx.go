package docpipe

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// readDocx parses a .docx file by reading word/document.xml from the ZIP
// archive. Each paragraph is one line; hard page breaks and the page
// breaks Word recorded at its last layout start a new page.
func readDocx(path string) ([]Page, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	var (
		pb          pageBuilder
		para        strings.Builder
		inParagraph bool
		inText      bool
	)
	nesting := 0
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if nesting++; nesting > maxXMLDepth {
				return nil, fmt.Errorf("document.xml: nesting depth exceeds %d", maxXMLDepth)
			}
			switch t.Name.Local {
			case "p":
				inParagraph = true
				para.Reset()
			case "t":
				inText = inParagraph
			case "tab":
				if inParagraph {
					para.WriteByte('\t')
				}
			case "br":
				if xmlAttr(t, "type") == "page" {
					pb.line(para.String())
					para.Reset()
					pb.breakPage()
				} else if inParagraph {
					para.WriteByte('\n')
				}
			case "lastRenderedPageBreak":
				pb.line(para.String())
				para.Reset()
				pb.breakPage()
			}

		case xml.CharData:
			if inText {
				para.Write(t)
			}

		case xml.EndElement:
			nesting--
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inParagraph {
					inParagraph = false
					pb.line(para.String())
					para.Reset()
				}
			}
		}
	}
	return pb.pages(), nil
}

// maxXMLDepth bounds element nesting in zip-based formats.
const maxXMLDepth = 256

func xmlAttr(t xml.StartElement, local string) string {
	for _, attr := range t.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

// pageBuilder collects lines into pages for the zip-based formats.
type pageBuilder struct {
	done  []Page
	lines []string
}

// line appends non-blank text, split on embedded newlines.
func (b *pageBuilder) line(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			b.lines = append(b.lines, strings.TrimSpace(l))
		}
	}
}

// breakPage closes the current page; consecutive breaks do not create
// empty pages.
func (b *pageBuilder) breakPage() {
	if len(b.lines) == 0 {
		return
	}
	b.done = append(b.done, Page{Number: len(b.done) + 1, Text: strings.Join(b.lines, "\n")})
	b.lines = nil
}

func (b *pageBuilder) pages() []Page {
	b.breakPage()
	return b.done
}
