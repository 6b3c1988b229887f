package docpipe

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// readODT parses an .odt file by reading content.xml from the ZIP archive.
// Headings and paragraphs are lines. Soft page breaks, and paragraphs
// whose automatic style breaks before them, start a new page.
func readODT(path string) ([]Page, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var contentFile *zip.File
	for _, f := range r.File {
		if f.Name == "content.xml" {
			contentFile = f
			break
		}
	}
	if contentFile == nil {
		return nil, fmt.Errorf("content.xml not found in archive")
	}

	rc, err := contentFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open content.xml: %w", err)
	}
	defer rc.Close()

	var (
		pb    pageBuilder
		block strings.Builder
		depth int // nesting of text:p / text:h

		// Automatic paragraph styles that force a page break before them.
		breakStyles = make(map[string]bool)
		styleName   string
	)
	nesting := 0
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse content.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if nesting++; nesting > maxXMLDepth {
				return nil, fmt.Errorf("content.xml: nesting depth exceeds %d", maxXMLDepth)
			}
			switch t.Name.Local {
			case "style":
				styleName = xmlAttr(t, "name")
			case "paragraph-properties":
				if styleName != "" && xmlAttr(t, "break-before") == "page" {
					breakStyles[styleName] = true
				}
			case "p", "h":
				if depth == 0 {
					block.Reset()
					if breakStyles[xmlAttr(t, "style-name")] {
						pb.breakPage()
					}
				}
				depth++
			case "tab":
				block.WriteByte('\t')
			case "line-break":
				block.WriteByte('\n')
			case "s": // <text:s text:c="3"/> run of spaces
				n := 1
				if c, err := strconv.Atoi(xmlAttr(t, "c")); err == nil && c > 0 {
					n = c
				}
				block.WriteString(strings.Repeat(" ", n))
			case "soft-page-break":
				pb.line(block.String())
				block.Reset()
				pb.breakPage()
			}

		case xml.CharData:
			if depth > 0 {
				block.Write(t)
			}

		case xml.EndElement:
			nesting--
			if t.Name.Local == "style" {
				styleName = ""
			}
			if (t.Name.Local == "p" || t.Name.Local == "h") && depth > 0 {
				depth--
				if depth == 0 {
					pb.line(block.String())
					block.Reset()
				}
			}
		}
	}
	return pb.pages(), nil
}
