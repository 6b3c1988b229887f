// Package docpipe reads exam papers page by page and produces clean text
// with running headers, footers and watermark stamps removed.
//
// Supported formats:
//   - .pdf  : per-page text (ledongthuc/pdf rows, or pdfcpu content streams)
//   - .docx : Microsoft Word (word/document.xml, explicit page breaks split pages)
//   - .odt  : OpenDocument Text (content.xml, soft page breaks split pages)
//   - .md   : Markdown, treated as plain text
//   - .txt  : plain text, form feeds split pages
//   - .html : HTML block elements, one page
//
// Usage:
//
//	pipe := docpipe.New(docpipe.Config{})
//	doc, err := pipe.Extract(ctx, "/papers/se-endsem-2024.pdf")
//	fmt.Println(doc.TextPages, "pages,", len(doc.Watermarks), "watermark lines")
package docpipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Pipeline is the document extraction engine.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// Detect returns the document format based on file extension.
func (p *Pipeline) Detect(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".docx":
		return FormatDocx, nil
	case ".odt":
		return FormatODT, nil
	case ".pdf":
		return FormatPDF, nil
	case ".md", ".markdown":
		return FormatMD, nil
	case ".txt", ".text":
		return FormatTXT, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", ext)
	}
}

// Validate checks that path exists, fits MaxFileSize and carries an
// allowed extension.
func (p *Pipeline) Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &ExtractionError{Path: path, Stage: "validate", Err: err}
	}
	if info.IsDir() {
		return &ExtractionError{Path: path, Stage: "validate", Err: errors.New("is a directory")}
	}
	if info.Size() > p.cfg.MaxFileSize {
		return &ExtractionError{Path: path, Stage: "validate",
			Err: fmt.Errorf("file too large: %d bytes (max %d MB)", info.Size(), p.cfg.MaxFileSize/1024/1024)}
	}
	if len(p.cfg.AllowedExtensions) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		if !slices.ContainsFunc(p.cfg.AllowedExtensions, func(a string) bool { return strings.EqualFold(a, ext) }) {
			return &ExtractionError{Path: path, Stage: "validate", Err: fmt.Errorf("file type %q not allowed", ext)}
		}
	}
	return nil
}

// ReadPages returns the ordered pages of a document. Pages without text
// are kept with an empty Text so page numbering stays intact.
func (p *Pipeline) ReadPages(ctx context.Context, path string) ([]Page, Format, error) {
	if err := p.Validate(path); err != nil {
		return nil, "", err
	}
	format, err := p.Detect(path)
	if err != nil {
		return nil, "", &ExtractionError{Path: path, Stage: "detect", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, format, err
	}

	p.logger.Debug("reading document", "path", path, "format", format)

	var pages []Page
	switch format {
	case FormatPDF:
		if p.cfg.PDFBackend == PDFStream {
			pages, err = readPDFStream(path)
		} else {
			pages, err = readPDFRows(path)
		}
	case FormatDocx:
		pages, err = readDocx(path)
	case FormatODT:
		pages, err = readODT(path)
	case FormatMD, FormatTXT:
		pages, err = readText(path)
	case FormatHTML:
		pages, err = readHTML(path)
	default:
		err = fmt.Errorf("no reader for format: %s", format)
	}
	if err != nil {
		return nil, format, &ExtractionError{Path: path, Format: format, Stage: "read", Err: err}
	}
	return pages, format, nil
}

// Extract reads a document and strips watermark lines from its text.
func (p *Pipeline) Extract(ctx context.Context, path string) (*Document, error) {
	pages, format, err := p.ReadPages(ctx, path)
	if err != nil {
		return nil, err
	}

	clean, marks := RemoveWatermarks(pages, p.cfg.WatermarkRatio, p.cfg.MinWatermarkPages)
	quality := computeQuality(pages)

	p.logger.Debug("document extracted",
		"path", path, "format", format,
		"pages", len(pages), "text_pages", quality.TextPages,
		"watermarks", len(marks))
	if quality.NeedsOCR() {
		p.logger.Warn("document has little extractable text, it may need OCR",
			"path", path, "chars_per_page", quality.CharsPerPage)
	}

	return &Document{
		Path:       path,
		Format:     format,
		Pages:      pages,
		PageCount:  len(pages),
		TextPages:  quality.TextPages,
		Watermarks: marks,
		CleanText:  clean,
		Quality:    quality,
	}, nil
}

// SupportedFormats returns all supported format extensions.
func SupportedFormats() []string {
	return []string{"pdf", "docx", "odt", "md", "txt", "html"}
}
