package docpipe

import "log/slog"

// PDFBackend selects the PDF text reader.
type PDFBackend string

const (
	// PDFRows groups positioned glyphs into rows (ledongthuc/pdf). Default.
	PDFRows PDFBackend = "rows"
	// PDFStream scans page content streams for text operators (pdfcpu).
	PDFStream PDFBackend = "stream"
)

// Config configures the document pipeline.
type Config struct {
	// MaxFileSize is the maximum file size to process (default: 10 MB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// AllowedExtensions restricts accepted files (e.g. ".pdf", ".docx").
	// Empty accepts every supported format.
	AllowedExtensions []string `json:"allowed_extensions" yaml:"allowed_extensions"`

	// WatermarkRatio is the fraction of text pages a line must appear on
	// to be treated as a running header, footer or stamp (default: 0.7).
	WatermarkRatio float64 `json:"watermark_ratio" yaml:"watermark_ratio"`

	// MinWatermarkPages disables watermark detection for documents with
	// fewer text pages (default: 2).
	MinWatermarkPages int `json:"min_watermark_pages" yaml:"min_watermark_pages"`

	// PDFBackend selects the PDF reader (default: rows).
	PDFBackend PDFBackend `json:"pdf_backend" yaml:"pdf_backend"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 10 * 1024 * 1024
	}
	if c.WatermarkRatio <= 0 || c.WatermarkRatio > 1 {
		c.WatermarkRatio = 0.7
	}
	if c.MinWatermarkPages <= 0 {
		c.MinWatermarkPages = 2
	}
	if c.PDFBackend == "" {
		c.PDFBackend = PDFRows
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
