package docpipe

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	pipe := New(Config{})

	tests := []struct {
		path   string
		format Format
	}{
		{"paper.docx", FormatDocx},
		{"paper.odt", FormatODT},
		{"paper.pdf", FormatPDF},
		{"paper.PDF", FormatPDF},
		{"paper.md", FormatMD},
		{"paper.markdown", FormatMD},
		{"paper.txt", FormatTXT},
		{"paper.html", FormatHTML},
		{"paper.htm", FormatHTML},
	}
	for _, tt := range tests {
		f, err := pipe.Detect(tt.path)
		if err != nil {
			t.Errorf("Detect(%q): %v", tt.path, err)
			continue
		}
		if f != tt.format {
			t.Errorf("Detect(%q) = %q, want %q", tt.path, f, tt.format)
		}
	}

	if _, err := pipe.Detect("paper.xyz"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestSupportedFormats(t *testing.T) {
	if formats := SupportedFormats(); len(formats) != 6 {
		t.Fatalf("expected 6 formats, got %d: %v", len(formats), formats)
	}
}

// --- validation ---

func TestValidate_Missing(t *testing.T) {
	_, err := New(Config{}).Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	var ee *ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *ExtractionError, got %T: %v", err, err)
	}
	if ee.Stage != "validate" {
		t.Fatalf("stage = %q, want validate", ee.Stage)
	}
}

func TestValidate_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	os.WriteFile(path, []byte(strings.Repeat("x", 2048)), 0644)

	err := New(Config{MaxFileSize: 1024}).Validate(path)
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestValidate_ExtensionNotAllowed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(path, []byte("Q1) a) x [1]"), 0644)

	pipe := New(Config{AllowedExtensions: []string{".pdf", ".docx"}})
	if err := pipe.Validate(path); err == nil {
		t.Fatal("expected .txt to be rejected")
	}
	if err := New(Config{AllowedExtensions: []string{".TXT"}}).Validate(path); err != nil {
		t.Fatalf("extension match should ignore case: %v", err)
	}
}

func TestValidate_Directory(t *testing.T) {
	if err := New(Config{}).Validate(t.TempDir()); err == nil {
		t.Fatal("expected directory to be rejected")
	}
}

// --- text ---

func TestExtractText_FormFeedPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.txt")
	os.WriteFile(path, []byte("Q1) a) Define X. [5]\r\n\r\nb) Explain Y. [10]\fQ2) a) Define Z. [3]\f"), 0644)

	doc, err := New(Config{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatTXT {
		t.Fatalf("expected txt format, got %s", doc.Format)
	}
	if doc.PageCount != 2 {
		t.Fatalf("page count = %d, want 2", doc.PageCount)
	}
	want := "Q1) a) Define X. [5]\nb) Explain Y. [10]\nQ2) a) Define Z. [3]"
	if doc.CleanText != want {
		t.Fatalf("clean text = %q, want %q", doc.CleanText, want)
	}
}

func TestExtractMarkdown_AsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.md")
	os.WriteFile(path, []byte("# Software Engineering\n\nQ1) a) What is SDLC? [4]"), 0644)

	doc, err := New(Config{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatMD {
		t.Fatalf("format = %s", doc.Format)
	}
	if !strings.Contains(doc.CleanText, "Q1) a) What is SDLC? [4]") {
		t.Fatalf("clean text = %q", doc.CleanText)
	}
}

func TestExtract_Cancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.txt")
	os.WriteFile(path, []byte("text"), 0644)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Config{}).Extract(ctx, path); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// --- docx ---

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	for name, body := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(body))
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
}

const docxHeader = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

func TestExtractDocx_Pages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.docx")
	writeZip(t, path, map[string]string{"word/document.xml": docxHeader + `
<w:p><w:r><w:t>SE Endsem 2024</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">Q1) a) Define </w:t></w:r><w:r><w:t>SDLC. [5]</w:t></w:r></w:p>
<w:p><w:r><w:br w:type="page"/></w:r></w:p>
<w:p><w:r><w:t>SE Endsem 2024</w:t></w:r></w:p>
<w:p><w:r><w:t>b) Explain</w:t><w:tab/><w:t>Scrum. [10]</w:t></w:r></w:p>
</w:body></w:document>`})

	doc, err := New(Config{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.PageCount != 2 {
		t.Fatalf("page count = %d, want 2", doc.PageCount)
	}
	want := "Q1) a) Define SDLC. [5]\nb) Explain\tScrum. [10]"
	if doc.CleanText != want {
		t.Fatalf("clean text = %q, want %q", doc.CleanText, want)
	}
	if len(doc.Watermarks) != 1 || doc.Watermarks[0] != "SE Endsem 2024" {
		t.Fatalf("watermarks = %q", doc.Watermarks)
	}
}

func TestDOCX_MissingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.docx")
	writeZip(t, path, map[string]string{"[Content_Types].xml": "<Types/>"})

	_, err := New(Config{}).Extract(context.Background(), path)
	var ee *ExtractionError
	if !errors.As(err, &ee) || ee.Stage != "read" {
		t.Fatalf("expected read-stage ExtractionError, got %v", err)
	}
}

func TestDOCX_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.docx")
	os.WriteFile(path, []byte("this is not a zip archive"), 0644)

	if _, err := New(Config{}).Extract(context.Background(), path); err == nil {
		t.Fatal("expected error for corrupt docx")
	}
}

func TestDOCX_XMLBomb(t *testing.T) {
	// WHAT: DOCX with deeply nested XML returns depth error.
	// WHY: XML bomb defense.
	var xmlB strings.Builder
	xmlB.WriteString(docxHeader)
	for i := 0; i < 300; i++ {
		xmlB.WriteString("<w:p>")
	}
	xmlB.WriteString("<w:r><w:t>deep</w:t></w:r>")
	for i := 0; i < 300; i++ {
		xmlB.WriteString("</w:p>")
	}
	xmlB.WriteString("</w:body></w:document>")

	path := filepath.Join(t.TempDir(), "bomb.docx")
	writeZip(t, path, map[string]string{"word/document.xml": xmlB.String()})

	_, err := readDocx(path)
	if err == nil || !strings.Contains(err.Error(), "nesting depth") {
		t.Fatalf("expected nesting depth error, got: %v", err)
	}
}

// --- odt ---

const odtHeader = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0"><office:body><office:text>`

func TestExtractODT_Pages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.odt")
	writeZip(t, path, map[string]string{"content.xml": odtHeader + `
<text:h text:outline-level="1">Unit Test Paper</text:h>
<text:p>Q1) a) What is<text:s text:c="2"/>coupling? [4]</text:p>
<text:soft-page-break/>
<text:p>b) What is cohesion?<text:line-break/>Give examples. [6]</text:p>
</office:text></office:body></office:document-content>`})

	doc, err := New(Config{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.PageCount != 2 {
		t.Fatalf("page count = %d, want 2", doc.PageCount)
	}
	want := "Unit Test Paper\nQ1) a) What is  coupling? [4]\nb) What is cohesion?\nGive examples. [6]"
	if doc.CleanText != want {
		t.Fatalf("clean text = %q, want %q", doc.CleanText, want)
	}
}

func TestExtractODT_StyleBreakBefore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.odt")
	writeZip(t, path, map[string]string{"content.xml": `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0"
  xmlns:fo="urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0"
  xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">
<office:automatic-styles>
<style:style style:name="P1" style:family="paragraph"><style:paragraph-properties fo:break-before="page"/></style:style>
</office:automatic-styles>
<office:body><office:text>
<text:p>Q1) a) Define X. [2]</text:p>
<text:p text:style-name="P1">Q2) a) Define Y. [2]</text:p>
</office:text></office:body></office:document-content>`})

	pages, err := readODT(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 || pages[1].Text != "Q2) a) Define Y. [2]" {
		t.Fatalf("pages = %+v", pages)
	}
}

func TestODT_XMLBomb(t *testing.T) {
	// WHAT: ODT with deeply nested XML returns depth error.
	// WHY: XML bomb defense for ODT format.
	var xmlB strings.Builder
	xmlB.WriteString(odtHeader)
	for i := 0; i < 300; i++ {
		xmlB.WriteString("<text:p>")
	}
	xmlB.WriteString("deep text")
	for i := 0; i < 300; i++ {
		xmlB.WriteString("</text:p>")
	}
	xmlB.WriteString("</office:text></office:body></office:document-content>")

	path := filepath.Join(t.TempDir(), "bomb.odt")
	writeZip(t, path, map[string]string{"content.xml": xmlB.String()})

	_, err := readODT(path)
	if err == nil || !strings.Contains(err.Error(), "nesting depth") {
		t.Fatalf("expected nesting depth error, got: %v", err)
	}
}

// --- html ---

func extractHTMLString(t *testing.T, body string) *Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.html")
	os.WriteFile(path, []byte(body), 0644)
	doc, err := New(Config{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestExtractHTML_BlocksAreLines(t *testing.T) {
	doc := extractHTMLString(t, `<!DOCTYPE html>
<html><head><title>Paper</title></head>
<body>
<nav>Home | Papers</nav>
<h1>Question Bank</h1>
<p>Q1) a) Define   <b>SDLC</b>. [5]</p>
<ul><li>b) Explain Scrum. [10]</li></ul>
</body></html>`)

	want := "Question Bank\nQ1) a) Define SDLC . [5]\nb) Explain Scrum. [10]"
	if doc.CleanText != want {
		t.Fatalf("clean text = %q, want %q", doc.CleanText, want)
	}
	if doc.PageCount != 1 {
		t.Fatalf("page count = %d", doc.PageCount)
	}
}

func TestHTML_HiddenTextExcluded(t *testing.T) {
	// WHAT: text hidden with CSS never reaches the clean text.
	// WHY: hidden text is an injection vector.
	tests := []struct {
		name, style string
	}{
		{"display", "display:none"},
		{"visibility", "visibility:hidden"},
		{"font-size", "font-size:0px"},
		{"opacity", "opacity:0"},
	}
	for _, tt := range tests {
		doc := extractHTMLString(t, `<html><body><p>Visible text here</p><div style="`+tt.style+`"><p>secret payload</p></div></body></html>`)
		if strings.Contains(doc.CleanText, "secret payload") {
			t.Errorf("%s: hidden text leaked: %q", tt.name, doc.CleanText)
		}
		if !strings.Contains(doc.CleanText, "Visible text") {
			t.Errorf("%s: visible text missing", tt.name)
		}
	}
}

func TestHTML_FallbackToBodyText(t *testing.T) {
	doc := extractHTMLString(t, `<html><body><div>Q1) a) Loose text [2]</div></body></html>`)
	if doc.CleanText != "Q1) a) Loose text [2]" {
		t.Fatalf("clean text = %q", doc.CleanText)
	}
}
