package docpipe

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// readPDFStream reads page text by scanning each page's content stream
// for text-showing operators. Line breaks follow the text positioning
// operators (Td, TD, T*, Tm, ', ").
func readPDFStream(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make([]Page, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pages = append(pages, Page{Number: pageNr, Text: streamPageText(ctx, pageNr)})
	}
	return pages, nil
}

// streamPageText extracts the text of one page. Unreadable content yields "".
func streamPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromContentStream(data)
}

// lineWriter accumulates lines of shown text.
type lineWriter struct {
	lines []string
	cur   strings.Builder
}

func (w *lineWriter) text(s string) { w.cur.WriteString(s) }

func (w *lineWriter) space() {
	if w.cur.Len() > 0 && !strings.HasSuffix(w.cur.String(), " ") {
		w.cur.WriteByte(' ')
	}
}

func (w *lineWriter) newline() {
	if w.cur.Len() == 0 {
		return
	}
	w.lines = append(w.lines, strings.TrimRight(w.cur.String(), " "))
	w.cur.Reset()
}

func (w *lineWriter) String() string {
	w.newline()
	return strings.Join(w.lines, "\n")
}

// textFromContentStream interprets the text operators of a content stream.
// Operands are collected until an operator keyword consumes them.
func textFromContentStream(data []byte) string {
	var out lineWriter
	var operands []string // decoded strings for string operands, raw text otherwise
	var isString []bool

	push := func(s string, str bool) {
		operands = append(operands, s)
		isString = append(isString, str)
	}
	num := func(i int) float64 {
		if i < 0 || i >= len(operands) || isString[i] {
			return 0
		}
		v, _ := strconv.ParseFloat(operands[i], 64)
		return v
	}
	lastString := func() (string, bool) {
		for i := len(operands) - 1; i >= 0; i-- {
			if isString[i] {
				return operands[i], true
			}
		}
		return "", false
	}

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case isPDFSpace(c):
			i++
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '(':
			raw, next := readLiteral(data, i)
			push(decodePDFString(raw), true)
			i = next
		case c == '<' && i+1 < len(data) && data[i+1] == '<':
			i = skipDict(data, i)
		case c == '<':
			end := i + 1
			for end < len(data) && data[end] != '>' {
				end++
			}
			push(decodeHexString(data[i+1:min(end, len(data))]), true)
			i = end + 1
		case c == '[':
			s, next := readTJArray(data, i)
			push(s, true)
			i = next
		case c == '/':
			end := i + 1
			for end < len(data) && !isPDFSpace(data[end]) && !isPDFDelim(data[end]) {
				end++
			}
			push(string(data[i:end]), false)
			i = end
		case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
			end := i + 1
			for end < len(data) && (data[end] == '.' || (data[end] >= '0' && data[end] <= '9')) {
				end++
			}
			push(string(data[i:end]), false)
			i = end
		default:
			end := i
			for end < len(data) && !isPDFSpace(data[end]) && !isPDFDelim(data[end]) {
				end++
			}
			if end == i {
				end++
			}
			op := string(data[i:end])
			i = end

			switch op {
			case "Tj", "TJ":
				if s, ok := lastString(); ok {
					out.text(s)
				}
			case "'", `"`:
				out.newline()
				if s, ok := lastString(); ok {
					out.text(s)
				}
			case "Td", "TD":
				if num(len(operands)-1) != 0 {
					out.newline()
				} else if num(len(operands)-2) != 0 {
					out.space()
				}
			case "T*", "Tm", "ET":
				out.newline()
			}
			operands = operands[:0]
			isString = isString[:0]
		}
	}
	return out.String()
}

// readLiteral returns the raw bytes of a (string) starting at data[start],
// honouring nested parentheses and backslash escapes, and the index after it.
func readLiteral(data []byte, start int) ([]byte, int) {
	depth := 0
	for i := start; i < len(data); i++ {
		switch data[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return data[start+1 : i], i + 1
			}
		}
	}
	return data[min(start+1, len(data)):], len(data)
}

// readTJArray concatenates the strings of a TJ array. Kerning offsets of
// a quarter em or more are rendered as a space.
func readTJArray(data []byte, start int) (string, int) {
	var sb strings.Builder
	i := start + 1
	for i < len(data) && data[i] != ']' {
		switch c := data[i]; {
		case c == '(':
			raw, next := readLiteral(data, i)
			sb.WriteString(decodePDFString(raw))
			i = next
		case c == '<':
			end := i + 1
			for end < len(data) && data[end] != '>' {
				end++
			}
			sb.WriteString(decodeHexString(data[i+1 : min(end, len(data))]))
			i = end + 1
		case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
			end := i + 1
			for end < len(data) && (data[end] == '.' || (data[end] >= '0' && data[end] <= '9')) {
				end++
			}
			if v, err := strconv.ParseFloat(string(data[i:end]), 64); err == nil && v <= -250 {
				if s := sb.String(); s != "" && !strings.HasSuffix(s, " ") {
					sb.WriteByte(' ')
				}
			}
			i = end
		default:
			i++
		}
	}
	return sb.String(), i + 1
}

func skipDict(data []byte, start int) int {
	depth := 0
	for i := start; i+1 < len(data); i++ {
		if data[i] == '<' && data[i+1] == '<' {
			depth++
			i++
		} else if data[i] == '>' && data[i+1] == '>' {
			depth--
			i++
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(data)
}

func isPDFSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isPDFDelim(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

// decodeHexString decodes a <48656C6C6F> string; odd lengths pad with 0.
func decodeHexString(raw []byte) string {
	var clean []byte
	for _, c := range raw {
		if !isPDFSpace(c) {
			clean = append(clean, c)
		}
	}
	if len(clean)%2 == 1 {
		clean = append(clean, '0')
	}
	b, err := hex.DecodeString(string(clean))
	if err != nil {
		return ""
	}
	return string(b)
}

// decodePDFString handles basic PDF escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b', 'f':
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		case '\r', '\n':
			// Line continuation.
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}
