package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// writeOutput writes data as JSON or YAML, or calls text for the text
// format.
func writeOutput(w io.Writer, format string, data any, text func(io.Writer) error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	case "text":
		return text(w)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// Status lines go to stderr, colored when it is a terminal.
var (
	okLine   = color.New(color.FgGreen).SprintFunc()
	warnLine = color.New(color.FgYellow).SprintFunc()
)

func statusf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, okLine(fmt.Sprintf(format, args...)))
}

func warnf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnLine("warning: "+fmt.Sprintf(format, args...)))
}
