package docpipe

import "fmt"

// ExtractionError reports a document that could not be read: missing,
// too large, unsupported or corrupt. It is never retried.
type ExtractionError struct {
	Path   string
	Format Format
	Stage  string // "validate", "detect" or "read"
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("extract %s (%s): %s: %v", e.Path, e.Format, e.Stage, e.Err)
	}
	return fmt.Sprintf("extract %s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
