package embedding

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by a Model used after Close.
var ErrClosed = errors.New("embedding model closed")

// Error reports a failed embedding call. Clustering cannot proceed
// without vectors, so callers propagate it.
type Error struct {
	Backend Backend
	Model   string
	Texts   int
	Err     error
}

func (e *Error) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("embed %d texts (%s/%s): %v", e.Texts, e.Backend, e.Model, e.Err)
	}
	return fmt.Sprintf("embed %d texts (%s): %v", e.Texts, e.Backend, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func errCount(got, want int) error {
	return fmt.Errorf("backend returned %d vectors for %d texts", got, want)
}
