// Package idgen generates identifiers for analysis runs and requests.
// Callers that need deterministic IDs in tests swap the package-level
// generators.
package idgen

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// NanoID returns a Generator of random base-36 IDs of the given length.
func NanoID(length int) Generator {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	return func() string {
		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		for i := range buf {
			buf[i] = alphabet[int(buf[i])%len(alphabet)]
		}
		return string(buf)
	}
}

// UUIDv7 returns a Generator of RFC 9562 UUID v7 strings, which sort by
// creation time.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed prepends prefix to every ID from gen.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

var (
	// Run identifies one analysis over a set of papers.
	Run Generator = Prefixed("run_", UUIDv7())
	// Request identifies one HTTP or MCP call in logs.
	Request Generator = Prefixed("req_", NanoID(12))
)

// Parse validates an ID, with or without a type prefix such as "run_",
// and returns it in canonical form.
func Parse(s string) (string, error) {
	prefix, raw := "", s
	if i := strings.IndexByte(s, '_'); i >= 0 {
		prefix, raw = s[:i+1], s[i+1:]
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid id %q: %w", s, err)
	}
	return prefix + u.String(), nil
}
