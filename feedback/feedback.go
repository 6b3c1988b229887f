// Package feedback keeps a flat-file log of user feedback on analyses.
//
// Each entry is one line, "<RFC3339 time> - <type> - <text>", appended to
// the log file. [Log.Handler] serves the submit and list endpoints for
// mounting under a chi router.
package feedback

import (
	"bufio"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultType is used when an entry carries no type.
const DefaultType = "general"

// maxTextLen bounds stored feedback text in bytes.
const maxTextLen = 5000

// Config holds the settings needed to open a feedback Log.
type Config struct {
	Path   string // log file, created on first append
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Path == "" {
		c.Path = "feedback.txt"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Entry is one feedback line.
type Entry struct {
	Time time.Time `json:"time"`
	Type string    `json:"type"`
	Text string    `json:"text"`
}

func (e Entry) line() string {
	return fmt.Sprintf("%s - %s - %s\n", e.Time.Format(time.RFC3339), e.Type, e.Text)
}

// Log appends feedback entries to a file. It is safe for concurrent use
// within one process.
type Log struct {
	mu     sync.Mutex
	path   string
	policy *bluemonday.Policy
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Log writing to cfg.Path.
func New(cfg Config) *Log {
	cfg.defaults()
	return &Log{
		path:   cfg.Path,
		policy: bluemonday.StrictPolicy(),
		logger: cfg.Logger,
		now:    time.Now,
	}
}

// Path returns the log file path.
func (l *Log) Path() string { return l.path }

// Append sanitizes text, stores it and returns the stored entry. Markup is
// stripped and whitespace runs, newlines included, collapse to one space
// so every entry stays on one line.
func (l *Log) Append(typ, text string) (Entry, error) {
	text = l.clean(text)
	if text == "" {
		return Entry{}, errors.New("feedback text is required")
	}
	if len(text) > maxTextLen {
		text = truncate(text, maxTextLen)
	}
	typ = l.clean(typ)
	typ = strings.ReplaceAll(typ, " - ", " ")
	if typ == "" {
		typ = DefaultType
	}

	e := Entry{Time: l.now().UTC().Truncate(time.Second), Type: typ, Text: text}

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return Entry{}, fmt.Errorf("feedback: open log: %w", err)
	}
	if _, err := f.WriteString(e.line()); err != nil {
		f.Close()
		return Entry{}, fmt.Errorf("feedback: write log: %w", err)
	}
	if err := f.Close(); err != nil {
		return Entry{}, fmt.Errorf("feedback: close log: %w", err)
	}
	l.logger.Debug("feedback stored", "path", l.path, "type", e.Type)
	return e, nil
}

// Recent returns up to limit entries, newest first. A missing log file
// yields no entries. Lines that do not parse are skipped.
func (l *Log) Recent(limit int) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("feedback: open log: %w", err)
	}
	defer f.Close()

	var all []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if e, ok := parseLine(sc.Text()); ok {
			all = append(all, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("feedback: read log: %w", err)
	}

	out := make([]Entry, 0, min(limit, len(all)))
	for i := len(all) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func parseLine(s string) (Entry, bool) {
	parts := strings.SplitN(s, " - ", 3)
	if len(parts) != 3 {
		return Entry{}, false
	}
	t, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return Entry{}, false
	}
	return Entry{Time: t, Type: parts[1], Text: parts[2]}, true
}

func (l *Log) clean(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(l.policy.Sanitize(s))), " ")
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	for n > 0 && n < len(s) && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
