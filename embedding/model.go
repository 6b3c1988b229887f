package embedding

import (
	"context"
	"sync"
)

// Model is the process-wide embedder. The backend is built on the first
// Embed call and reused until Close; building it again per call would
// repeat model start-up cost for every analysis.
type Model struct {
	cfg Config

	once sync.Once
	emb  Embedder
	err  error

	mu     sync.RWMutex
	closed bool
}

var (
	modelMu sync.Mutex
	current *Model
)

// Load returns the process-wide Model, creating it from cfg on first use.
// Later calls return the same Model and ignore cfg; Close it to load a
// different configuration.
func Load(cfg Config) *Model {
	modelMu.Lock()
	defer modelMu.Unlock()
	if current == nil {
		cfg.defaults()
		current = &Model{cfg: cfg}
	}
	return current
}

// Replace installs a new process-wide Model built from cfg and returns it.
// The previous Model is detached, not closed: callers still holding it
// keep embedding with the old settings until they drop it.
func Replace(cfg Config) *Model {
	cfg.defaults()
	m := &Model{cfg: cfg}
	modelMu.Lock()
	current = m
	modelMu.Unlock()
	return m
}

// Close releases the process-wide Model. Embed on a closed Model returns
// ErrClosed. Closing when nothing is loaded is a no-op.
func Close() error {
	modelMu.Lock()
	m := current
	current = nil
	modelMu.Unlock()

	if m == nil {
		return nil
	}
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Backend reports the configured backend.
func (m *Model) Backend() Backend { return m.cfg.Backend }

// Embed builds the backend if needed and embeds texts. Failures are
// returned as *Error.
func (m *Model) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	m.once.Do(func() {
		m.emb, m.err = New(m.cfg)
		if m.err == nil {
			m.cfg.Logger.Info("embedding backend ready", "backend", m.cfg.Backend, "model", m.cfg.Model)
		}
	})
	if m.err != nil {
		return nil, &Error{Backend: m.cfg.Backend, Model: m.cfg.Model, Texts: len(texts), Err: m.err}
	}

	vecs, err := m.emb.Embed(ctx, texts)
	if err != nil {
		return nil, &Error{Backend: m.cfg.Backend, Model: m.cfg.Model, Texts: len(texts), Err: err}
	}
	if len(vecs) != len(texts) {
		return nil, &Error{Backend: m.cfg.Backend, Model: m.cfg.Model, Texts: len(texts),
			Err: errCount(len(vecs), len(texts))}
	}
	return vecs, nil
}
