// Package embedding converts question texts to vectors for similarity
// clustering.
//
// Backends share one contract: deterministic for fixed input, and every
// vector of one call has the same dimension.
//
//   - tfidf:  lexical TF-IDF over the texts of the call (default, offline)
//   - openai: dense vectors from any OpenAI-compatible /v1/embeddings server
//   - none:   zero vectors, every question lands in its own cluster
//
// Usage:
//
//	emb, err := embedding.New(embedding.Config{Backend: embedding.BackendOpenAI, Model: "text-embedding-3-small"})
//	vecs, err := emb.Embed(ctx, []string{"Define SDLC.", "What is SDLC?"})
package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Embedder converts texts to vectors, one per text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Func adapts a plain function to Embedder.
type Func func(ctx context.Context, texts []string) ([][]float32, error)

func (f Func) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return f(ctx, texts)
}

// Backend names an Embedder implementation.
type Backend string

const (
	BackendTFIDF  Backend = "tfidf"
	BackendOpenAI Backend = "openai"
	BackendNone   Backend = "none"
)

// Config configures an embedding backend.
type Config struct {
	// Backend selects the implementation (default: tfidf).
	Backend Backend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Model is the model name sent to the server (default: text-embedding-3-small).
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey for the server. Local servers usually accept any value.
	APIKey string `json:"-" yaml:"api_key" mapstructure:"api_key"`

	// BaseURL of an OpenAI-compatible server (e.g. "http://localhost:11434/v1").
	// Empty uses api.openai.com.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Dimensions requests shortened vectors from models that support it.
	// 0 keeps the model default. For the none backend it is the vector size.
	Dimensions int `json:"dimensions" yaml:"dimensions" mapstructure:"dimensions"`

	// BatchSize is the maximum number of texts per request (default: 64).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`

	// Timeout per HTTP request (default: 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries per batch on rate limits, server errors and network
	// failures (default: 3, negative disables retries).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client `json:"-" yaml:"-" mapstructure:"-"`

	// Logger for debug/error messages. Defaults to slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-" mapstructure:"-"`
}

func (c *Config) defaults() {
	if c.Backend == "" {
		c.Backend = BackendTFIDF
	}
	if c.Model == "" && c.Backend == BackendOpenAI {
		c.Model = "text-embedding-3-small"
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 64
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	} else if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// New builds the configured backend.
func New(cfg Config) (Embedder, error) {
	cfg.defaults()
	switch cfg.Backend {
	case BackendTFIDF:
		return NewTFIDF(), nil
	case BackendOpenAI:
		return newOpenAIEmbedder(cfg), nil
	case BackendNone:
		dim := cfg.Dimensions
		if dim <= 0 {
			dim = 1
		}
		return &noopEmbedder{dim: dim}, nil
	default:
		return nil, fmt.Errorf("unknown embedding backend %q", cfg.Backend)
	}
}

// noopEmbedder returns zero vectors.
type noopEmbedder struct {
	dim int
}

func (n *noopEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, n.dim)
	}
	return out, nil
}
