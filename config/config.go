// Package config loads paperlens settings from defaults, an optional YAML
// file and PAPERLENS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/hazyhaar/paperlens/docpipe"
	"github.com/hazyhaar/paperlens/embedding"
)

// Config is the full paperlens configuration.
type Config struct {
	SimilarityThreshold float64          `mapstructure:"similarity_threshold" yaml:"similarity_threshold" json:"similarity_threshold"`
	TopN                int              `mapstructure:"top_n" yaml:"top_n" json:"top_n"`
	WatermarkRatio      float64          `mapstructure:"watermark_ratio" yaml:"watermark_ratio" json:"watermark_ratio"`
	MinWatermarkPages   int              `mapstructure:"min_watermark_pages" yaml:"min_watermark_pages" json:"min_watermark_pages"`
	ChartPath           string           `mapstructure:"chart_path" yaml:"chart_path" json:"chart_path"`
	Parallelism         int              `mapstructure:"parallelism" yaml:"parallelism" json:"parallelism"`
	MaxFileSize         int64            `mapstructure:"max_file_size" yaml:"max_file_size" json:"max_file_size"`
	AllowedExtensions   []string         `mapstructure:"allowed_extensions" yaml:"allowed_extensions" json:"allowed_extensions"`
	PDFBackend          string           `mapstructure:"pdf_backend" yaml:"pdf_backend" json:"pdf_backend"`
	AnalysisTimeout     time.Duration    `mapstructure:"analysis_timeout" yaml:"analysis_timeout" json:"analysis_timeout"`
	LogLevel            string           `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat           string           `mapstructure:"log_format" yaml:"log_format" json:"log_format"`
	ListenAddr          string           `mapstructure:"listen_addr" yaml:"listen_addr" json:"listen_addr"`
	FeedbackPath        string           `mapstructure:"feedback_path" yaml:"feedback_path" json:"feedback_path"`
	Embedding           embedding.Config `mapstructure:"embedding" yaml:"embedding" json:"embedding"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SimilarityThreshold: 0.8,
		TopN:                10,
		WatermarkRatio:      0.7,
		MinWatermarkPages:   2,
		ChartPath:           "question_clusters.png",
		Parallelism:         4,
		MaxFileSize:         10 * 1024 * 1024,
		AllowedExtensions:   []string{".pdf", ".docx"},
		PDFBackend:          string(docpipe.PDFRows),
		AnalysisTimeout:     5 * time.Minute,
		LogLevel:            "info",
		LogFormat:           "json",
		ListenAddr:          ":8080",
		FeedbackPath:        "feedback.txt",
		Embedding: embedding.Config{
			Backend:    embedding.BackendTFIDF,
			Model:      "text-embedding-3-small",
			APIKey:     "${OPENAI_API_KEY}",
			BatchSize:  64,
			Timeout:    30 * time.Second,
			MaxRetries: 3,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("similarity_threshold", d.SimilarityThreshold)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("watermark_ratio", d.WatermarkRatio)
	v.SetDefault("min_watermark_pages", d.MinWatermarkPages)
	v.SetDefault("chart_path", d.ChartPath)
	v.SetDefault("parallelism", d.Parallelism)
	v.SetDefault("max_file_size", d.MaxFileSize)
	v.SetDefault("allowed_extensions", d.AllowedExtensions)
	v.SetDefault("pdf_backend", d.PDFBackend)
	v.SetDefault("analysis_timeout", d.AnalysisTimeout)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("feedback_path", d.FeedbackPath)
	v.SetDefault("embedding.backend", string(d.Embedding.Backend))
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.api_key", d.Embedding.APIKey)
	v.SetDefault("embedding.base_url", d.Embedding.BaseURL)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
	v.SetDefault("embedding.batch_size", d.Embedding.BatchSize)
	v.SetDefault("embedding.timeout", d.Embedding.Timeout)
	v.SetDefault("embedding.max_retries", d.Embedding.MaxRetries)
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
	logger    *slog.Logger
}

// NewManager creates a config manager and loads the initial config. An
// empty cfgFile searches ./paperlens.yaml then $HOME/.paperlens/; a
// missing file is not an error, an explicit one that does not exist is.
func NewManager(cfgFile string) (*Manager, error) {
	m := &Manager{v: viper.New(), logger: slog.Default()}
	if err := m.initViper(cfgFile); err != nil {
		return nil, err
	}
	cfg, err := m.load()
	if err != nil {
		return nil, err
	}
	m.config = cfg
	return m, nil
}

func (m *Manager) initViper(cfgFile string) error {
	v := m.v
	setDefaults(v)

	v.SetEnvPrefix("PAPERLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("paperlens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.paperlens")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config file: %w", err)
		}
	}
	return nil
}

func (m *Manager) load() (*Config, error) {
	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Embedding.APIKey = ResolveEnvVars(cfg.Embedding.APIKey)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// ConfigFile returns the file the configuration was read from, or "".
func (m *Manager) ConfigFile() string {
	return m.v.ConfigFileUsed()
}

// OnChange registers a callback run after every successful reload.
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// WatchConfig reloads the configuration when its file changes. Reloads
// that fail to parse or validate keep the previous configuration.
func (m *Manager) WatchConfig() {
	if m.v.ConfigFileUsed() == "" {
		return
	}
	m.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := m.load()
		if err != nil {
			m.logger.Warn("config reload rejected", "path", e.Name, "error", err)
			return
		}
		m.mu.Lock()
		m.config = cfg
		callbacks := make([]func(*Config), len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.mu.Unlock()

		m.logger.Info("config reloaded", "path", e.Name)
		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	m.v.WatchConfig()
}

// Validate checks every setting against its allowed range.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		bad("similarity_threshold must be in (0, 1], got %v", c.SimilarityThreshold)
	}
	if c.TopN < 1 {
		bad("top_n must be >= 1, got %d", c.TopN)
	}
	if c.WatermarkRatio <= 0 || c.WatermarkRatio > 1 {
		bad("watermark_ratio must be in (0, 1], got %v", c.WatermarkRatio)
	}
	if c.MinWatermarkPages < 1 {
		bad("min_watermark_pages must be >= 1, got %d", c.MinWatermarkPages)
	}
	if c.Parallelism < 1 {
		bad("parallelism must be >= 1, got %d", c.Parallelism)
	}
	if c.MaxFileSize <= 0 {
		bad("max_file_size must be > 0, got %d", c.MaxFileSize)
	}
	for _, ext := range c.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			bad("allowed_extensions entry %q must start with a dot", ext)
		}
	}
	switch docpipe.PDFBackend(c.PDFBackend) {
	case docpipe.PDFRows, docpipe.PDFStream:
	default:
		bad("pdf_backend must be %q or %q, got %q", docpipe.PDFRows, docpipe.PDFStream, c.PDFBackend)
	}
	if c.AnalysisTimeout < 0 {
		bad("analysis_timeout must not be negative, got %s", c.AnalysisTimeout)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		bad("log_format must be json or text, got %q", c.LogFormat)
	}
	switch c.Embedding.Backend {
	case embedding.BackendTFIDF, embedding.BackendOpenAI, embedding.BackendNone:
	default:
		bad("embedding.backend must be tfidf, openai or none, got %q", c.Embedding.Backend)
	}
	if c.Embedding.Dimensions < 0 {
		bad("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ParseLevel maps a log_level setting to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log_level must be debug, info, warn or error, got %q", s)
	}
}

// Docpipe returns the extraction settings.
func (c *Config) Docpipe(logger *slog.Logger) docpipe.Config {
	return docpipe.Config{
		MaxFileSize:       c.MaxFileSize,
		AllowedExtensions: c.AllowedExtensions,
		WatermarkRatio:    c.WatermarkRatio,
		MinWatermarkPages: c.MinWatermarkPages,
		PDFBackend:        docpipe.PDFBackend(c.PDFBackend),
		Logger:            logger,
	}
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string. Unset
// variables expand to "".
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRef.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}
