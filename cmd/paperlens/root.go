package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/paperlens/config"
)

var (
	cfgFile      string
	outputFormat string
	logLevel     string
	logFormat    string
)

var rootCmd = &cobra.Command{
	Use:   "paperlens",
	Short: "Find the questions exam papers keep asking",
	Long: `paperlens reads exam papers (pdf, docx, odt, txt, md, html), strips
running headers, footers and watermark stamps, splits the text into
numbered sub-questions and groups similar questions across papers.

The report lists the most frequent questions, topic terms, an estimated
difficulty and question-type counts, and draws a bar chart of the
largest clusters.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFormat {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unknown output format %q (text, json or yaml)", outputFormat)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./paperlens.yaml or ~/.paperlens/paperlens.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, json or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json or text (overrides config)")

	rootCmd.AddCommand(analyzeCmd, extractCmd, serveCmd, mcpCmd, configCmd, versionCmd)
}

// loadConfig reads the configuration and installs the process logger.
// Logs go to stderr; stdout carries command output only.
func loadConfig() (*config.Manager, *slog.Logger, error) {
	m, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	cfg := m.Get()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	logger, err := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	if f := m.ConfigFile(); f != "" {
		logger.Debug("config loaded", "path", f)
	}
	return m, logger, nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json", "":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log format must be json or text, got %q", format)
	}
}
