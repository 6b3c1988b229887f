package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/paperlens/analyzer"
	"github.com/hazyhaar/paperlens/config"
	"github.com/hazyhaar/paperlens/embedding"
	"github.com/hazyhaar/paperlens/report"
)

var analyzeFlags struct {
	threshold      float64
	top            int
	chart          string
	noChart        bool
	watermarkRatio float64
	embedder       string
	parallelism    int
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <paper>...",
	Short: "Cluster the questions of one or more papers and report the frequent ones",
	Long: `Extract every paper, split it into sub-questions, group similar
questions across all papers and print the analysis report.

Examples:
  paperlens analyze se-2022.pdf se-2023.pdf se-2024.docx
  paperlens analyze papers/*.pdf --threshold 0.75 --top 5
  paperlens analyze paper.pdf --embedder openai -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, logger, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := m.Get()
		applyAnalyzeFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		defer embedding.Close()

		acfg := analyzerConfig(cfg, logger)
		acfg.SkipChart = analyzeFlags.noChart
		a, err := analyzer.New(acfg)
		if err != nil {
			return err
		}
		res, err := a.Analyze(cmd.Context(), args...)
		if err != nil {
			return err
		}

		stderr := cmd.ErrOrStderr()
		for _, w := range res.Warnings {
			warnf(stderr, "%s", w)
		}
		if res.ChartPath != "" {
			statusf(stderr, "%d questions in %d clusters, chart written to %s", len(res.Questions), res.Assignment.Count(), res.ChartPath)
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, res, func(w io.Writer) error {
			_, err := io.WriteString(w, report.Format(res))
			return err
		})
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.Float64Var(&analyzeFlags.threshold, "threshold", 0.8, "similarity at or above which questions share a cluster, in (0, 1]")
	f.IntVar(&analyzeFlags.top, "top", 10, "clusters to chart and summarize")
	f.StringVar(&analyzeFlags.chart, "chart", report.DefaultChartPath, "chart image path")
	f.BoolVar(&analyzeFlags.noChart, "no-chart", false, "skip the chart")
	f.Float64Var(&analyzeFlags.watermarkRatio, "watermark-ratio", 0.7, "fraction of pages a line must recur on to be dropped")
	f.StringVar(&analyzeFlags.embedder, "embedder", "tfidf", "embedding backend: tfidf, openai or none")
	f.IntVar(&analyzeFlags.parallelism, "parallelism", 4, "papers extracted concurrently")
}

// applyAnalyzeFlags overrides config values with the flags set on the
// command line.
func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("threshold") {
		cfg.SimilarityThreshold = analyzeFlags.threshold
	}
	if f.Changed("top") {
		cfg.TopN = analyzeFlags.top
	}
	if f.Changed("chart") {
		cfg.ChartPath = analyzeFlags.chart
	}
	if f.Changed("watermark-ratio") {
		cfg.WatermarkRatio = analyzeFlags.watermarkRatio
	}
	if f.Changed("embedder") {
		cfg.Embedding.Backend = embedding.Backend(analyzeFlags.embedder)
	}
	if f.Changed("parallelism") {
		cfg.Parallelism = analyzeFlags.parallelism
	}
}

func analyzerConfig(cfg *config.Config, logger *slog.Logger) analyzer.Config {
	ec := cfg.Embedding
	ec.Logger = logger
	return analyzer.Config{
		SimilarityThreshold: cfg.SimilarityThreshold,
		TopN:                cfg.TopN,
		ChartPath:           cfg.ChartPath,
		Parallelism:         cfg.Parallelism,
		Docpipe:             cfg.Docpipe(logger),
		Embedding:           ec,
		Logger:              logger,
	}
}
