// Package analyzer runs the full paper analysis: extract each paper,
// segment and normalize its questions, cluster them by similarity and
// build the frequency report with its chart.
//
// Usage:
//
//	a, err := analyzer.New(analyzer.Config{SimilarityThreshold: 0.8, TopN: 10})
//	res, err := a.Analyze(ctx, "se-2023.pdf", "se-2024.pdf")
//	fmt.Print(report.Format(res))
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/paperlens/cluster"
	"github.com/hazyhaar/paperlens/docpipe"
	"github.com/hazyhaar/paperlens/embedding"
	"github.com/hazyhaar/paperlens/idgen"
	"github.com/hazyhaar/paperlens/kit"
	"github.com/hazyhaar/paperlens/question"
	"github.com/hazyhaar/paperlens/report"
)

// ErrInvalidRequest wraps request settings that fail validation.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNoQuestions marks a run whose papers yielded no question records.
// It is reported in Analysis.Warnings, never returned.
var ErrNoQuestions = errors.New("no questions found")

// Config configures an Analyzer.
type Config struct {
	// SimilarityThreshold is the inclusive cosine similarity for two
	// questions to share a cluster, in (0, 1] (default: 0.8).
	SimilarityThreshold float64

	// TopN bounds the clusters charted and summarized (default: 10).
	TopN int

	// ChartPath is where the bar chart is written
	// (default: report.DefaultChartPath).
	ChartPath string

	// SkipChart disables chart rendering.
	SkipChart bool

	// Parallelism bounds concurrent document extraction (default: 4).
	Parallelism int

	// Pipeline extracts documents. Nil builds one from Docpipe.
	Pipeline *docpipe.Pipeline
	Docpipe  docpipe.Config

	// Embedder vectorizes question texts. Nil uses the process-wide
	// model loaded from Embedding.
	Embedder  embedding.Embedder
	Embedding embedding.Config

	// Topics labels the largest clusters (default: report.TermTopics{}).
	Topics report.TopicModeler

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = 0.8
	}
	if c.TopN <= 0 {
		c.TopN = 10
	}
	if c.ChartPath == "" {
		c.ChartPath = report.DefaultChartPath
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 4
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Topics == nil {
		c.Topics = report.TermTopics{}
	}
}

// Analyzer runs analyses. It is safe for concurrent use; concurrent runs
// sharing a chart path overwrite each other's chart.
type Analyzer struct {
	cfg    Config
	pipe   *docpipe.Pipeline
	emb    embedding.Embedder
	logger *slog.Logger

	lastChart atomic.Pointer[string] // most recent chart written
}

// New validates cfg and returns an Analyzer.
func New(cfg Config) (*Analyzer, error) {
	cfg.defaults()
	if err := checkThreshold(cfg.SimilarityThreshold); err != nil {
		return nil, err
	}
	pipe := cfg.Pipeline
	if pipe == nil {
		dc := cfg.Docpipe
		if dc.Logger == nil {
			dc.Logger = cfg.Logger
		}
		pipe = docpipe.New(dc)
	}
	emb := cfg.Embedder
	if emb == nil {
		ec := cfg.Embedding
		if ec.Logger == nil {
			ec.Logger = cfg.Logger
		}
		emb = embedding.Load(ec)
	}
	return &Analyzer{cfg: cfg, pipe: pipe, emb: emb, logger: cfg.Logger}, nil
}

func checkThreshold(t float64) error {
	if t <= 0 || t > 1 {
		return fmt.Errorf("%w: similarity threshold %v outside (0, 1]", ErrInvalidRequest, t)
	}
	return nil
}

// ChartPath returns the chart written by the most recent run, or the
// configured path when no run has charted yet.
func (a *Analyzer) ChartPath() string {
	if p := a.lastChart.Load(); p != nil {
		return *p
	}
	return a.cfg.ChartPath
}

// Pipeline returns the document pipeline the Analyzer extracts with.
func (a *Analyzer) Pipeline() *docpipe.Pipeline { return a.pipe }

// Request carries per-run overrides. Zero fields keep the configured value.
// ChartPath is settable by library callers only; requests decoded from
// HTTP or MCP always chart to the configured path.
type Request struct {
	Paths               []string `json:"paths"`
	SimilarityThreshold float64  `json:"similarity_threshold,omitempty"`
	TopN                int      `json:"top_n,omitempty"`
	ChartPath           string   `json:"-"`
}

// Analyze runs the pipeline over paths with the configured settings.
func (a *Analyzer) Analyze(ctx context.Context, paths ...string) (*report.Analysis, error) {
	return a.Run(ctx, Request{Paths: paths})
}

// Run runs the pipeline for one request. Papers are extracted
// concurrently; their questions are concatenated in argument order.
// Extraction and embedding failures abort the run. A run that finds no
// questions returns an Analysis with Empty set.
func (a *Analyzer) Run(ctx context.Context, req Request) (*report.Analysis, error) {
	if len(req.Paths) == 0 {
		return nil, fmt.Errorf("analyze: %w: no papers given", ErrInvalidRequest)
	}
	threshold := a.cfg.SimilarityThreshold
	if req.SimilarityThreshold != 0 {
		if err := checkThreshold(req.SimilarityThreshold); err != nil {
			return nil, fmt.Errorf("analyze: %w", err)
		}
		threshold = req.SimilarityThreshold
	}
	topN := a.cfg.TopN
	if req.TopN > 0 {
		topN = req.TopN
	}
	chartPath := a.cfg.ChartPath
	if req.ChartPath != "" {
		chartPath = req.ChartPath
	}

	start := time.Now()
	res := &report.Analysis{RunID: idgen.Run()}
	logger := a.logger.With("run_id", res.RunID)
	if rid := kit.GetRequestID(ctx); rid != "" {
		logger = logger.With("request_id", rid)
	}

	docs, err := a.extractAll(ctx, req.Paths)
	if err != nil {
		return nil, fmt.Errorf("analyze: stage extract: %w", err)
	}

	for _, doc := range docs {
		recs := question.SegmentSource(doc.CleanText, doc.Path)
		res.Questions = append(res.Questions, recs...)
		stat := report.DocumentStat{
			Path:       doc.Path,
			Format:     string(doc.Format),
			Pages:      doc.PageCount,
			TextPages:  doc.TextPages,
			Watermarks: doc.Watermarks,
			Questions:  len(recs),
			NeedsOCR:   doc.Quality.NeedsOCR(),
		}
		res.Documents = append(res.Documents, stat)
		logger.Debug("paper segmented", "path", doc.Path, "questions", len(recs), "watermarks", len(doc.Watermarks))
		if stat.NeedsOCR {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%s: little extractable text (%.0f chars per page), it may need OCR", doc.Path, doc.Quality.CharsPerPage))
		}
	}
	for _, d := range question.Duplicates(res.Questions) {
		msg := fmt.Sprintf("%s: Q%d%s appears %d times", d.Source, d.QuestionNo, d.SubQuestion, d.Count)
		logger.Warn("duplicate question marker", "path", d.Source, "question", fmt.Sprintf("Q%d%s", d.QuestionNo, d.SubQuestion), "count", d.Count)
		res.Warnings = append(res.Warnings, msg)
	}

	texts := question.Texts(res.Questions)
	res.Difficulty = question.EstimateDifficulty(texts)
	res.QuestionTypes = question.Categorize(texts)

	if len(res.Questions) == 0 {
		res.Empty = true
		res.Assignment = cluster.Assignment{}
		res.Warnings = append(res.Warnings, ErrNoQuestions.Error())
		logger.Warn("analysis found no questions", "papers", len(docs))
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	assignment, err := cluster.Assign(ctx, a.emb, texts, threshold)
	if err != nil {
		return nil, fmt.Errorf("analyze: stage cluster: %w", err)
	}
	res.Assignment = assignment
	res.Clusters = report.Summarize(texts, assignment, topN)
	res.Frequent = report.FrequentQuestions(texts, assignment)
	res.Topics = a.cfg.Topics.Topics(texts, res.Clusters)

	if !a.cfg.SkipChart {
		if err := report.RenderChart(chartPath, res.Clusters); err != nil {
			res.ChartError = err.Error()
			logger.Warn("chart not rendered", "path", chartPath, "error", err)
		} else {
			res.ChartPath = chartPath
			a.lastChart.Store(&chartPath)
		}
	}

	logger.Info("analysis complete",
		"papers", len(docs),
		"questions", len(res.Questions),
		"clusters", assignment.Count(),
		"duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

// extractAll extracts papers concurrently, bounded by Parallelism, and
// returns them in input order. The first failure cancels the rest.
func (a *Analyzer) extractAll(ctx context.Context, paths []string) ([]*docpipe.Document, error) {
	docs := make([]*docpipe.Document, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Parallelism)
	for i, path := range paths {
		g.Go(func() error {
			doc, err := a.pipe.Extract(gctx, path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Questions extracts one paper and segments its questions.
func (a *Analyzer) Questions(ctx context.Context, path string) ([]question.Record, *docpipe.Document, error) {
	doc, err := a.pipe.Extract(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return question.SegmentSource(doc.CleanText, doc.Path), doc, nil
}
