package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/paperlens/config"
	"github.com/hazyhaar/paperlens/embedding"
)

func testServeConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.AllowedExtensions = []string{".txt"}
	cfg.ChartPath = filepath.Join(dir, "clusters.png")
	cfg.FeedbackPath = filepath.Join(dir, "feedback.txt")
	return cfg
}

func TestServeHandler_AnalysisSurvivesReload(t *testing.T) {
	// WHAT: the router built before a config reload still analyzes.
	// WHY: requests in flight during a reload keep the old router.
	t.Cleanup(func() { embedding.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := testServeConfig(t)
	old, err := newServeHandler(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	next := testServeConfig(t)
	next.SimilarityThreshold = 0.9
	if _, err := reloadHandler(next, logger); err != nil {
		t.Fatal(err)
	}

	paper := filepath.Join(t.TempDir(), "paper.txt")
	os.WriteFile(paper, []byte("Q1) a) Define coupling [2]\nb) Define coupling [2]\n"), 0o644)
	body, _ := json.Marshal(map[string]any{"paths": []string{paper}})
	rec := httptest.NewRecorder()
	old.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
}

func TestServeHandler_FeedbackMounted(t *testing.T) {
	t.Cleanup(func() { embedding.Close() })
	h, err := newServeHandler(testServeConfig(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feedback", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}
