package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func newTestServer(t *testing.T, a *Analyzer) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	a.RegisterHTTP(r, time.Minute)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHTTP_AnalyzePaths(t *testing.T) {
	a, dir := newTestAnalyzer(t, nil)
	srv := newTestServer(t, a)
	p := writePaper(t, dir, "a.txt", paperA)

	resp, err := http.Get(srv.URL + "/chart")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("chart before run: status %d", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/analyze", Request{Paths: []string{p}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out analyzeResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Analysis.Questions) != 4 || !strings.Contains(out.Report, "Frequent Questions:") {
		t.Fatalf("response = %+v", out)
	}

	resp, err = http.Get(srv.URL + "/chart")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("chart after run: status %d, type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestHTTP_AnalyzeUploadText(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)
	srv := newTestServer(t, a)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, text := range map[string]string{"a.txt": paperA, "b.txt": paperB} {
		fw, err := mw.CreateFormFile("papers", name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(text))
	}
	mw.WriteField("top_n", "2")
	mw.Close()

	resp, err := http.Post(srv.URL+"/analyze?format=text", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var sb bytes.Buffer
	sb.ReadFrom(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, sb.String())
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		t.Fatalf("content type %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(sb.String(), "Explain the waterfall model (3 times)") {
		t.Fatalf("report:\n%s", sb.String())
	}
}

func TestHTTP_Errors(t *testing.T) {
	a, dir := newTestAnalyzer(t, nil)
	srv := newTestServer(t, a)
	p := writePaper(t, dir, "a.txt", paperA)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"bad threshold", Request{Paths: []string{p}, SimilarityThreshold: 2}, http.StatusBadRequest},
		{"no paths", Request{}, http.StatusBadRequest},
		{"missing file", Request{Paths: []string{dir + "/nope.pdf"}}, http.StatusBadRequest},
		{"not json", "just a string", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/analyze", tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("status %d, want %d", resp.StatusCode, tt.want)
			}
			var e map[string]string
			json.NewDecoder(resp.Body).Decode(&e)
			if e["error"] == "" {
				t.Fatal("missing error message")
			}
		})
	}
}

func TestHTTP_ChartPathNotClientControlled(t *testing.T) {
	// WHAT: a chart_path in the request body is ignored.
	// WHY: the server would otherwise overwrite any image file it can write.
	a, dir := newTestAnalyzer(t, nil)
	srv := newTestServer(t, a)
	p := writePaper(t, dir, "a.txt", paperA)
	victim := filepath.Join(t.TempDir(), "victim.png")
	if err := os.WriteFile(victim, []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp := postJSON(t, srv.URL+"/analyze", map[string]any{"paths": []string{p}, "chart_path": victim})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out analyzeResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Analysis.ChartPath != a.cfg.ChartPath {
		t.Fatalf("chart written to %q, want %q", out.Analysis.ChartPath, a.cfg.ChartPath)
	}
	if data, _ := os.ReadFile(victim); string(data) != "keep me" {
		t.Fatalf("victim file overwritten: %q", data)
	}
}

func TestHTTP_ChartServesLastRun(t *testing.T) {
	a, dir := newTestAnalyzer(t, nil)
	srv := newTestServer(t, a)
	p := writePaper(t, dir, "a.txt", paperA)
	chart := filepath.Join(dir, "override.png")
	if _, err := a.Run(context.Background(), Request{Paths: []string{p}, ChartPath: chart}); err != nil {
		t.Fatal(err)
	}
	if a.ChartPath() != chart {
		t.Fatalf("ChartPath() = %q, want %q", a.ChartPath(), chart)
	}

	resp, err := http.Get(srv.URL + "/chart")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if _, err := os.Stat(a.cfg.ChartPath); err == nil {
		t.Fatal("configured chart path written by an overridden run")
	}
}

func TestHTTP_CorruptPaperUnprocessable(t *testing.T) {
	a, dir := newTestAnalyzer(t, nil)
	srv := newTestServer(t, a)
	p := writePaper(t, dir, "broken.docx", "not a zip archive")
	resp := postJSON(t, srv.URL+"/analyze", Request{Paths: []string{p}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestHTTP_Healthz(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)
	srv := newTestServer(t, a)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
}
