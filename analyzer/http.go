package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/paperlens/docpipe"
	"github.com/hazyhaar/paperlens/kit"
	"github.com/hazyhaar/paperlens/report"
)

// maxUploadMemory is the multipart size kept in memory; larger uploads
// spill to temporary files.
const maxUploadMemory = 8 << 20

// RegisterHTTP mounts the analysis routes:
//
//	POST /analyze  papers as multipart "papers" files, or JSON Request
//	               with server-side paths; ?format=text returns the report
//	GET  /chart    the chart of the last run
//	GET  /healthz  liveness
//
// Each analysis is bounded by timeout (0 disables it).
func (a *Analyzer) RegisterHTTP(r chi.Router, timeout time.Duration) {
	endpoint := kit.Chain(
		kit.RequestID(),
		kit.Recovery(a.logger),
		kit.Logging(a.logger, "analyze"),
		kit.Timeout(timeout),
	)(func(ctx context.Context, req any) (any, error) {
		return a.Run(ctx, *req.(*Request))
	})

	r.Post("/analyze", func(w http.ResponseWriter, r *http.Request) {
		req, cleanup, err := a.decodeAnalyze(r)
		if cleanup != nil {
			defer cleanup()
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		resp, err := endpoint(kit.WithTransport(r.Context(), "http"), req)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		res := resp.(*report.Analysis)
		if r.URL.Query().Get("format") == "text" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			io.WriteString(w, report.Format(res))
			return
		}
		writeJSON(w, http.StatusOK, &analyzeResp{Report: report.Format(res), Analysis: res})
	})

	r.Get("/chart", func(w http.ResponseWriter, r *http.Request) {
		path := a.ChartPath()
		if _, err := os.Stat(path); err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no chart rendered yet"})
			return
		}
		http.ServeFile(w, r, path)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// decodeAnalyze reads the request. Uploaded papers are stored in a
// temporary directory removed by the returned cleanup.
func (a *Analyzer) decodeAnalyze(r *http.Request) (*Request, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, nil, fmt.Errorf("invalid request body: %w", err)
		}
		return &req, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, nil, fmt.Errorf("invalid upload: %w", err)
	}
	req := &Request{}
	if v := r.FormValue("similarity_threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("similarity_threshold: %w", err)
		}
		req.SimilarityThreshold = f
	}
	if v := r.FormValue("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, nil, fmt.Errorf("top_n: %w", err)
		}
		req.TopN = n
	}

	files := r.MultipartForm.File["papers"]
	if len(files) == 0 {
		return nil, nil, errors.New(`no files in form field "papers"`)
	}
	dir, err := os.MkdirTemp("", "paperlens-upload-*")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		r.MultipartForm.RemoveAll()
		os.RemoveAll(dir)
	}
	for i, fh := range files {
		name := filepath.Base(strings.ReplaceAll(fh.Filename, `\`, "/"))
		if name == "." || name == "/" || name == "" {
			name = "paper"
		}
		dst := filepath.Join(dir, fmt.Sprintf("%02d-%s", i+1, name))
		if err := saveUpload(fh, dst); err != nil {
			return nil, cleanup, fmt.Errorf("store %s: %w", fh.Filename, err)
		}
		req.Paths = append(req.Paths, dst)
	}
	return req, cleanup, nil
}

func saveUpload(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// statusFor maps an analysis error to an HTTP status.
func statusFor(err error) int {
	var ee *docpipe.ExtractionError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &ee) && (ee.Stage == "validate" || ee.Stage == "detect"):
		return http.StatusBadRequest
	case errors.As(err, &ee):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
