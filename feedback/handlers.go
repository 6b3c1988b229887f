package feedback

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// Handler returns the feedback routes, relative to the mount point:
//
//	POST /             store an entry ({"type": "...", "text": "..."})
//	GET  /             recent entries as JSON (?limit=, default 50, max 500)
//	GET  /entries.html recent entries as a page
//
// Mount with r.Mount("/feedback", log.Handler()).
func (l *Log) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/", l.handleSubmit)
	r.Get("/", l.handleListJSON)
	r.Get("/entries.html", l.handleListHTML)
	return r
}

func (l *Log) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 32*1024)

	var req struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, "invalid request body", http.StatusBadRequest)
		return
	}
	e, err := l.Append(req.Type, req.Text)
	if err != nil {
		if l.clean(req.Text) == "" {
			jsonErr(w, "text is required", http.StatusBadRequest)
			return
		}
		l.logger.Error("feedback append failed", "error", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"status": "ok", "entry": e})
}

func (l *Log) handleListJSON(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	entries, err := l.Recent(limit)
	if err != nil {
		l.logger.Error("feedback list failed", "error", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

type entryView struct {
	Type string
	Text string
	Time string
}

var listHTMLTmpl = template.Must(template.New("list").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>Feedback</title>
<style>
body{font-family:system-ui,sans-serif;max-width:800px;margin:2rem auto;padding:0 1rem;color:#222;background:#fafafa}
h1{font-size:1.4rem;border-bottom:2px solid #e0e0e0;padding-bottom:.5rem}
.entry{background:#fff;border:1px solid #e0e0e0;border-radius:6px;padding:1rem;margin-bottom:1rem}
.meta{font-size:.8rem;color:#666;margin-top:.5rem}
.empty{color:#999;font-style:italic}
</style></head><body>
<h1>Feedback ({{.Count}})</h1>
{{- if eq .Count 0}}
<p class="empty">No feedback yet.</p>
{{- end}}
{{- range .Entries}}
<div class="entry"><p>{{.Text}}</p><div class="meta">{{.Type}} &mdash; {{.Time}}</div></div>
{{- end}}
</body></html>`))

func (l *Log) handleListHTML(w http.ResponseWriter, r *http.Request) {
	entries, err := l.Recent(200)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	views := make([]entryView, len(entries))
	for i, e := range entries {
		views[i] = entryView{Type: e.Type, Text: e.Text, Time: e.Time.Local().Format(time.DateTime)}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	listHTMLTmpl.Execute(w, struct {
		Count   int
		Entries []entryView
	}{Count: len(views), Entries: views})
}

func jsonErr(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
