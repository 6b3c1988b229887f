package shield

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/paperlens/kit"
)

func newRouter(h http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	for _, mw := range DefaultStack(nil, 16) {
		r.Use(mw)
	}
	r.Get("/ping", h)
	r.Post("/echo", h)
	return r
}

func TestDefaultStack_HeadersAndRequestID(t *testing.T) {
	var gotID, gotTransport string
	h := newRouter(func(w http.ResponseWriter, r *http.Request) {
		gotID = kit.GetRequestID(r.Context())
		gotTransport = kit.GetTransport(r.Context())
		w.Write([]byte("pong"))
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" || rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("security headers missing: %v", rec.Header())
	}
	if !strings.HasPrefix(gotID, "req_") || rec.Header().Get("X-Request-ID") != gotID {
		t.Fatalf("request id = %q, header = %q", gotID, rec.Header().Get("X-Request-ID"))
	}
	if gotTransport != "http" {
		t.Fatalf("transport = %q", gotTransport)
	}
}

func TestHeadToGet(t *testing.T) {
	h := newRouter(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("pong")) })
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/ping", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("HEAD status = %d", rec.Code)
	}
}

func TestMaxBody(t *testing.T) {
	// WHAT: bodies over the cap fail to read.
	h := newRouter(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("small")))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("small body status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64))))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("large body status = %d", rec.Code)
	}
}

func TestGetLogger_Default(t *testing.T) {
	if GetLogger(t.Context()) == nil {
		t.Fatal("nil logger")
	}
}
