package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/badi-al-zaman/ragchat/internal/contextutil"
)

func TestLoggerMiddleware(t *testing.T) {
	var sawLogger bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := contextutil.LoggerFromContext(r.Context())
		if logger == nil {
			t.Error("no logger in request context")
			return
		}
		if logger == slog.Default() {
			t.Error("logger should carry request attributes, got the bare default")
		}
		sawLogger = true
	})

	rec := httptest.NewRecorder()
	LoggerMiddleware(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if !sawLogger {
		t.Error("inner handler was not called")
	}
}

func TestCORS(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("passthrough with headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		req.Header.Set("Origin", "http://localhost:3000")

		rec := httptest.NewRecorder()
		CORS(inner).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Allow-Origin = %q", got)
		}
		if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, DELETE, OPTIONS" {
			t.Errorf("Allow-Methods = %q", got)
		}
	})

	t.Run("no origin falls back to wildcard", func(t *testing.T) {
		rec := httptest.NewRecorder()
		CORS(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q, want *", got)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		called := false
		downstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		rec := httptest.NewRecorder()
		CORS(downstream).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/sessions", nil))

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
		}
		if called {
			t.Error("preflight request should not reach the handler")
		}
	})
}
