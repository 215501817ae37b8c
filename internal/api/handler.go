package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/walkopt/internal/metrics"
	"github.com/gyaneshwarpardhi/walkopt/internal/pipeline"
)

// Handler serves the status of a watch-mode optimizer.
type Handler struct {
	latest *pipeline.Latest
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(latest *pipeline.Latest) http.Handler {
	h := &Handler{latest: latest, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /v1/report", h.report)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return loggingMiddleware(h.mux)
}

// GET /v1/report: report of the last successful run.
func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	rep := h.latest.Load()
	if rep == nil {
		writeError(w, http.StatusNotFound, "no run has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
