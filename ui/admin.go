package ui

import (
	"net/http"
	"strconv"

	"launchdash/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// AdminRouter serves health, Prometheus metrics and pprof on a separate port
// so profiling never shares a listener with the dashboard.
func AdminRouter(m *metrics.Metrics, records int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","records":` + strconv.Itoa(records) + `}`))
	})
	r.Handle("/metrics", m.Handler())
	r.Mount("/debug", middleware.Profiler())

	return r
}
