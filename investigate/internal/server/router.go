// Package server wires the HTTP routes and middleware for the
// investigate service.
package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/casetrace-systems/casetrace/common/logging"
	"github.com/casetrace-systems/casetrace/common/middleware"
	"github.com/casetrace-systems/casetrace/investigate/internal/handlers"
)

// Options controls the middleware applied around the API routes.
type Options struct {
	AuthSecret  string
	CORSOrigins []string
}

// NewRouter constructs a ServeMux with the investigation API registered.
func NewRouter(h *handlers.Handler, logger *logging.Logger, opts Options) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/api/query", h.Query)
	api.HandleFunc("/api/events", h.Ingest)
	api.HandleFunc("/api/cases", h.Cases)
	api.HandleFunc("/api/cases/", h.CaseByID)

	mux := http.NewServeMux()
	mux.Handle("/api/", middleware.BearerAuth(opts.AuthSecret)(api))

	// Health and metrics stay open so probes and scrapers work without tokens.
	mux.HandleFunc("/healthz", h.Health)
	mux.Handle("/metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = middleware.CORS(middleware.CORSConfig{AllowedOrigins: opts.CORSOrigins})(handler)
	handler = requestLogger(logger)(handler)
	return middleware.RequestID(handler)
}

// statusRecorder captures the response status for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			logger.InfoContext(r.Context(), "request completed",
				logging.Method(r.Method),
				logging.Path(r.URL.Path),
				logging.Status(rec.status),
				logging.Duration(time.Since(start).Milliseconds()),
			)
		})
	}
}
