package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claude/repsession/internal/tracker"
)

// Server is the companion API over one running session.
type Server struct {
	tr     *tracker.Tracker
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all session routes configured. An empty
// apiKey leaves the API open; access is then governed by the listener.
func New(tr *tracker.Tracker, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		tr:     tr,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}
		r.Get("/session", s.handleGetSession)

		r.Route("/exercises/{exerciseID}/sets", func(r chi.Router) {
			r.Post("/", s.handleAddSet)
			r.Patch("/{idx}", s.handleUpdateSet)
			r.Post("/{idx}/done", s.handleCompleteSet)
		})

		r.Post("/rest/skip", s.handleSkipRest)
		r.Post("/navigate", s.handleNavigate)
		r.Post("/finish", s.handleFinish)
		r.Post("/abandon", s.handleAbandon)
	})
}

// SetMetrics exposes the registry on /metrics.
func (s *Server) SetMetrics(g prometheus.Gatherer) {
	s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// SetMCP mounts a streamable-HTTP MCP handler on /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Group(func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}
		r.Handle("/mcp", h)
	})
}
