package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every route onto a chi router with the standard
// middleware stack: panic recovery, request logging, and CORS for
// the frontend origin.
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger()))
	r.Use(cors)

	r.Get("/", h.banner)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/projects", h.listProjects)

		r.Get("/issues", h.listIssues)
		r.Post("/issues", h.createIssue)
		r.Get("/issues/{key}", h.getIssue)
		r.Put("/issues/{key}", h.updateIssue)

		r.Post("/analyze", h.analyzeBatch)
		r.Post("/analyze/{key}", h.analyzeOne)
	})

	return r
}
