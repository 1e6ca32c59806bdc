// Package syncserver is the remote side of routine synchronization: a
// small HTTP API over a per-user aggregate store. Devices pull, push, and
// list whole routine aggregates; conflict resolution happens on-device.
package syncserver

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for the HTTP handlers.
type Server struct {
	store  Store
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a Server with all routes configured.
func New(store Store, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
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

	s.router.Get("/api/v1/health", s.handleHealth)

	s.router.Route("/api/v1/routines", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(RequireUserID)
		r.Get("/", s.handleChangedSince)
		r.Get("/{id}", s.handleGetRoutine)
		r.Put("/{id}", s.handlePutRoutine)
		r.Delete("/{id}", s.handleDeleteRoutine)
	})
}
