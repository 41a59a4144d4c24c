package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/newsledger/internal/newsservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *newsservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/sources", h.ListSources)
	r.Get("/datasets", h.ListDatasets)
	r.Route("/datasets/{id}", func(r chi.Router) {
		r.Get("/", h.GetDataset)
		r.Get("/records", h.Records)
		r.Get("/count", h.Count)
		r.Get("/search", h.Search)
		r.Get("/report", h.Report)
		r.Post("/sort", h.Sort)
		r.Post("/reload", h.Reload)
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
