package server

import (
	"net/http"

	"github.com/cloo-solutions/clausecast/internal/api"
	"github.com/cloo-solutions/clausecast/internal/api/handlers"
	"github.com/cloo-solutions/clausecast/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps request bodies; uploads of extracted document text can
// run to a few megabytes.
const maxBodyBytes = 10 << 20

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
}

// NewRouter assembles the HTTP routes and middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", cfg.DocumentHandler.Ingest)
		r.Post("/file", cfg.DocumentHandler.IngestFile)
		r.Get("/{id}/analysis", cfg.DocumentHandler.Analyze)
		r.Post("/{id}/podcast", cfg.DocumentHandler.Podcast)
		r.Delete("/{id}", cfg.DocumentHandler.Delete)
	})

	r.Post("/podcast", cfg.DocumentHandler.PodcastFromText)

	return r
}
