package server

import (
	"net/http"

	"github.com/cognify-labs/cognify/internal/api"
	"github.com/cognify-labs/cognify/internal/api/handlers"
	"github.com/cognify-labs/cognify/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	VideoHandler *handlers.VideoHandler
	AskHandler   *handlers.AskHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/videos", func(r chi.Router) {
		r.Post("/", cfg.VideoHandler.Ingest)
		r.Get("/", cfg.VideoHandler.List)
		r.Get("/{id}", cfg.VideoHandler.Get)
		r.Delete("/{id}", cfg.VideoHandler.Delete)
		r.Post("/{id}/ask", cfg.AskHandler.Ask)
	})

	return r
}
