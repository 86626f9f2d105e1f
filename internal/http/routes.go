package httpapi

import (
	"github.com/dsjohal14/songstack/internal/libs/obs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the API router around h
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(obs.AccessLog(h.logger))
	r.Use(middleware.Recoverer)

	// Routes
	r.Get("/health", h.HandleHealth)
	r.Get("/count", h.HandleCount)

	r.Route("/song", func(r chi.Router) {
		r.Get("/", h.HandleListSongs)
		r.Post("/", h.HandleCreateSong)
		r.Get("/{id:[0-9]+}", h.HandleGetSong)
		r.Put("/{id:[0-9]+}", h.HandleUpdateSong)
		r.Delete("/{id:[0-9]+}", h.HandleDeleteSong)
	})

	return r
}
