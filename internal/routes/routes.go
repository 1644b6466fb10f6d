package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/mjdocs/gateway/internal/handlers"
)

// RegisterRoutes registers all gateway routes. All three endpoints are
// public; authorization happens inside the handlers, not at the router.
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	documentHandler *handlers.DocumentHandler,
) {
	router.Route("/api", func(r chi.Router) {
		r.Post("/admin/login", authHandler.AdminLogin)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/signed-url", documentHandler.SignedURL)
			r.Post("/increment-download", documentHandler.IncrementDownload)
		})
	})
}
