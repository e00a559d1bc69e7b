/**
 * @description
 * This file sets up the HTTP router for the account-service. It defines the
 * API endpoints, associates them with their corresponding handlers, and
 * applies middleware for logging, panic recovery, timeouts, CORS and
 * authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for the browser client.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// AccountRoutes creates and returns a new router for the account service.
func AccountRoutes(h *AccountHandlers, jwksURL string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwksURL))

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccountsHandler)
			r.Post("/", h.CreateAccountHandler)

			r.Route("/{accountID}", func(r chi.Router) {
				r.Get("/", h.ShowAccountHandler)
				r.Put("/", h.UpdateAccountHandler)
				r.Delete("/", h.TrashAccountHandler)
				r.Post("/restore", h.RestoreAccountHandler)
				r.Delete("/permanent", h.DeletePermanentHandler)
			})
		})

		r.Get("/categories", h.ListCategoriesHandler)
		r.Get("/currencies", h.ListCurrenciesHandler)
	})

	return r
}
