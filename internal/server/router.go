// Package server exposes the engine over HTTP with a uniform {data, error}
// JSON envelope.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// RouterConfig wires the router's dependencies.
type RouterConfig struct {
	Handler  *Handler
	Verifier TokenVerifier
	SkipAuth bool
	Logger   zerolog.Logger
}

// NewRouter builds the HTTP routing tree. Everything under /api/v1 requires
// an authenticated caller.
func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handler

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(cfg.Logger))

	r.Get("/health", h.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware(cfg.Verifier, cfg.SkipAuth, cfg.Logger))

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", h.createTransaction)
			r.Get("/", h.listTransactions)
			r.Get("/{id}", h.getTransaction)
			r.Patch("/{id}", h.updateTransaction)
			r.Delete("/{id}", h.deleteTransaction)
		})

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", h.listAssets)
			r.Get("/{id}", h.getAsset)
		})

		r.Route("/goal-funds", func(r chi.Router) {
			r.Post("/", h.createGoalFund)
			r.Get("/", h.listGoalFunds)
			r.Get("/{id}", h.getGoalFund)
		})

		r.Route("/settlements", func(r chi.Router) {
			r.Post("/run", h.runSettlement)
			r.Post("/rollback", h.rollbackSettlement)
		})

		r.Route("/snapshots", func(r chi.Router) {
			r.Post("/run", h.runSnapshot)
			r.Get("/", h.listSnapshots)
		})

		r.Post("/chat", h.chatAsk)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", debugUserHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c.Handler(r)
}
