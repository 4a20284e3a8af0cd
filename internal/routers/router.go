package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"teamcreate/internal/api"
	"teamcreate/internal/metrics"
	"teamcreate/internal/session"
)

func New(log *zap.Logger, store *session.Store) http.Handler {
	h := api.NewHandlers(log, store)
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", h.Health)
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	r.Post("/api/room", h.CreateRoom)
	r.Get("/api/stats", h.Stats)
	r.Post("/api/signal/{room}/{type}", h.SetSignal)
	r.Put("/api/signal/{room}/{type}", h.SetSignal)
	r.Get("/api/signal/{room}/{type}", h.GetSignal)

	r.Get("/ws", h.CollabWS)

	return r
}
