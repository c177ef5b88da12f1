package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authService "tripagent/internal/auth"
	authHandler "tripagent/internal/handler/auth"
	chatHandler "tripagent/internal/handler/chat"
	dataHandler "tripagent/internal/handler/data"
	middlewarePkg "tripagent/internal/middleware"
	"tripagent/pkg/utils"
)

// NewRouter wires HTTP routes to core services. Chat and data endpoints sit
// behind bearer auth; registration and login do not.
func NewRouter(agent chatHandler.Agent, transcripts chatHandler.Transcripts, provider dataHandler.Provider, users *authService.Store, tokens *authService.Tokens) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatH := chatHandler.New(agent, transcripts)
	dataH := dataHandler.New(provider)
	authH := authHandler.New(users, tokens)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		authH.RegisterPublicRoutes(api)

		api.Group(func(protected chi.Router) {
			protected.Use(middlewarePkg.RequireAuth(tokens, users))
			authH.RegisterProtectedRoutes(protected)
			chatH.RegisterRoutes(protected)
			dataH.RegisterRoutes(protected)
		})
	})

	return r
}
