package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cyberarena/tournament-bot/handlers"
)

type Handlers struct {
	Webhook   *handlers.WebhookHandler
	Bracket   *handlers.BracketHandler
	Game      *handlers.GameHandler
	WebSocket *handlers.WebSocketHandler
}

func InitRoutes(h Handlers) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Post("/webhook/{token}", h.Webhook.Handle)

	router.Route("/api/games", func(r chi.Router) {
		r.Get("/", h.Game.ListGames)
		r.Get("/{gameID}", h.Game.GetGame)
	})

	router.Route("/api/tournaments", func(r chi.Router) {
		r.Get("/", h.Bracket.ListTournaments)
		r.Get("/{tournamentID}", h.Bracket.GetTournament)
		r.Get("/{tournamentID}/bracket", h.Bracket.GetBracket)
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	return router
}
