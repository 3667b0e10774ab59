package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func (h *Handler) SetRoutes(r *chi.Mux, wsHandler http.HandlerFunc) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/ws", wsHandler)

		// public routes: joining and player actions are identified by
		// player/device, not a bearer token
		r.Get("/health", h.HealthHandler)
		r.Post("/games", h.CreateGame)
		r.Post("/games/join", h.JoinGame)
		r.Get("/rooms/{roomID}/qr", h.RoomQR)

		r.Route("/games/{gameID}", func(r chi.Router) {
			r.Get("/", h.GetGame)
			r.Get("/qr", h.GameQR)
			r.Post("/leave", h.LeaveGame)
			r.Get("/players", h.ListPlayers)
			r.Get("/players/{playerID}", h.GetPlayer)
			r.Post("/tasks/{taskID}/complete", h.CompleteTask)
			r.Post("/location", h.UpdateLocation)
			r.Post("/report", h.Report)
			r.Post("/kill", h.Kill)
			r.Post("/vote", h.SubmitVote)

			// admin operations on a game
			admin := r.With(jwtauth.Verifier(h.tokenAuth), jwtauth.Authenticator)
			admin.Put("/", h.UpdateGame)
			admin.Delete("/", h.DeleteGame)
			admin.Post("/start", h.StartGame)
			admin.Post("/end", h.EndGame)
			admin.Get("/stats", h.GameStats)
			admin.Post("/rooms", h.CreateRoom)
			admin.Get("/rooms", h.ListRooms)
			admin.Post("/tasks", h.CreateTask)
			admin.Get("/tasks", h.ListTasks)
		})

		admin := r.With(jwtauth.Verifier(h.tokenAuth), jwtauth.Authenticator)
		admin.Delete("/rooms/{roomID}", h.DeleteRoom)
		admin.Delete("/tasks/{taskID}", h.DeleteTask)
	})
}
