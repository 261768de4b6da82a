package handler

import "net/http"

// MountAPI registers the authenticated API routes on mux, relative to
// /api/v1.
func MountAPI(mux *http.ServeMux, users *UserHandler, games *GameHandler) {
	mux.HandleFunc("GET /users/me", users.GetMe)
	mux.HandleFunc("PATCH /users/me", users.UpdateMe)
	mux.HandleFunc("GET /users/{id}", users.GetUser)

	mux.HandleFunc("POST /games", games.CreateGame)
	mux.HandleFunc("GET /games", games.ListGames)
	mux.HandleFunc("GET /games/{id}", games.GetGame)
	mux.HandleFunc("DELETE /games/{id}", games.DeleteGame)
	mux.HandleFunc("POST /games/{id}/join", games.JoinGame)
	mux.HandleFunc("POST /games/{id}/start", games.StartGame)
	mux.HandleFunc("GET /games/{id}/state", games.GetView)
	mux.HandleFunc("GET /games/{id}/events", games.ListEvents)
	mux.HandleFunc("POST /games/{id}/events", games.SendEvent)
}

// MountAuth registers the public sign-in routes.
func MountAuth(mux *http.ServeMux, h *AuthHandler) {
	mux.HandleFunc("GET /auth/google/login", h.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", h.GoogleCallback)
	mux.HandleFunc("POST /auth/refresh", h.RefreshToken)
	mux.HandleFunc("GET /auth/dev", h.DevLogin)
}
