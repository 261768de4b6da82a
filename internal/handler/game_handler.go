package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/brass-engine/internal/auth"
	"github.com/freeeve/brass-engine/internal/service"
)

const botRunTimeout = 2 * time.Minute

// GameHandler handles the game lobby: creation, seating and start.
type GameHandler struct {
	gameSvc     *service.GameService
	playSvc     *service.PlayService
	broadcaster service.Broadcaster

	// runBots is called after every change that may hand the turn to a bot.
	runBots func(gameID string)
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(gameSvc *service.GameService, playSvc *service.PlayService, broadcaster service.Broadcaster) *GameHandler {
	if broadcaster == nil {
		broadcaster = service.NoopBroadcaster{}
	}
	h := &GameHandler{gameSvc: gameSvc, playSvc: playSvc, broadcaster: broadcaster}
	h.runBots = func(gameID string) { go runBotsDetached(playSvc, gameID) }
	return h
}

func runBotsDetached(playSvc *service.PlayService, gameID string) {
	ctx, cancel := context.WithTimeout(context.Background(), botRunTimeout)
	defer cancel()
	n, err := playSvc.RunBots(ctx, gameID)
	if err != nil {
		log.Error().Err(err).Str("gameId", gameID).Int("events", n).Msg("Bot run failed")
		return
	}
	if n > 0 {
		log.Debug().Str("gameId", gameID).Int("events", n).Msg("Bots finished their turns")
	}
}

// CreateGame handles POST /api/v1/games
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Name    string `json:"name"`
		Seats   int    `json:"seats,omitempty"`
		BotOnly bool   `json:"bot_only,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	game, err := h.gameSvc.CreateGame(r.Context(), req.Name, userID, req.Seats, req.BotOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

// ListGames handles GET /api/v1/games?filter=my
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	games, err := h.gameSvc.ListGames(r.Context(), userID, r.URL.Query().Get("filter"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if games == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// GetGame handles GET /api/v1/games/{id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.gameSvc.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// JoinGame handles POST /api/v1/games/{id}/join
func (h *GameHandler) JoinGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	if err := h.gameSvc.JoinGame(r.Context(), gameID, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.broadcaster.BroadcastGameEvent(gameID, service.EventPlayerJoined, map[string]string{"user_id": userID})
	writeJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

// StartGame handles POST /api/v1/games/{id}/start
func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	game, err := h.gameSvc.StartGame(r.Context(), gameID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.runBots(gameID)
	writeJSON(w, http.StatusOK, game)
}

// DeleteGame handles DELETE /api/v1/games/{id}
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	if err := h.gameSvc.DeleteGame(r.Context(), gameID, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
