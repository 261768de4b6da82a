package handler

import (
	"net/http"

	"github.com/freeeve/brass-engine/internal/auth"
	"github.com/freeeve/brass-engine/internal/model"
	"github.com/freeeve/brass-engine/pkg/brass"
)

// SendEvent handles POST /api/v1/games/{id}/events. The body is a single
// engine event; the response is the caller's view of the new position.
func (h *GameHandler) SendEvent(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var ev brass.Event
	if err := decodeJSON(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if ev.Type == "" {
		writeError(w, http.StatusBadRequest, "type is required")
		return
	}
	if ev.Type == brass.EventStartGame {
		writeError(w, http.StatusBadRequest, "games are started through /start")
		return
	}

	view, err := h.playSvc.ApplyEvent(r.Context(), gameID, userID, ev)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !view.Game.IsGameOver() && view.CurrentPlayer != userID {
		h.runBots(gameID)
	}
	writeJSON(w, http.StatusOK, view)
}

// GetView handles GET /api/v1/games/{id}/state
func (h *GameHandler) GetView(w http.ResponseWriter, r *http.Request) {
	view, err := h.playSvc.View(r.Context(), r.PathValue("id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListEvents handles GET /api/v1/games/{id}/events
func (h *GameHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.playSvc.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []model.EventRecord{}
	}
	writeJSON(w, http.StatusOK, events)
}
