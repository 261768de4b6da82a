package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/brass-engine/internal/service"
	"github.com/freeeve/brass-engine/pkg/brass"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads and decodes JSON from a request body.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrGameNotFound, http.StatusNotFound},
	{service.ErrNotCreator, http.StatusForbidden},
	{service.ErrNotInGame, http.StatusForbidden},
	{service.ErrNotYourTurn, http.StatusForbidden},
	{service.ErrGameNotWaiting, http.StatusBadRequest},
	{service.ErrGameNotActive, http.StatusBadRequest},
	{service.ErrGameFull, http.StatusBadRequest},
	{service.ErrAlreadyJoined, http.StatusBadRequest},
	{service.ErrNotEnough, http.StatusBadRequest},
	{service.ErrInvalidSeats, http.StatusBadRequest},
	{brass.ErrInvalidEvent, http.StatusConflict},
	{brass.ErrRuleViolation, http.StatusUnprocessableEntity},
}

// writeServiceError maps service and engine errors to HTTP statuses.
// Anything unrecognised is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			writeError(w, es.status, err.Error())
			return
		}
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}
