package handler

import "github.com/freeeve/brass-engine/internal/service"

// BroadcastGameEvent implements service.Broadcaster. Besides the game
// channel, a player who becomes the one to act gets a your_turn
// notification on all their connections, subscribed or not.
func (h *Hub) BroadcastGameEvent(gameID string, eventType string, data any) {
	h.BroadcastToGame(gameID, WSEvent{Type: eventType, GameID: gameID, Data: data})

	switch eventType {
	case service.EventGameEnded:
		h.mu.Lock()
		delete(h.turns, gameID)
		h.mu.Unlock()
	case service.EventGameStarted, service.EventGameEvent:
		payload, _ := data.(map[string]any)
		next, _ := payload["current_player"].(string)
		if next != "" && h.turnChanged(gameID, next) {
			h.BroadcastToUser(next, WSEvent{Type: EventYourTurn, GameID: gameID, Data: map[string]any{}})
		}
	}
}

func (h *Hub) turnChanged(gameID, playerID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.turns[gameID] == playerID {
		return false
	}
	h.turns[gameID] = playerID
	return true
}
