package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Hub-level event types. Game events use the service.Event* names.
const (
	EventConnected = "connected"
	EventYourTurn  = "your_turn"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Data   any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	GameID string `json:"game_id"`
}

// WSConn wraps a WebSocket connection with its user.
type WSConn struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

type connSet map[*WSConn]struct{}

func (s connSet) remove(key string, parent map[string]connSet, c *WSConn) {
	delete(s, c)
	if len(s) == 0 {
		delete(parent, key)
	}
}

// Hub fans game events out to subscribed connections and per-user
// notifications to every connection of that user.
type Hub struct {
	mu    sync.RWMutex
	users map[string]connSet // userID -> connections
	games map[string]connSet // gameID -> subscribers
	turns map[string]string  // gameID -> last player sent your_turn
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		users: make(map[string]connSet),
		games: make(map[string]connSet),
		turns: make(map[string]string),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[c.userID] == nil {
		h.users[c.userID] = make(connSet)
	}
	h.users[c.userID][c] = struct{}{}
}

// Unregister drops a connection with all its subscriptions and closes its
// send channel.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.users[c.userID]; ok {
		conns.remove(c.userID, h.users, c)
	}
	for gameID, conns := range h.games {
		conns.remove(gameID, h.games, c)
	}
	close(c.send)
}

// Subscribe adds a connection to a game channel.
func (h *Hub) Subscribe(c *WSConn, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.games[gameID] == nil {
		h.games[gameID] = make(connSet)
	}
	h.games[gameID][c] = struct{}{}
}

// Unsubscribe removes a connection from a game channel.
func (h *Hub) Unsubscribe(c *WSConn, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.games[gameID]; ok {
		conns.remove(gameID, h.games, c)
	}
}

// BroadcastToGame sends an event to all connections subscribed to a game.
func (h *Hub) BroadcastToGame(gameID string, event WSEvent) {
	h.fanOut(event, func() connSet { return h.games[gameID] })
}

// BroadcastToUser sends an event to every connection of one user.
func (h *Hub) BroadcastToUser(userID string, event WSEvent) {
	h.fanOut(event, func() connSet { return h.users[userID] })
}

// fanOut never blocks: a connection whose buffer is full misses the event.
func (h *Hub) fanOut(event WSEvent, targets func() connSet) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Str("gameId", event.GameID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range targets() {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("userId", c.userID).Str("type", event.Type).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, conns := range h.users {
		n += len(conns)
	}
	return n
}

// GameSubscriberCount returns the number of connections subscribed to a game.
func (h *Hub) GameSubscriberCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}
