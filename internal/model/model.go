package model

import (
	"encoding/json"
	"time"
)

// User represents a registered user.
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"provider_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Game represents a hosted Brass game.
type Game struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	CreatorID  string       `json:"creator_id"`
	Status     string       `json:"status"` // waiting, active, finished
	Winner     string       `json:"winner,omitempty"`
	Seats      int          `json:"seats"`
	Seed       int64        `json:"-"`
	CreatedAt  time.Time    `json:"created_at"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Players    []GamePlayer `json:"players,omitempty"`
}

// Seat returns the player occupying the given user id, or nil.
func (g *Game) Seat(userID string) *GamePlayer {
	for i := range g.Players {
		if g.Players[i].UserID == userID {
			return &g.Players[i]
		}
	}
	return nil
}

// GamePlayer represents a player's seat in a game.
type GamePlayer struct {
	GameID      string    `json:"game_id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"`
	Seat        int       `json:"seat"`
	Color       string    `json:"color"`
	IsBot       bool      `json:"is_bot"`
	JoinedAt    time.Time `json:"joined_at"`
}

// EventRecord is one accepted engine event in a game's history.
type EventRecord struct {
	ID        string          `json:"id"`
	GameID    string          `json:"game_id"`
	Seq       int             `json:"seq"`
	UserID    string          `json:"user_id,omitempty"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	StatePath string          `json:"state_path"`
	CreatedAt time.Time       `json:"created_at"`
}
