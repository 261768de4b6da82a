package service

import (
	"encoding/json"

	"github.com/freeeve/brass-engine/internal/model"
	"github.com/freeeve/brass-engine/pkg/brass"
)

// GameView is a position as shown to one user. Other players' hands are
// reduced to their sizes, and nothing that predicts a shuffle is sent: the
// draw pile, the cards set aside at the deal and the RNG state.
type GameView struct {
	Seq           int               `json:"seq"`
	State         brass.StatePath   `json:"state"`
	CurrentPlayer string            `json:"current_player,omitempty"`
	Accepts       []brass.EventType `json:"accepts"`
	TurnOrder     []string          `json:"turn_order"`
	HandSizes     map[string]int    `json:"hand_sizes"`
	DrawSize      int               `json:"draw_size"`
	Game          *brass.GameState  `json:"game"`
	Log           []brass.LogEntry  `json:"log,omitempty"`
}

func (s *PlayService) view(gameID, userID string, seq int, e *brass.Engine) *GameView {
	gs := e.State()
	v := &GameView{
		Seq:           seq,
		State:         e.Path(),
		CurrentPlayer: e.CurrentPlayer(),
		TurnOrder:     gs.TurnOrder(),
		HandSizes:     make(map[string]int, len(gs.Players)),
		DrawSize:      len(gs.DrawPile),
		Game:          gs,
		Log:           s.gameLog(gameID).Entries(),
	}
	if v.CurrentPlayer == userID {
		v.Accepts = e.AcceptedEvents()
	}
	for i := range gs.Players {
		p := &gs.Players[i]
		v.HandSizes[p.ID] = len(p.Hand)
		if p.ID != userID {
			p.Hand = nil
		}
	}
	gs.DrawPile = nil
	gs.Seed, gs.Shuffles = 0, 0
	// The canal discard pile starts with one face-down card per player.
	if gs.Era == brass.Canal {
		gs.DiscardPile = gs.DiscardPile[min(len(gs.Players), len(gs.DiscardPile)):]
	}
	return v
}

// publicPayload is the JSON of ev as other clients may see it.
func publicPayload(ev brass.Event) ([]byte, error) {
	ev.Seed = 0
	return json.Marshal(ev)
}

// hideSeed strips the deal seed from a stored START_GAME payload.
func hideSeed(rec *model.EventRecord) {
	if rec.EventType != string(brass.EventStartGame) {
		return
	}
	var ev brass.Event
	if err := json.Unmarshal(rec.Payload, &ev); err != nil || ev.Seed == 0 {
		return
	}
	if b, err := publicPayload(ev); err == nil {
		rec.Payload = b
	}
}
