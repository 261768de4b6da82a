package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/freeeve/brass-engine/internal/model"
)

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(id, name string) {
	m.users[id] = &model.User{ID: id, Provider: "dev", ProviderID: id, DisplayName: name}
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *mockUserRepo) FindByProviderID(_ context.Context, provider, providerID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderID == providerID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Upsert(ctx context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error) {
	if u, _ := m.FindByProviderID(ctx, provider, providerID); u != nil {
		u.DisplayName = displayName
		return u, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &model.User{
		ID:          fmt.Sprintf("%s-%s", provider, providerID),
		Provider:    provider,
		ProviderID:  providerID,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		CreatedAt:   time.Now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) UpdateDisplayName(_ context.Context, id, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	u.DisplayName = displayName
	return nil
}

type mockGameRepo struct {
	mu      sync.Mutex
	games   map[string]*model.Game
	players map[string][]model.GamePlayer
}

func newMockGameRepo() *mockGameRepo {
	return &mockGameRepo{games: make(map[string]*model.Game), players: make(map[string][]model.GamePlayer)}
}

func (m *mockGameRepo) Create(_ context.Context, name, creatorID string, seats int) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := &model.Game{
		ID:        fmt.Sprintf("game-%d", len(m.games)+1),
		Name:      name,
		CreatorID: creatorID,
		Status:    "waiting",
		Seats:     seats,
		CreatedAt: time.Now(),
	}
	m.games[g.ID] = g
	return g, nil
}

func (m *mockGameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	cp.Players = append([]model.GamePlayer(nil), m.players[id]...)
	return &cp, nil
}

func (m *mockGameRepo) filter(keep func(id string, g *model.Game) bool) []model.Game {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Game
	for id, g := range m.games {
		if keep(id, g) {
			out = append(out, *g)
		}
	}
	return out
}

func (m *mockGameRepo) ListOpen(_ context.Context) ([]model.Game, error) {
	return m.filter(func(_ string, g *model.Game) bool { return g.Status == "waiting" }), nil
}

func (m *mockGameRepo) ListByUser(_ context.Context, userID string) ([]model.Game, error) {
	return m.filter(func(id string, g *model.Game) bool {
		for _, p := range m.players[id] {
			if p.UserID == userID {
				return true
			}
		}
		return g.CreatorID == userID
	}), nil
}

func (m *mockGameRepo) JoinGame(_ context.Context, gameID, userID, color string) error {
	return m.join(gameID, userID, color, false)
}

func (m *mockGameRepo) JoinGameAsBot(_ context.Context, gameID, userID, color string) error {
	return m.join(gameID, userID, color, true)
}

func (m *mockGameRepo) join(gameID, userID, color string, bot bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[gameID] = append(m.players[gameID], model.GamePlayer{
		GameID:      gameID,
		UserID:      userID,
		DisplayName: userID,
		Seat:        len(m.players[gameID]),
		Color:       color,
		IsBot:       bot,
	})
	return nil
}

func (m *mockGameRepo) ReplaceBot(_ context.Context, gameID, newUserID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	players := m.players[gameID]
	for i := len(players) - 1; i >= 0; i-- {
		if players[i].IsBot {
			players[i].UserID, players[i].DisplayName, players[i].IsBot = newUserID, newUserID, false
			return nil
		}
	}
	return fmt.Errorf("no bot to replace")
}

func (m *mockGameRepo) PlayerCount(_ context.Context, gameID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.players[gameID]), nil
}

func (m *mockGameRepo) SetActive(_ context.Context, gameID string, seed int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[gameID].Status = "active"
	m.games[gameID].Seed = seed
	return nil
}

func (m *mockGameRepo) SetFinished(_ context.Context, gameID, winner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[gameID].Status = "finished"
	m.games[gameID].Winner = winner
	return nil
}

func (m *mockGameRepo) Delete(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, gameID)
	delete(m.players, gameID)
	return nil
}

type mockEventRepo struct {
	mu        sync.Mutex
	events    map[string][]model.EventRecord
	snapshots map[string][]json.RawMessage
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[string][]model.EventRecord), snapshots: make(map[string][]json.RawMessage)}
}

func (m *mockEventRepo) Append(_ context.Context, rec *model.EventRecord, snapshot json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.Seq != len(m.events[rec.GameID]) {
		return fmt.Errorf("seq %d out of order", rec.Seq)
	}
	rec.ID = fmt.Sprintf("ev-%d", rec.Seq)
	m.events[rec.GameID] = append(m.events[rec.GameID], *rec)
	m.snapshots[rec.GameID] = append(m.snapshots[rec.GameID], snapshot)
	return nil
}

func (m *mockEventRepo) ListByGame(_ context.Context, gameID string) ([]model.EventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.EventRecord(nil), m.events[gameID]...), nil
}

func (m *mockEventRepo) LatestSnapshot(_ context.Context, gameID string) (json.RawMessage, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps := m.snapshots[gameID]
	if len(snaps) == 0 {
		return nil, -1, nil
	}
	return snaps[len(snaps)-1], len(snaps) - 1, nil
}

// nullCache never holds anything, so every load falls back to the event
// repository.
type nullCache struct{}

func (nullCache) SetSnapshot(context.Context, string, json.RawMessage) error { return nil }
func (nullCache) GetSnapshot(context.Context, string) (json.RawMessage, error) {
	return nil, nil
}
func (nullCache) PublishEvent(context.Context, string, json.RawMessage) error { return nil }
func (nullCache) DeleteGameData(context.Context, string) error                { return nil }
