package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/freeeve/brass-engine/internal/model"
)

type mockGameRepo struct {
	games   map[string]*model.Game
	players map[string][]model.GamePlayer
}

func newMockGameRepo() *mockGameRepo {
	return &mockGameRepo{
		games:   make(map[string]*model.Game),
		players: make(map[string][]model.GamePlayer),
	}
}

func (m *mockGameRepo) Create(_ context.Context, name, creatorID string, seats int) (*model.Game, error) {
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
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	cp.Players = append([]model.GamePlayer(nil), m.players[id]...)
	return &cp, nil
}

func (m *mockGameRepo) ListOpen(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "waiting" {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListByUser(_ context.Context, userID string) ([]model.Game, error) {
	var result []model.Game
	for id, g := range m.games {
		mine := g.CreatorID == userID
		for _, p := range m.players[id] {
			mine = mine || p.UserID == userID
		}
		if mine {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) JoinGame(_ context.Context, gameID, userID, color string) error {
	return m.join(gameID, userID, color, false)
}

func (m *mockGameRepo) JoinGameAsBot(_ context.Context, gameID, userID, color string) error {
	return m.join(gameID, userID, color, true)
}

func (m *mockGameRepo) join(gameID, userID, color string, bot bool) error {
	for _, p := range m.players[gameID] {
		if p.UserID == userID {
			return nil
		}
	}
	m.players[gameID] = append(m.players[gameID], model.GamePlayer{
		GameID:      gameID,
		UserID:      userID,
		DisplayName: "name-" + userID,
		Seat:        len(m.players[gameID]),
		Color:       color,
		IsBot:       bot,
		JoinedAt:    time.Now(),
	})
	return nil
}

func (m *mockGameRepo) ReplaceBot(_ context.Context, gameID, newUserID string) error {
	players := m.players[gameID]
	for i := len(players) - 1; i >= 0; i-- {
		if players[i].IsBot {
			players[i].UserID = newUserID
			players[i].DisplayName = "name-" + newUserID
			players[i].IsBot = false
			return nil
		}
	}
	return fmt.Errorf("no bot to replace")
}

func (m *mockGameRepo) PlayerCount(_ context.Context, gameID string) (int, error) {
	return len(m.players[gameID]), nil
}

func (m *mockGameRepo) SetActive(_ context.Context, gameID string, seed int64) error {
	g := m.games[gameID]
	g.Status = "active"
	g.Seed = seed
	now := time.Now()
	g.StartedAt = &now
	return nil
}

func (m *mockGameRepo) SetFinished(_ context.Context, gameID, winner string) error {
	g := m.games[gameID]
	g.Status = "finished"
	g.Winner = winner
	now := time.Now()
	g.FinishedAt = &now
	return nil
}

func (m *mockGameRepo) Delete(_ context.Context, gameID string) error {
	delete(m.games, gameID)
	delete(m.players, gameID)
	return nil
}

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) FindByProviderID(_ context.Context, provider, providerID string) (*model.User, error) {
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
	u := &model.User{
		ID:          provider + "-" + providerID,
		Provider:    provider,
		ProviderID:  providerID,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) UpdateDisplayName(_ context.Context, id, displayName string) error {
	if u, ok := m.users[id]; ok {
		u.DisplayName = displayName
	}
	return nil
}

type storedEvent struct {
	rec      model.EventRecord
	snapshot json.RawMessage
}

type mockEventRepo struct {
	mu     sync.Mutex
	events map[string][]storedEvent
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[string][]storedEvent)}
}

func (m *mockEventRepo) Append(_ context.Context, rec *model.EventRecord, snapshot json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.Seq != len(m.events[rec.GameID]) {
		return fmt.Errorf("append event: seq %d out of order", rec.Seq)
	}
	rec.ID = fmt.Sprintf("ev-%d", rec.Seq)
	rec.CreatedAt = time.Now()
	m.events[rec.GameID] = append(m.events[rec.GameID], storedEvent{rec: *rec, snapshot: snapshot})
	return nil
}

func (m *mockEventRepo) ListByGame(_ context.Context, gameID string) ([]model.EventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.EventRecord
	for _, e := range m.events[gameID] {
		out = append(out, e.rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (m *mockEventRepo) LatestSnapshot(_ context.Context, gameID string) (json.RawMessage, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	evs := m.events[gameID]
	if len(evs) == 0 {
		return nil, -1, nil
	}
	last := evs[len(evs)-1]
	return last.snapshot, last.rec.Seq, nil
}

type mockCache struct {
	mu        sync.Mutex
	snapshots map[string]json.RawMessage
	published map[string][]json.RawMessage
}

func newMockCache() *mockCache {
	return &mockCache{
		snapshots: make(map[string]json.RawMessage),
		published: make(map[string][]json.RawMessage),
	}
}

func (m *mockCache) SetSnapshot(_ context.Context, gameID string, snapshot json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[gameID] = snapshot
	return nil
}

func (m *mockCache) GetSnapshot(_ context.Context, gameID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshots[gameID], nil
}

func (m *mockCache) PublishEvent(_ context.Context, gameID string, payload json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published[gameID] = append(m.published[gameID], payload)
	return nil
}

func (m *mockCache) DeleteGameData(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, gameID)
	return nil
}

type broadcastCall struct {
	gameID    string
	eventType string
	data      any
}

type mockBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (m *mockBroadcaster) BroadcastGameEvent(gameID, eventType string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, broadcastCall{gameID, eventType, data})
}

func (m *mockBroadcaster) count(eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.eventType == eventType {
			n++
		}
	}
	return n
}
