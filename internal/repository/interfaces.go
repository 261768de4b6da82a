package repository

import (
	"context"
	"encoding/json"

	"github.com/freeeve/brass-engine/internal/model"
)

// UserRepository defines user data operations.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error)
	Upsert(ctx context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

// GameRepository defines game and seat data operations.
type GameRepository interface {
	Create(ctx context.Context, name, creatorID string, seats int) (*model.Game, error)
	FindByID(ctx context.Context, id string) (*model.Game, error)
	ListOpen(ctx context.Context) ([]model.Game, error)
	ListByUser(ctx context.Context, userID string) ([]model.Game, error)
	JoinGame(ctx context.Context, gameID, userID, color string) error
	JoinGameAsBot(ctx context.Context, gameID, userID, color string) error
	ReplaceBot(ctx context.Context, gameID, newUserID string) error
	PlayerCount(ctx context.Context, gameID string) (int, error)
	SetActive(ctx context.Context, gameID string, seed int64) error
	SetFinished(ctx context.Context, gameID, winner string) error
	Delete(ctx context.Context, gameID string) error
}

// EventRepository stores the accepted event history of each game along
// with the engine snapshot reached after every event.
type EventRepository interface {
	Append(ctx context.Context, rec *model.EventRecord, snapshot json.RawMessage) error
	ListByGame(ctx context.Context, gameID string) ([]model.EventRecord, error)
	LatestSnapshot(ctx context.Context, gameID string) (json.RawMessage, int, error)
}

// GameCache defines live engine snapshot operations (Redis).
type GameCache interface {
	SetSnapshot(ctx context.Context, gameID string, snapshot json.RawMessage) error
	GetSnapshot(ctx context.Context, gameID string) (json.RawMessage, error)
	PublishEvent(ctx context.Context, gameID string, payload json.RawMessage) error
	DeleteGameData(ctx context.Context, gameID string) error
}
